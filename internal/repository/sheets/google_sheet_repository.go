package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/bubbel/internal/config"
)

// Sheet names of the BabyTracker spreadsheet.
const (
	RecordsSheet       = "BabyRecords"
	InventorySheet     = "Voorraad"
	ReplenishmentSheet = "VoorraadBijvulling"
)

// valueInputOption stores cells exactly as sent; the sheet locale never re-parses them.
const valueInputOption = "RAW"

// ErrNotConfigured is returned when neither credentials nor a spreadsheet id are available.
var ErrNotConfigured = errors.New("google sheets credentials not configured")

// Repository defines the persistence operations supported by the spreadsheet store.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
	UpdateCell(ctx context.Context, sheet string, row, col int, value interface{}) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
// Credentials come from the JSON blob first and the credentials file second.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	credentials, err := credentialOption(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: GOOGLE_SHEET_DATABASE_ID is empty", ErrNotConfigured)
	}

	service, err := sheetsapi.NewService(ctx, credentials, option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

func credentialOption(cfg config.SheetsConfig) (option.ClientOption, error) {
	if cfg.CredentialsJSON != "" {
		return option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)), nil
	}
	if cfg.CredentialsPath != "" {
		if _, err := os.Stat(cfg.CredentialsPath); err == nil {
			return option.WithCredentialsFile(cfg.CredentialsPath), nil
		}
	}
	return nil, ErrNotConfigured
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// UpdateCell overwrites a single cell addressed by 1-based row and column numbers.
func (r *GoogleSheetRepository) UpdateCell(ctx context.Context, sheet string, row, col int, value interface{}) error {
	ref, err := CellRef(sheet, row, col)
	if err != nil {
		return err
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{{value}}}

	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, ref, payload).
		ValueInputOption(valueInputOption).
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("update cell %s: %w", ref, err)
	}

	r.logger.Debug("cell updated", zap.String("cell", ref))
	return nil
}
