package records

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/repository/sheets"
)

// UpdateInventory adds delta to the product's stock, clamping at zero, and writes the one
// affected cell. It never logs a replenishment; Restock does that.
func (s *Service) UpdateInventory(ctx context.Context, product string, delta int) (models.InventoryItem, error) {
	if s.repo == nil {
		return models.InventoryItem{}, sheets.ErrNotConfigured
	}

	rows, err := s.loader.ReadInventory(ctx)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("load inventory: %w", err)
	}

	product = strings.TrimSpace(product)
	for _, row := range rows {
		if row.Item.ProductName != product {
			continue
		}

		item := row.Item
		item.CurrentStock = models.ClampStock(item.CurrentStock, delta)

		if err := s.repo.UpdateCell(ctx, sheets.InventorySheet, row.Row, row.StockCol, item.CurrentStock); err != nil {
			return models.InventoryItem{}, fmt.Errorf("update stock of %s: %w", product, err)
		}

		s.logger.Info("stock updated",
			zap.String("product", product),
			zap.Int("delta", delta),
			zap.Int("stock", item.CurrentStock),
			zap.String("status", string(item.Status())))
		return item, nil
	}

	return models.InventoryItem{}, fmt.Errorf("%w: %s", ErrProductNotFound, product)
}

// Restock increases the stock and appends an audit row to the replenishment log.
func (s *Service) Restock(ctx context.Context, product string, quantity int) (models.InventoryItem, error) {
	if quantity < 1 {
		return models.InventoryItem{}, ErrInvalidQuantity
	}

	item, err := s.UpdateInventory(ctx, product, quantity)
	if err != nil {
		return models.InventoryItem{}, err
	}

	entry := []interface{}{
		models.FormatTimestamp(s.now(), s.loader.Location()),
		item.ProductName,
		quantity,
	}
	if err := s.repo.WriteRow(ctx, replenishmentWriteRange, entry); err != nil {
		return item, fmt.Errorf("append replenishment: %w", err)
	}

	return item, nil
}

// Consume removes stock without an audit row.
func (s *Service) Consume(ctx context.Context, product string, quantity int) (models.InventoryItem, error) {
	if quantity < 1 {
		return models.InventoryItem{}, ErrInvalidQuantity
	}
	return s.UpdateInventory(ctx, product, -quantity)
}
