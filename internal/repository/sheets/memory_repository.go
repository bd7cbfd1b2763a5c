package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryRepository is an in-process Repository with the same row and cell semantics as the
// Google implementation. Rows and columns are 1-based; row 1 is the header.
type MemoryRepository struct {
	mu     sync.RWMutex
	tables map[string][][]interface{}
}

// NewMemoryRepository seeds a repository with the given tables. The input is copied.
func NewMemoryRepository(tables map[string][][]interface{}) *MemoryRepository {
	repo := &MemoryRepository{tables: make(map[string][][]interface{}, len(tables))}
	for name, rows := range tables {
		repo.tables[name] = copyRows(rows)
	}
	return repo
}

// WriteRow appends values as a new row of the sheet named in sheetRange.
func (m *MemoryRepository) WriteRow(_ context.Context, sheetRange string, values []interface{}) error {
	sheet, _, _, err := parseRange(sheetRange)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row := make([]interface{}, len(values))
	copy(row, values)
	m.tables[sheet] = append(m.tables[sheet], row)
	return nil
}

// ReadRange returns the rows of the sheet restricted to the requested columns.
func (m *MemoryRepository) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	sheet, first, last, err := parseRange(sheetRange)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, ok := m.tables[sheet]
	if !ok {
		return nil, fmt.Errorf("read range %s: sheet not found", sheetRange)
	}

	out := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		lo, hi := first-1, len(row)
		if last > 0 && last < hi {
			hi = last
		}
		if lo > hi {
			lo = hi
		}
		cells := make([]interface{}, hi-lo)
		copy(cells, row[lo:hi])
		out = append(out, cells)
	}
	return out, nil
}

// UpdateCell overwrites one cell, growing the row when needed.
func (m *MemoryRepository) UpdateCell(_ context.Context, sheet string, row, col int, value interface{}) error {
	ref, err := CellRef(sheet, row, col)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[sheet]
	if !ok {
		return fmt.Errorf("update cell %s: sheet not found", ref)
	}
	if row > len(rows) {
		return fmt.Errorf("update cell %s: row out of range", ref)
	}

	cells := rows[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	rows[row-1] = cells
	return nil
}

// Rows returns a copy of every row of a sheet, header included.
func (m *MemoryRepository) Rows(sheet string) [][]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyRows(m.tables[sheet])
}

func parseRange(sheetRange string) (sheet string, first, last int, err error) {
	if sheetRange == "" {
		return "", 0, 0, fmt.Errorf("sheetRange must not be empty")
	}

	sheet, cols, found := strings.Cut(sheetRange, "!")
	if !found {
		return sheet, 1, 0, nil
	}

	from, to, _ := strings.Cut(cols, ":")
	first = ColumnNumber(strings.TrimRight(from, "0123456789"))
	if first == 0 {
		return "", 0, 0, fmt.Errorf("invalid range %s", sheetRange)
	}
	if to != "" {
		last = ColumnNumber(strings.TrimRight(to, "0123456789"))
	}
	return sheet, first, last, nil
}

func copyRows(rows [][]interface{}) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = make([]interface{}, len(row))
		copy(out[i], row)
	}
	return out
}
