package sheets

import (
	"fmt"
	"strings"
)

// ColumnLetter converts a 1-based column number to its A1 letters (1 -> A, 27 -> AA).
func ColumnLetter(col int) string {
	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}
	return string(letters)
}

// ColumnNumber converts A1 column letters back to a 1-based number. It returns 0 for invalid input.
func ColumnNumber(letters string) int {
	n := 0
	for _, ch := range strings.ToUpper(letters) {
		if ch < 'A' || ch > 'Z' {
			return 0
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n
}

// CellRef renders a single cell reference such as "Voorraad!B3".
func CellRef(sheet string, row, col int) (string, error) {
	if sheet == "" {
		return "", fmt.Errorf("sheet must not be empty")
	}
	if row < 1 || col < 1 {
		return "", fmt.Errorf("invalid cell position row=%d col=%d", row, col)
	}
	return fmt.Sprintf("%s!%s%d", sheet, ColumnLetter(col), row), nil
}

// ColumnsRange renders a whole-column range such as "BabyRecords!A:O".
func ColumnsRange(sheet string, firstCol, lastCol int) string {
	return fmt.Sprintf("%s!%s:%s", sheet, ColumnLetter(firstCol), ColumnLetter(lastCol))
}
