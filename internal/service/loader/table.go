package loader

// table is a header-keyed view of a sheet range.
type table struct {
	headers []string
	rows    []tableRow
}

type tableRow struct {
	number int // 1-based sheet row
	cells  map[string]string
}

func newTable(values [][]interface{}) table {
	if len(values) == 0 {
		return table{}
	}

	t := table{headers: make([]string, len(values[0]))}
	for i, h := range values[0] {
		t.headers[i] = cellString(h)
	}

	for i, raw := range values[1:] {
		cells := make(map[string]string, len(t.headers))
		empty := true
		for j, header := range t.headers {
			if header == "" {
				continue
			}
			var v string
			if j < len(raw) {
				v = cellString(raw[j])
			}
			if v != "" {
				empty = false
			}
			cells[header] = v
		}
		if empty {
			continue
		}
		t.rows = append(t.rows, tableRow{number: i + 2, cells: cells})
	}
	return t
}

// column returns the 1-based position of a header, or 0 when absent.
func (t table) column(header string) int {
	for i, h := range t.headers {
		if h == header {
			return i + 1
		}
	}
	return 0
}
