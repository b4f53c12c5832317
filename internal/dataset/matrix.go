package dataset

import (
	"strconv"
	"strings"
)

// Matrix is a table split into numeric features and labels.
type Matrix struct {
	Features []string
	X        [][]float64
	Labels   []string
}

// ToMatrix converts every non-label column to float64. Rows must be free of
// nulls and every feature value must parse as a number.
func ToMatrix(t *Table) (*Matrix, error) {
	li, err := t.LabelIndex()
	if err != nil {
		return nil, err
	}
	m := &Matrix{X: make([][]float64, len(t.Rows)), Labels: make([]string, len(t.Rows))}
	for c, name := range t.Columns {
		if c != li {
			m.Features = append(m.Features, name)
		}
	}
	if len(m.Features) == 0 {
		return nil, validationErrorf("no feature columns besides %q", LabelColumn)
	}
	for r, row := range t.Rows {
		x := make([]float64, 0, len(m.Features))
		for c, v := range row {
			if c == li {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, validationErrorf("row %d column %q: %q is not a number", r+1, t.Columns[c], v)
			}
			x = append(x, f)
		}
		m.X[r] = x
		m.Labels[r] = row[li]
	}
	return m, nil
}
