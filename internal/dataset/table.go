package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"croprec/internal/common/fsutil"
)

// LabelColumn is the column holding the class of each instance.
const LabelColumn = "label"

// Kind is the inferred type of a column, ignoring null cells.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "text"
	}
}

// Numeric reports whether values of this kind parse as numbers.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Table is an in-memory CSV dataset. Cells keep their textual form so that
// writing a table back out does not reformat values that were not touched.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// LabelIndex returns the position of the label column or a validation error.
func (t *Table) LabelIndex() (int, error) {
	i := t.Index(LabelColumn)
	if i < 0 {
		return -1, validationErrorf("missing column %q", LabelColumn)
	}
	return i, nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// Column returns a copy of the values of column i.
func (t *Table) Column(i int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Kinds infers the kind of every column.
func (t *Table) Kinds() []Kind {
	kinds := make([]Kind, len(t.Columns))
	for c := range t.Columns {
		kinds[c] = t.kindOf(c)
	}
	return kinds
}

func (t *Table) kindOf(c int) Kind {
	kind := KindInt
	seen := false
	for _, row := range t.Rows {
		v := strings.TrimSpace(row[c])
		if IsNull(v) {
			continue
		}
		seen = true
		if kind == KindInt {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				continue
			}
			kind = KindFloat
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return KindText
		}
	}
	if !seen {
		return KindText
	}
	return kind
}

// Labels returns the distinct label values in first-seen order.
func (t *Table) Labels() ([]string, error) {
	li, err := t.LabelIndex()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, row := range t.Rows {
		if _, ok := seen[row[li]]; ok {
			continue
		}
		seen[row[li]] = struct{}{}
		out = append(out, row[li])
	}
	return out, nil
}

// nullTokens are the cell values treated as missing.
var nullTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {},
}

// IsNull reports whether a cell value denotes a missing value.
func IsNull(v string) bool {
	_, ok := nullTokens[strings.TrimSpace(v)]
	return ok
}

// ReadCSV parses a headed CSV document. Every row must have as many fields as the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	header, err := cr.Read()
	if err == io.EOF {
		return nil, validationErrorf("empty CSV: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := &Table{Columns: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// ReadFile loads a CSV table from disk.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteCSV writes the header followed by every row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteFile writes the table to path, replacing any existing file.
func WriteFile(path string, t *Table) error {
	if err := fsutil.EnsureParent(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
