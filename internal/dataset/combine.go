package dataset

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// MergePolicy selects which label vocabularies survive a combination.
type MergePolicy int

const (
	// KeepFirstLabels keeps only labels already present in the accumulated combination.
	KeepFirstLabels MergePolicy = -1
	// KeepAllLabels concatenates every row of every dataset.
	KeepAllLabels MergePolicy = 0
	// KeepLastLabels narrows the accumulated combination to the labels of each incoming dataset.
	KeepLastLabels MergePolicy = 1
)

// ParseMergePolicy validates the numeric policy flag (-1, 0 or 1).
func ParseMergePolicy(n int) (MergePolicy, error) {
	switch p := MergePolicy(n); p {
	case KeepFirstLabels, KeepAllLabels, KeepLastLabels:
		return p, nil
	}
	return 0, validationErrorf("merge labels value must be -1, 0 or 1, got %d", n)
}

func (p MergePolicy) String() string {
	switch p {
	case KeepFirstLabels:
		return "first"
	case KeepAllLabels:
		return "all"
	case KeepLastLabels:
		return "last"
	}
	return "invalid(" + strconv.Itoa(int(p)) + ")"
}

// roundDigits is applied to float columns after concatenation so that values
// differing only by float noise (6.502985292 vs 6.502985292000001) deduplicate.
const roundDigits = 10

// CombineReport describes a combination.
type CombineReport struct {
	Policy        MergePolicy
	InputRows     []int
	CombinedRows  int
	DuplicateRows int
	FinalRows     int
}

// Combine folds tables left to right under policy. All tables must share the
// first table's column set; column order follows the first table.
func Combine(tables []*Table, policy MergePolicy, allowDuplicateRows bool) (*Table, CombineReport, error) {
	rep := CombineReport{Policy: policy}
	if len(tables) < 2 {
		return nil, rep, validationErrorf("at least two datasets are required, got %d", len(tables))
	}
	if _, err := ParseMergePolicy(int(policy)); err != nil {
		return nil, rep, err
	}
	first := tables[0]
	li, err := first.LabelIndex()
	if err != nil {
		return nil, rep, err
	}
	combined := first.Clone()
	rep.InputRows = append(rep.InputRows, first.Len())

	for i, t := range tables[1:] {
		next, err := project(t, first.Columns)
		if err != nil {
			return nil, rep, validationErrorf("dataset %d: %v", i+2, err)
		}
		rep.InputRows = append(rep.InputRows, next.Len())
		switch policy {
		case KeepAllLabels:
			combined.Rows = append(combined.Rows, next.Rows...)
		case KeepFirstLabels:
			known := labelSet(combined, li)
			combined.Rows = append(combined.Rows, filterRows(next.Rows, li, known)...)
		case KeepLastLabels:
			incoming := labelSet(next, li)
			combined.Rows = append(filterRows(combined.Rows, li, incoming), next.Rows...)
		}
	}

	roundFloatColumns(combined, roundDigits)
	rep.CombinedRows = combined.Len()
	if !allowDuplicateRows {
		rep.DuplicateRows = DropDuplicates(combined)
	}
	rep.FinalRows = combined.Len()
	return combined, rep, nil
}

// project reorders t's columns to match cols. The column sets must be equal.
func project(t *Table, cols []string) (*Table, error) {
	if len(t.Columns) != len(cols) {
		return nil, validationErrorf("column mismatch: want %v, got %v", cols, t.Columns)
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		j := t.Index(c)
		if j < 0 {
			return nil, validationErrorf("column mismatch: missing %q", c)
		}
		idx[i] = j
	}
	out := &Table{Columns: append([]string(nil), cols...), Rows: make([][]string, len(t.Rows))}
	for r, row := range t.Rows {
		nr := make([]string, len(cols))
		for i, j := range idx {
			nr[i] = row[j]
		}
		out.Rows[r] = nr
	}
	return out, nil
}

func labelSet(t *Table, li int) map[string]struct{} {
	set := make(map[string]struct{})
	for _, row := range t.Rows {
		set[row[li]] = struct{}{}
	}
	return set
}

func filterRows(rows [][]string, li int, keep map[string]struct{}) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := keep[row[li]]; ok {
			out = append(out, row)
		}
	}
	return out
}

func roundFloatColumns(t *Table, digits int) {
	kinds := t.Kinds()
	for c, k := range kinds {
		if k != KindFloat {
			continue
		}
		for _, row := range t.Rows {
			v := strings.TrimSpace(row[c])
			if IsNull(v) {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			row[c] = roundFloat(f, digits)
		}
	}
}

// roundFloat rounds to a fixed number of decimals and formats without trailing zeros.
func roundFloat(f float64, digits int) string {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', digits, 64), 64)
	if err != nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// CombineOptions describes a CombineFiles run.
type CombineOptions struct {
	Filenames []string
	// CombinedFilename names the output; empty means a YYYYMMDD_HHMMSS.csv timestamp.
	CombinedFilename   string
	MergeLabels        MergePolicy
	AllowDuplicateRows bool
	// PathPrefix is joined in front of every input filename.
	PathPrefix string
	// SaveWithPrefix also joins PathPrefix in front of the output name.
	SaveWithPrefix bool
	// Now is used for the timestamp name; defaults to time.Now.
	Now func() time.Time
}

// CombineFiles loads, combines and writes datasets. It returns the report and the output path.
func CombineFiles(opts CombineOptions) (CombineReport, string, error) {
	if len(opts.Filenames) < 2 {
		return CombineReport{}, "", validationErrorf("at least two dataset filenames are required")
	}
	if _, err := ParseMergePolicy(int(opts.MergeLabels)); err != nil {
		return CombineReport{}, "", err
	}
	tables := make([]*Table, 0, len(opts.Filenames))
	for _, fn := range opts.Filenames {
		t, err := ReadFile(filepath.Join(opts.PathPrefix, fn))
		if err != nil {
			return CombineReport{}, "", err
		}
		tables = append(tables, t)
	}
	combined, rep, err := Combine(tables, opts.MergeLabels, opts.AllowDuplicateRows)
	if err != nil {
		return rep, "", err
	}
	out := CombineOutputPath(opts)
	if err := WriteFile(out, combined); err != nil {
		return rep, "", err
	}
	return rep, out, nil
}

// CombineOutputPath resolves where CombineFiles writes its result.
func CombineOutputPath(opts CombineOptions) string {
	name := strings.TrimSpace(opts.CombinedFilename)
	if name == "" {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		name = now().Format("20060102_150405") + ".csv"
	}
	name = ensureCSV(name)
	if opts.SaveWithPrefix {
		name = filepath.Join(opts.PathPrefix, name)
	}
	return name
}
