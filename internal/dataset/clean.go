package dataset

import (
	"path/filepath"
	"strconv"
	"strings"
)

// CleanReport counts what Clean removed.
type CleanReport struct {
	InitialRows   int
	DuplicateRows int
	NullRows      int
	FinalRows     int
	Columns       []string
}

// Clean drops duplicate rows, then rows holding a null cell, and lowercases
// the label column. The table is modified in place.
func Clean(t *Table) (CleanReport, error) {
	li, err := t.LabelIndex()
	if err != nil {
		return CleanReport{}, err
	}
	rep := CleanReport{InitialRows: t.Len(), Columns: append([]string(nil), t.Columns...)}
	rep.DuplicateRows = DropDuplicates(t)
	rep.NullRows = DropNulls(t)
	for _, row := range t.Rows {
		row[li] = strings.ToLower(row[li])
	}
	rep.FinalRows = t.Len()
	return rep, nil
}

// DropDuplicates removes rows equal to an earlier row and returns how many
// were removed. Numeric columns compare by value, so "1" and "1.0" match.
func DropDuplicates(t *Table) int {
	kinds := t.Kinds()
	seen := make(map[string]struct{}, t.Len())
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		k := rowKey(row, kinds)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, row)
	}
	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	return removed
}

// HasDuplicates reports whether DropDuplicates would remove anything.
func HasDuplicates(t *Table) bool {
	kinds := t.Kinds()
	seen := make(map[string]struct{}, t.Len())
	for _, row := range t.Rows {
		k := rowKey(row, kinds)
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

// DropNulls removes rows containing at least one null cell and returns how many were removed.
func DropNulls(t *Table) int {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if !rowHasNull(row) {
			kept = append(kept, row)
		}
	}
	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	return removed
}

// HasNulls reports whether any row contains a null cell.
func HasNulls(t *Table) bool {
	for _, row := range t.Rows {
		if rowHasNull(row) {
			return true
		}
	}
	return false
}

func rowHasNull(row []string) bool {
	for _, v := range row {
		if IsNull(v) {
			return true
		}
	}
	return false
}

// rowKey builds the identity of a row for duplicate detection.
// All null tokens share one key, matching how missing values compare equal.
func rowKey(row []string, kinds []Kind) string {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch {
		case IsNull(v):
			b.WriteString("\x00")
		case kinds[i].Numeric():
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				b.WriteString(v)
				continue
			}
			b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		default:
			b.WriteString(v)
		}
	}
	return b.String()
}

// CleanOptions describes a CleanFile run.
type CleanOptions struct {
	// Target is the dataset to clean, relative to PathPrefix.
	Target string
	// SaveName is the output file, relative to PathPrefix. Defaults to
	// Clean_<target>.csv next to the target.
	SaveName string
	// PathPrefix is joined in front of both Target and SaveName.
	PathPrefix string
}

// CleanFile reads, cleans and writes a dataset. It returns the report and the output path.
func CleanFile(opts CleanOptions) (CleanReport, string, error) {
	if strings.TrimSpace(opts.Target) == "" {
		return CleanReport{}, "", validationErrorf("target dataset name is required")
	}
	t, err := ReadFile(filepath.Join(opts.PathPrefix, opts.Target))
	if err != nil {
		return CleanReport{}, "", err
	}
	rep, err := Clean(t)
	if err != nil {
		return rep, "", err
	}
	out := CleanOutputPath(opts)
	if err := WriteFile(out, t); err != nil {
		return rep, "", err
	}
	return rep, out, nil
}

// CleanOutputPath resolves where CleanFile writes its result.
func CleanOutputPath(opts CleanOptions) string {
	name := opts.SaveName
	if name == "" {
		dir, base := filepath.Split(opts.Target)
		name = filepath.Join(dir, "Clean_"+strings.TrimSuffix(base, ".csv"))
	}
	return filepath.Join(opts.PathPrefix, ensureCSV(name))
}

func ensureCSV(name string) string {
	if strings.HasSuffix(name, ".csv") {
		return name
	}
	return name + ".csv"
}
