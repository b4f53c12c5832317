package dataset

import "sort"

// Summary is a quick profile of a dataset before cleaning.
type Summary struct {
	Rows          int          `json:"rows"`
	Columns       []string     `json:"columns"`
	HasDuplicates bool         `json:"has_duplicates"`
	HasNulls      bool         `json:"has_nulls"`
	Labels        []LabelCount `json:"labels"`
}

// LabelCount pairs a label with its number of instances.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Describe profiles t without modifying it.
func Describe(t *Table) (Summary, error) {
	counts, err := LabelCounts(t)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Rows:          t.Len(),
		Columns:       append([]string(nil), t.Columns...),
		HasDuplicates: HasDuplicates(t),
		HasNulls:      HasNulls(t),
		Labels:        counts,
	}, nil
}

// LabelCounts returns the number of rows per label, sorted by label.
func LabelCounts(t *Table) ([]LabelCount, error) {
	li, err := t.LabelIndex()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, row := range t.Rows {
		counts[row[li]]++
	}
	out := make([]LabelCount, 0, len(counts))
	for l, n := range counts {
		out = append(out, LabelCount{Label: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}
