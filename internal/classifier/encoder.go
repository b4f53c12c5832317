package classifier

import (
	"fmt"
	"sort"
)

// LabelEncoder maps class names to integer codes. Codes follow the sorted
// order of the distinct classes.
type LabelEncoder struct {
	Classes []string
	index   map[string]int
}

// NewLabelEncoder fits an encoder on labels.
func NewLabelEncoder(labels []string) *LabelEncoder {
	e := &LabelEncoder{}
	e.Fit(labels)
	return e
}

// Fit replaces the vocabulary with the sorted distinct values of labels.
func (e *LabelEncoder) Fit(labels []string) {
	seen := make(map[string]struct{}, len(labels))
	e.Classes = e.Classes[:0]
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		e.Classes = append(e.Classes, l)
	}
	sort.Strings(e.Classes)
	e.reindex()
}

func (e *LabelEncoder) reindex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

// Transform encodes labels; unknown labels are an error.
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	if e.index == nil {
		e.reindex()
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		c, ok := e.index[l]
		if !ok {
			return nil, fmt.Errorf("unseen label %q", l)
		}
		out[i] = c
	}
	return out, nil
}

// InverseTransform decodes codes; codes outside the vocabulary are an error.
func (e *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	out := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(e.Classes) {
			return nil, fmt.Errorf("unknown class code %d", c)
		}
		out[i] = e.Classes[c]
	}
	return out, nil
}
