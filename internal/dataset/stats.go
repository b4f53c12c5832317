package dataset

import (
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// OperationColumn names the column that says which statistic a stats row holds.
const OperationColumn = "operation"

// Operation is one per-label summary statistic.
type Operation struct {
	Name string
	Fn   func(sorted []float64) float64
}

// Operations are emitted in this order for every label.
var Operations = []Operation{
	{Name: "max", Fn: func(x []float64) float64 { return guard(x, floats.Max) }},
	{Name: "min", Fn: func(x []float64) float64 { return guard(x, floats.Min) }},
	{Name: "mean", Fn: func(x []float64) float64 { return guard(x, func(v []float64) float64 { return stat.Mean(v, nil) }) }},
	{Name: "median", Fn: median},
	// sample standard deviation (n-1); NaN for a single value
	{Name: "std", Fn: func(x []float64) float64 { return guard(x, func(v []float64) float64 { return stat.StdDev(v, nil) }) }},
}

func guard(x []float64, fn func([]float64) float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return fn(x)
}

// median expects sorted input and averages the two middle values for even lengths.
func median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return x[n/2]
	}
	return (x[n/2-1] + x[n/2]) / 2
}

// Stats computes max, min, mean, median and std of every numeric feature for
// each label, labels in ascending order. Null cells are ignored. The result
// has the numeric feature columns followed by operation and label.
func Stats(t *Table) (*Table, error) {
	li, err := t.LabelIndex()
	if err != nil {
		return nil, err
	}
	kinds := t.Kinds()
	var features []int
	out := &Table{}
	for c, k := range kinds {
		if c == li || !k.Numeric() {
			continue
		}
		features = append(features, c)
		out.Columns = append(out.Columns, t.Columns[c])
	}
	out.Columns = append(out.Columns, OperationColumn, LabelColumn)

	groups := make(map[string][][]string)
	for _, row := range t.Rows {
		groups[row[li]] = append(groups[row[li]], row)
	}
	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	for _, label := range labels {
		cols := make([][]float64, len(features))
		for i, c := range features {
			cols[i] = numericValues(groups[label], c)
		}
		for _, op := range Operations {
			row := make([]string, 0, len(out.Columns))
			for i := range features {
				row = append(row, formatStat(op.Fn(cols[i])))
			}
			out.Rows = append(out.Rows, append(row, op.Name, label))
		}
	}
	return out, nil
}

// numericValues returns the sorted non-null values of column c.
func numericValues(rows [][]string, c int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, row := range rows {
		v := strings.TrimSpace(row[c])
		if IsNull(v) {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	sort.Float64s(out)
	return out
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// StatsOptions describes a StatsFile run.
type StatsOptions struct {
	Filename string
	// StatsFilename defaults to stats_<Filename>.
	StatsFilename string
	// PathPrefix is joined in front of both names.
	PathPrefix string
}

// StatsFile reads a dataset, computes its stats and writes them. It returns the output path.
func StatsFile(opts StatsOptions) (string, error) {
	if strings.TrimSpace(opts.Filename) == "" {
		return "", validationErrorf("dataset filename is required")
	}
	t, err := ReadFile(filepath.Join(opts.PathPrefix, opts.Filename))
	if err != nil {
		return "", err
	}
	st, err := Stats(t)
	if err != nil {
		return "", err
	}
	out := StatsOutputPath(opts)
	if err := WriteFile(out, st); err != nil {
		return "", err
	}
	return out, nil
}

// StatsOutputPath resolves where StatsFile writes its result.
func StatsOutputPath(opts StatsOptions) string {
	name := opts.StatsFilename
	if name == "" {
		dir, base := filepath.Split(opts.Filename)
		name = filepath.Join(dir, "stats_"+base)
	}
	return filepath.Join(opts.PathPrefix, ensureCSV(name))
}
