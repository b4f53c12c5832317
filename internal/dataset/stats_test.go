package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStats(t *testing.T) {
	tbl := mustRead(t, "N,ph,region,label\n"+
		"1,2.0,north,rice\n"+
		"3,4.0,south,rice\n"+
		"2,6.0,north,rice\n"+
		"4,5.5,east,maize\n")
	st, err := Stats(tbl)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	wantCols := []string{"N", "ph", "operation", "label"}
	if !equalStrings(st.Columns, wantCols) {
		t.Fatalf("columns=%v want %v", st.Columns, wantCols)
	}
	if st.Len() != 10 {
		t.Fatalf("rows=%d want 10", st.Len())
	}
	// maize sorts before rice
	want := [][]string{
		{"4", "5.5", "max", "maize"},
		{"4", "5.5", "min", "maize"},
		{"4", "5.5", "mean", "maize"},
		{"4", "5.5", "median", "maize"},
		{"", "", "std", "maize"},
		{"3", "6", "max", "rice"},
		{"1", "2", "min", "rice"},
		{"2", "4", "mean", "rice"},
		{"2", "4", "median", "rice"},
		{"1", "2", "std", "rice"},
	}
	for i := range want {
		if !equalStrings(st.Rows[i], want[i]) {
			t.Fatalf("row %d = %v want %v", i, st.Rows[i], want[i])
		}
	}
}

func TestMedianEven(t *testing.T) {
	if got := median([]float64{1, 2, 3, 10}); got != 2.5 {
		t.Fatalf("median=%v", got)
	}
}

func TestStatsFile_DefaultName(t *testing.T) {
	dir := t.TempDir()
	writeTempCSV(t, dir, "crops.csv", "N,label\n1,rice\n3,rice\n")
	out, err := StatsFile(StatsOptions{Filename: "crops.csv", PathPrefix: dir})
	if err != nil {
		t.Fatalf("stats file: %v", err)
	}
	if want := filepath.Join(dir, "stats_crops.csv"); out != want {
		t.Fatalf("out=%s want %s", out, want)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	tbl := mustRead(t, "N,label\n1,rice\n1,rice\n,maize\n")
	s, err := Describe(tbl)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if s.Rows != 3 || !s.HasDuplicates || !s.HasNulls {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if len(s.Labels) != 2 || s.Labels[0].Label != "maize" || s.Labels[1].Count != 2 {
		t.Fatalf("unexpected label counts: %+v", s.Labels)
	}
	if tbl.Len() != 3 {
		t.Fatalf("describe modified the table")
	}
}

func TestToMatrix(t *testing.T) {
	m, err := ToMatrix(mustRead(t, "N,label,ph\n1,rice,6.5\n2,maize,7\n"))
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if !equalStrings(m.Features, []string{"N", "ph"}) || !equalStrings(m.Labels, []string{"rice", "maize"}) {
		t.Fatalf("matrix = %+v", m)
	}
	if m.X[1][0] != 2 || m.X[1][1] != 7 {
		t.Fatalf("X = %v", m.X)
	}
	if _, err := ToMatrix(mustRead(t, "N,region,label\n1,north,rice\n")); !IsValidation(err) {
		t.Fatalf("text feature should be a validation error, got %v", err)
	}
	if _, err := ToMatrix(mustRead(t, "label\nrice\n")); !IsValidation(err) {
		t.Fatalf("label-only table should be a validation error, got %v", err)
	}
}
