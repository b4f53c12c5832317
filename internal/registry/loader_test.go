package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testMetadata = `{
  "features_sets": {"s1": ["N", "P", "temperature"], "s2": ["N", "humidity"]},
  "features_info": {
    "N": {"type": "int", "min": 0, "max": 140, "full_name": "Nitrogen", "unit": "kg/ha"},
    "P": {"type": "int64", "min": 5, "max": 145},
    "temperature": {"type": "float", "min": 8.8, "max": 43.7},
    "humidity": {"type": "float", "min": 14, "max": 99}
  },
  "classes": ["apple", "maize", "rice"],
  "models_full_name": {"RF": "Random Forest", "DT": "Decision Tree"},
  "datasets": ["AtharvaIngle_CR"]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadDirRegistersBundles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, MetadataFile, testMetadata)
	for _, f := range []string{"s1_RF.gob", "s1_DT.gob", "s9_RF.gob", "bad.gob", "s1_A_B.gob", "s2_RF.skops", "notes.txt"} {
		writeFile(t, dir, f, "")
	}
	c, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(c.Sets) != 1 {
		t.Fatalf("expected only s1 to have models, got %v", c.Sets)
	}
	s1 := c.Sets["s1"]
	if len(s1.Models) != 2 || s1.Models[0] != "DT" || s1.Models[1] != "RF" {
		t.Fatalf("s1 models = %v", s1.Models)
	}
	if len(s1.Features) != 3 {
		t.Fatalf("s1 features = %v", s1.Features)
	}
	e, ok := c.Lookup("s1", "RF")
	if !ok || e.Path != filepath.Join(c.Dir, "s1_RF.gob") || e.Name() != "s1_RF" {
		t.Fatalf("lookup = %+v, %v", e, ok)
	}
	if _, ok := c.Lookup("s2", "RF"); ok {
		t.Fatal("s2_RF.skops must not be registered")
	}
	if got := len(c.Entries()); got != 2 {
		t.Fatalf("entries = %d", got)
	}
	if !c.Metadata.FeaturesInfo["P"].IsInt() || c.Metadata.FeaturesInfo["temperature"].IsInt() {
		t.Fatal("IsInt mismatch")
	}
}

func TestLoadMetadataErrors(t *testing.T) {
	cases := map[string]string{
		"invalid json":    `{`,
		"no sets":         `{"features_sets": {}}`,
		"missing feature": `{"features_sets": {"s1": ["N"]}, "features_info": {}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			p := writeFile(t, dir, MetadataFile, body)
			if _, err := LoadMetadata(p); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := LoadDir(t.TempDir()); err == nil {
		t.Fatal("expected error when metadata.json is missing")
	}
}

func TestWatchCoalescesEvents(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, 50*time.Millisecond, func() { calls <- struct{}{} })
	}()
	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "ignored.txt", "x")
	writeFile(t, dir, "s1_RF.gob", "a")
	writeFile(t, dir, "s1_DT.gob", "b")

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange was not called")
	}
	select {
	case <-calls:
		t.Fatal("events should have been coalesced")
	case <-time.After(200 * time.Millisecond):
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}
}
