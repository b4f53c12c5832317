package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func checkServer(t *testing.T, cfg Config, addr, dir string, maxLoaded int) {
	t.Helper()
	if cfg.Addr != addr || cfg.ModelsDir != dir || cfg.MaxLoaded != maxLoaded {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `addr: :9999
models_dir: /tmp
max_loaded: 4
watch: false
cors:
  origins: ["http://localhost:5173"]
train:
  trees: 50
  test_ratio: 0.25
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkServer(t, cfg, ":9999", "/tmp", 4)
	if Enabled(cfg.Watch, true) {
		t.Fatal("watch should be disabled")
	}
	if !Enabled(cfg.CORS.Enabled, true) || len(cfg.CORS.Origins) != 1 {
		t.Fatalf("cors = %+v", cfg.CORS)
	}
	if cfg.Train.Trees != 50 || cfg.Train.TestRatio != 0.25 {
		t.Fatalf("train = %+v", cfg.Train)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","models_dir":"/m","max_loaded":-1,"cors":{"enabled":false}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkServer(t, cfg, ":7070", "/m", -1)
	if Enabled(cfg.CORS.Enabled, true) {
		t.Fatal("cors should be disabled")
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nmodels_dir=\"/x\"\nmax_loaded=2\n\n[train]\nseed=7\nworkers=3\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkServer(t, cfg, ":8081", "/x", 2)
	if cfg.Train.Seed != 7 || cfg.Train.Workers != 3 {
		t.Fatalf("train = %+v", cfg.Train)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	p = writeTempFile(t, d, "ratio.yaml", "train:\n  test_ratio: 1.5\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected test_ratio range error")
	}
}
