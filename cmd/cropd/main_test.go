package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestParseFlagsEnvDefaults(t *testing.T) {
	t.Setenv("CROPD_ADDR", ":9191")
	t.Setenv("CROPD_MODELS_DIR", "/srv/models")
	o, err := parseFlags(flag.NewFlagSet("cropd", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if o.addr != ":9191" || o.modelsDir != "/srv/models" || !o.watch || !o.corsEnabled {
		t.Fatalf("options = %+v", o)
	}
}

func TestParseFlagsConfigFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cropd.yaml")
	body := "addr: :7000\nmodels_dir: /from/file\nmax_loaded: 3\nwatch: false\ncors:\n  origins: [\"http://a\", \"http://b\"]\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	o, err := parseFlags(flag.NewFlagSet("cropd", flag.ContinueOnError), []string{"--config", p, "--addr", ":7001"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if o.addr != ":7001" {
		t.Fatalf("explicit flag should win, addr = %q", o.addr)
	}
	if o.modelsDir != "/from/file" || o.maxLoaded != 3 || o.watch {
		t.Fatalf("file values not applied: %+v", o)
	}
	if o.corsOrigins != "http://a,http://b" {
		t.Fatalf("cors origins = %q", o.corsOrigins)
	}
}

func TestParseFlagsBadConfig(t *testing.T) {
	_, err := parseFlags(flag.NewFlagSet("cropd", flag.ContinueOnError), []string{"--config", filepath.Join(t.TempDir(), "missing.toml")})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestZerologLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":      zerolog.InfoLevel,
		"debug": zerolog.DebugLevel,
		"error": zerolog.ErrorLevel,
		"off":   zerolog.Disabled,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := zerologLevel(in); got != want {
			t.Fatalf("zerologLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
