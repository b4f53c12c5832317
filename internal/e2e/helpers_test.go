package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"croprec/internal/httpapi"
	"croprec/internal/predictor"
	"croprec/internal/registry"
)

const metadata = `{
  "features_sets": {"s1": ["N", "temperature"]},
  "features_info": {
    "N": {"type": "int", "min": 0, "max": 140, "full_name": "Nitrogen", "unit": "kg/ha"},
    "temperature": {"type": "float", "min": 8, "max": 44, "full_name": "Temperature", "unit": "C"}
  },
  "classes": ["rice", "maize"],
  "models_full_name": {"DT": "Decision Tree", "RF": "Random Forest"},
  "datasets": ["combined"]
}`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// rawDataset returns n rows per crop where N separates the classes. Labels
// are mixed case and every row is repeated so cleaning has work to do.
func rawDataset(n, offset int) string {
	var b strings.Builder
	b.WriteString("N,temperature,label\n")
	for i := 0; i < n; i++ {
		maize := fmt.Sprintf("%d,%d.5,Maize\n", 10+i+offset, 20+i%4)
		rice := fmt.Sprintf("%d,%d.5,rice\n", 80+i+offset, 20+i%4)
		b.WriteString(maize + maize + rice)
	}
	b.WriteString("55,,rice\n")
	return b.String()
}

func newServer(t *testing.T, modelsDir string) (*httptest.Server, *predictor.Service) {
	t.Helper()
	c, err := registry.LoadDir(modelsDir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	svc := predictor.New(predictor.Config{Catalog: c})
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return srv, svc
}

func httpGet(t *testing.T, u string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func postJSON(t *testing.T, u string, payload any) (*http.Response, []byte) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(u, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func postForm(t *testing.T, u string, form url.Values) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.PostForm(u, form)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}
	return v
}
