package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"croprec/internal/classifier"
	"croprec/internal/predictor"
	"croprec/internal/registry"
)

// newEncodedPredictor serves s1_ENC, a label-encoded tree whose second code
// is outside the served classes: N below 50 decodes to maize, the rest fail.
func newEncodedPredictor(t *testing.T) *predictor.Service {
	t.Helper()
	dir := t.TempDir()
	md := `{
	  "features_sets": {"s1": ["N", "ph"]},
	  "features_info": {"N": {"type": "int"}, "ph": {"type": "float"}},
	  "classes": ["maize", "rice"]
	}`
	if err := os.WriteFile(filepath.Join(dir, registry.MetadataFile), []byte(md), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dt := classifier.NewDecisionTree()
	if err := dt.Fit([][]float64{{10, 6}, {20, 7}, {70, 6}, {90, 7}}, []int{0, 0, 1, 1}, 2); err != nil {
		t.Fatalf("fit: %v", err)
	}
	b, err := classifier.NewBundle(dt, []string{"N", "ph"}, []string{"0", "5"})
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	b.LabelEncoded = true
	b.Vocabulary = []string{"maize", "rice"}
	if err := b.Save(filepath.Join(dir, "s1_ENC.gob")); err != nil {
		t.Fatalf("save: %v", err)
	}
	c, err := registry.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	return predictor.New(predictor.Config{Catalog: c})
}

func TestPredictDecodeFailureIsInternalError(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	srv := httptest.NewServer(NewMux(newEncodedPredictor(t)))
	defer srv.Close()

	resp, err := http.PostForm(srv.URL+"/predict/s1_ENC", url.Values{"N": {"90"}, "ph": {"7"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", resp.StatusCode)
	}
	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(body.String(), `"error":"internal_error"`) || strings.Contains(body.String(), "decode") {
		t.Fatalf("body = %s", body.String())
	}
	// the cause is logged at error level even with request logging off
	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "decode class code 5") {
		t.Fatalf("log = %q", out)
	}
}

func TestInternalErrorsHideCause(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	cause := errors.New("open /srv/models/s1_RF.gob: permission denied")
	cases := []struct {
		name string
		svc  *mockService
		req  *http.Request
	}{
		{"catalog", &mockService{catalogErr: cause}, httptest.NewRequest(http.MethodGet, "/models", nil)},
		{"predict", &mockService{predictErr: cause}, httptest.NewRequest(http.MethodPost, "/predict/s1_RF", strings.NewReader("N=1"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()
			tc.req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			NewMux(tc.svc).ServeHTTP(w, tc.req)
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status=%d", w.Code)
			}
			if strings.Contains(w.Body.String(), "/srv/models") || !strings.Contains(w.Body.String(), "internal_error") {
				t.Fatalf("body leaks cause: %s", w.Body.String())
			}
			if !strings.Contains(buf.String(), "permission denied") {
				t.Fatalf("cause not logged: %q", buf.String())
			}
		})
	}
}
