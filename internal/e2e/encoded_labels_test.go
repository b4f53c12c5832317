package e2e

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"croprec/internal/registry"
	"croprec/internal/trainer"
	"croprec/pkg/types"
)

// bananaRice is separable on N: banana below 40, rice from 80.
func bananaRice(n int) string {
	var b strings.Builder
	b.WriteString("N,temperature,label\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%d.5,banana\n", 10+i, 20+i%3)
		fmt.Fprintf(&b, "%d,%d.5,rice\n", 80+i, 20+i%3)
	}
	return b.String()
}

// Dataset labels are a strict subset of the served classes; the encoded
// bundle must still decode to the right crop.
func TestPipeline_EncodedSubsetOfServedClasses(t *testing.T) {
	work := t.TempDir()
	modelsDir := t.TempDir()
	data := writeFile(t, work, "crops.csv", bananaRice(20))
	served := strings.Replace(metadata, `"classes": ["rice", "maize"]`, `"classes": ["apple", "banana", "rice"]`, 1)
	mdPath := writeFile(t, modelsDir, registry.MetadataFile, served)

	md, err := registry.LoadMetadata(mdPath)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	trainEncoded := func(key string, classes []string) {
		t.Helper()
		_, err := trainer.Run(context.Background(), []string{data}, trainer.Options{
			Seed: 3, Model: trainer.ModelTree, OutDir: modelsDir, FeatureSet: "s1", ModelKey: key,
			EncodeLabels: true, Classes: classes,
		})
		if err != nil {
			t.Fatalf("train %s: %v", key, err)
		}
	}
	trainEncoded("XGB", md.Classes)
	// codes assigned from the dataset's own labels, as older bundles were
	trainEncoded("DT", []string{"banana", "rice"})

	srv, _ := newServer(t, modelsDir)
	for _, tc := range []struct {
		n    int
		want string
	}{{90, "rice"}, {12, "banana"}} {
		resp, body := postJSON(t, srv.URL+"/predict/s1_XGB", map[string]any{"N": tc.n, "temperature": 21.5})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("N=%d: status %d: %s", tc.n, resp.StatusCode, body)
		}
		if p := decode[types.PredictionResponse](t, body); p.Prediction != tc.want {
			t.Fatalf("N=%d: prediction = %q, want %s", tc.n, p.Prediction, tc.want)
		}
	}

	resp, body := postJSON(t, srv.URL+"/predict/s1_DT", map[string]any{"N": 90, "temperature": 21.5})
	if resp.StatusCode != http.StatusBadRequest || decode[types.ErrorResponse](t, body).Error != "load_model" {
		t.Fatalf("mismatched vocabulary: %d %s", resp.StatusCode, body)
	}
}
