package predictor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var modelNameRe = regexp.MustCompile(`^s[0-9]{1,2}_[A-Z]+$`)

// ValidModelName reports whether name has the form s<1-2 digits>_<UPPERCASE>.
func ValidModelName(name string) bool { return modelNameRe.MatchString(name) }

// Predict classifies one instance with the named model. values maps feature
// names to their raw text. Validation failures carry the codes listed in
// errors.go and are checked in that order.
func (s *Service) Predict(ctx context.Context, modelName string, values map[string]string) (label string, err error) {
	defer func() { observePrediction(modelName, err) }()

	c, err := s.snapshot()
	if err != nil {
		return "", err
	}
	if !ValidModelName(modelName) {
		return "", errCode(CodeBadModelName, nil)
	}
	setID, key, _ := strings.Cut(modelName, "_")

	features, ok := c.Metadata.FeaturesSets[setID]
	if !ok {
		return "", errCode(CodeBadFeatureSet, nil)
	}
	entry, ok := c.Lookup(setID, key)
	if !ok {
		return "", errCode(CodeNonExistingModel, nil)
	}
	if !sameKeys(values, features) {
		return "", errCode(CodeBadModelFeatures, nil)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	bundle, err := s.ensureBundle(entry)
	if err != nil {
		return "", errCode(CodeLoadModel, err)
	}

	x := make([]float64, len(features))
	for i, f := range features {
		raw := values[f]
		if len(raw) == 0 {
			return "", errCode(CodeValueIsEmpty, fmt.Errorf("feature %s", f))
		}
		v, err := coerce(raw, c.Metadata.FeaturesInfo[f].IsInt())
		if err != nil {
			return "", errCode(CodeValueIsNotNumber, fmt.Errorf("feature %s: %w", f, err))
		}
		x[i] = v
	}
	// bundles may list features in another order than metadata
	x, err = reorder(x, features, bundle.Features)
	if err != nil {
		return "", errCode(CodeLoadModel, err)
	}

	label, err = bundle.PredictOne(x)
	if err != nil {
		return "", fmt.Errorf("predict %s: %w", modelName, err)
	}
	if bundle.LabelEncoded {
		return s.decode(label)
	}
	return label, nil
}

func (s *Service) decode(code string) (string, error) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return "", &decodeError{Code: code, Err: errors.New("not an integer")}
	}
	s.mu.RLock()
	enc := s.encoder
	s.mu.RUnlock()
	out, err := enc.InverseTransform([]int{n})
	if err != nil {
		return "", &decodeError{Code: code, Err: err}
	}
	return out[0], nil
}

// coerce parses raw as an integer when asInt is set, otherwise as a float.
// Surrounding whitespace is ignored.
func coerce(raw string, asInt bool) (float64, error) {
	raw = strings.TrimSpace(raw)
	if asInt {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
	return strconv.ParseFloat(raw, 64)
}

func sameKeys(values map[string]string, features []string) bool {
	want := make(map[string]struct{}, len(features))
	for _, f := range features {
		want[f] = struct{}{}
	}
	if len(values) != len(want) {
		return false
	}
	for k := range values {
		if _, ok := want[k]; !ok {
			return false
		}
	}
	return true
}

func reorder(x []float64, from, to []string) ([]float64, error) {
	if len(to) == 0 {
		return x, nil
	}
	pos := make(map[string]int, len(from))
	for i, f := range from {
		pos[f] = i
	}
	out := make([]float64, len(to))
	for i, f := range to {
		j, ok := pos[f]
		if !ok {
			return nil, fmt.Errorf("model expects feature %q", f)
		}
		out[i] = x[j]
	}
	return out, nil
}
