// Package trainer fits and evaluates classifiers over CSV datasets.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"croprec/internal/classifier"
	"croprec/internal/dataset"
)

// Model families the trainer can fit.
const (
	ModelForest = "rf"
	ModelTree   = "dt"
)

// Options configures Run. Zero values pick the defaults noted per field.
type Options struct {
	// TestRatio is the held-out share, default 0.3.
	TestRatio float64
	// Seed drives the split and the forest; 0 picks a time-based seed.
	Seed int64
	// Model is ModelForest (default) or ModelTree.
	Model    string
	Trees    int // default 100
	MaxDepth int // 0 is unlimited
	// Workers bounds how many datasets train at once, default 1.
	Workers int

	// OutDir enables bundle export; requires exactly one dataset and FeatureSet.
	OutDir     string
	FeatureSet string
	ModelKey   string // default "RF" or "DT"
	// EncodeLabels exports integer class codes instead of names. The codes
	// index the sorted Classes, which must be the class list the models are
	// served with; dataset labels outside it are rejected.
	EncodeLabels bool
	Classes      []string
}

// Report is the outcome for one dataset. Metric values are percentages
// rounded to four decimals.
type Report struct {
	Dataset    string             `json:"dataset"`
	Rows       int                `json:"rows"`
	NullRows   int                `json:"null_rows"`
	TrainRows  int                `json:"train_rows"`
	TestRows   int                `json:"test_rows"`
	Classes    []string           `json:"classes"`
	Metrics    classifier.Metrics `json:"metrics"`
	BundlePath string             `json:"bundle_path,omitempty"`
}

var (
	errNoFiles   = errors.New("no datasets given")
	errNoClasses = errors.New("label encoding needs the served class list")
)

func (o *Options) defaults() error {
	if o.TestRatio == 0 {
		o.TestRatio = 0.3
	}
	if o.TestRatio <= 0 || o.TestRatio >= 1 {
		return fmt.Errorf("test ratio %v must be in (0, 1)", o.TestRatio)
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	switch o.Model {
	case "":
		o.Model = ModelForest
	case ModelForest, ModelTree:
	default:
		return fmt.Errorf("unknown model %q (want %s or %s)", o.Model, ModelForest, ModelTree)
	}
	if o.Trees <= 0 {
		o.Trees = 100
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.ModelKey == "" {
		o.ModelKey = strings.ToUpper(o.Model)
	}
	if o.EncodeLabels && len(o.Classes) == 0 {
		return errNoClasses
	}
	return nil
}

// Run trains one model per dataset file. Reports keep the order of files.
func Run(ctx context.Context, files []string, opts Options) ([]Report, error) {
	if len(files) == 0 {
		return nil, errNoFiles
	}
	if err := opts.defaults(); err != nil {
		return nil, err
	}
	if opts.OutDir != "" && (len(files) != 1 || opts.FeatureSet == "") {
		return nil, errors.New("bundle export needs exactly one dataset and a feature set id")
	}

	reports := make([]Report, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := TrainFile(f, opts, opts.Seed+int64(i))
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// TrainFile reads, cleans of nulls, splits, fits and evaluates one dataset.
func TrainFile(path string, opts Options, seed int64) (Report, error) {
	rep := Report{Dataset: strings.TrimSuffix(filepath.Base(path), ".csv")}
	t, err := dataset.ReadFile(path)
	if err != nil {
		return rep, err
	}
	if _, err := t.LabelIndex(); err != nil {
		return rep, err
	}
	rep.Rows = t.Len()
	rep.NullRows = dataset.DropNulls(t)
	if rep.NullRows > 0 {
		log.Info().Str("event", "train_drop_nulls").Str("dataset", rep.Dataset).
			Int("before", rep.Rows).Int("after", t.Len()).Send()
	}
	m, err := dataset.ToMatrix(t)
	if err != nil {
		return rep, err
	}
	enc := classifier.NewLabelEncoder(m.Labels)
	if opts.EncodeLabels {
		enc = classifier.NewLabelEncoder(opts.Classes)
	}
	y, err := enc.Transform(m.Labels)
	if err != nil {
		if opts.EncodeLabels {
			return rep, fmt.Errorf("label outside served classes %v: %w", enc.Classes, err)
		}
		return rep, err
	}
	rep.Classes = enc.Classes

	rnd := rand.New(rand.NewSource(seed))
	trainIdx, testIdx := classifier.TrainTestSplit(len(y), opts.TestRatio, rnd)
	if len(trainIdx) == 0 {
		return rep, fmt.Errorf("%d rows leave no training data", len(y))
	}
	xTrain, yTrain := classifier.Take(m.X, y, trainIdx)
	xTest, yTest := classifier.Take(m.X, y, testIdx)
	rep.TrainRows, rep.TestRows = len(trainIdx), len(testIdx)

	model, err := fit(opts, seed, xTrain, yTrain, len(enc.Classes))
	if err != nil {
		return rep, err
	}
	met := classifier.Evaluate(yTest, model.Predict(xTest), len(enc.Classes))
	rep.Metrics = classifier.Metrics{
		Accuracy:  percent(met.Accuracy),
		Precision: percent(met.Precision),
		Recall:    percent(met.Recall),
		F1:        percent(met.F1),
	}
	log.Info().Str("event", "train_done").Str("dataset", rep.Dataset).
		Float64("accuracy", rep.Metrics.Accuracy).Float64("f1", rep.Metrics.F1).Send()

	if opts.OutDir != "" {
		rep.BundlePath, err = export(opts, rep, model, m.Features, enc, met)
		if err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func fit(opts Options, seed int64, X [][]float64, y []int, nClasses int) (classifier.Model, error) {
	if opts.Model == ModelTree {
		dt := classifier.NewDecisionTree(classifier.WithMaxDepth(opts.MaxDepth), classifier.WithTreeSeed(seed))
		return dt, dt.Fit(X, y, nClasses)
	}
	rf := classifier.NewRandomForest(
		classifier.WithNEstimators(opts.Trees),
		classifier.WithForestMaxDepth(opts.MaxDepth),
		classifier.WithSeed(seed),
	)
	return rf, rf.Fit(X, y, nClasses)
}

func export(opts Options, rep Report, model classifier.Model, features []string, enc *classifier.LabelEncoder, met classifier.Metrics) (string, error) {
	classes := enc.Classes
	if opts.EncodeLabels {
		classes = make([]string, len(enc.Classes))
		for i := range classes {
			classes[i] = strconv.Itoa(i)
		}
	}
	b, err := classifier.NewBundle(model, features, classes)
	if err != nil {
		return "", err
	}
	b.FeatureSetID, b.ModelKey = opts.FeatureSet, opts.ModelKey
	if opts.EncodeLabels {
		b.LabelEncoded = true
		b.Vocabulary = enc.Classes
	}
	b.Dataset = rep.Dataset
	b.Metrics = met
	out := filepath.Join(opts.OutDir, classifier.BundleFileName(opts.FeatureSet, opts.ModelKey))
	if err := b.Save(out); err != nil {
		return "", err
	}
	log.Info().Str("event", "bundle_saved").Str("path", out).Str("id", b.ID).Send()
	return out, nil
}

func percent(v float64) float64 {
	return math.Round(v*100*1e4) / 1e4
}
