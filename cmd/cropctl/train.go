package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"croprec/internal/common/fsutil"
	"croprec/internal/registry"
	"croprec/internal/trainer"
)

func newTrainCmd(c *cli) *cobra.Command {
	var (
		opts     trainer.Options
		metadata string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "train <dataset> [dataset...]",
		Short: "Train and evaluate a classifier on each dataset",
		Long: "Train and evaluate a classifier on each dataset.\n\n" +
			"Rows with null cells are dropped, 30% of the rest is held out and the\n" +
			"model is scored with accuracy and support-weighted precision, recall and F1.\n" +
			"With --out-dir the trained model is saved as <feature-set>_<model-key>.gob.\n" +
			"--encode-labels codes classes against the served class list: --classes,\n" +
			"else the classes of --metadata, else <out-dir>/metadata.json.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyTrainDefaults(cmd, &opts, c)
			if err := servedClasses(&opts, metadata); err != nil {
				return err
			}
			reports, err := trainer.Run(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			return printReports(cmd, reports)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Model, "model", trainer.ModelForest, "Model family: rf|dt")
	f.IntVar(&opts.Trees, "trees", 100, "Number of trees in the random forest")
	f.IntVar(&opts.MaxDepth, "max-depth", 0, "Maximum tree depth (0=unlimited)")
	f.Float64Var(&opts.TestRatio, "test-ratio", 0.3, "Held-out share of rows")
	f.Int64Var(&opts.Seed, "seed", 0, "Random seed (0=time based)")
	f.IntVar(&opts.Workers, "workers", 1, "Datasets trained concurrently")
	f.StringVar(&opts.OutDir, "out-dir", "", "Save the trained model bundle into this directory")
	f.StringVar(&opts.FeatureSet, "feature-set", "", "Feature set id of the saved bundle, e.g. s1")
	f.StringVar(&opts.ModelKey, "model-key", "", "Model key of the saved bundle (default RF or DT)")
	f.BoolVar(&opts.EncodeLabels, "encode-labels", false, "Store integer class codes in the bundle")
	f.StringSliceVar(&opts.Classes, "classes", nil, "Served class list the codes index, e.g. rice,maize")
	f.StringVar(&metadata, "metadata", "", "metadata.json whose classes the codes index")
	f.BoolVar(&asJSON, "json", false, "Print reports as JSON")
	return cmd
}

// applyTrainDefaults fills options left at their flag default from the config file.
func applyTrainDefaults(cmd *cobra.Command, o *trainer.Options, c *cli) {
	t := c.cfg.Train
	f := cmd.Flags()
	if !f.Changed("trees") && t.Trees > 0 {
		o.Trees = t.Trees
	}
	if !f.Changed("max-depth") && t.MaxDepth > 0 {
		o.MaxDepth = t.MaxDepth
	}
	if !f.Changed("test-ratio") && t.TestRatio > 0 {
		o.TestRatio = t.TestRatio
	}
	if !f.Changed("seed") && t.Seed != 0 {
		o.Seed = t.Seed
	}
	if !f.Changed("workers") && t.Workers > 0 {
		o.Workers = t.Workers
	}
}

// servedClasses resolves the class list label codes are assigned from when
// --classes is not given.
func servedClasses(o *trainer.Options, metadata string) error {
	if !o.EncodeLabels || len(o.Classes) > 0 {
		return nil
	}
	if metadata == "" && o.OutDir != "" {
		if p := filepath.Join(o.OutDir, registry.MetadataFile); fsutil.PathExists(p) {
			metadata = p
		}
	}
	if metadata == "" {
		return nil
	}
	md, err := registry.LoadMetadata(metadata)
	if err != nil {
		return err
	}
	o.Classes = md.Classes
	return nil
}

func printReports(cmd *cobra.Command, reports []trainer.Report) error {
	out := cmd.OutOrStdout()
	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Dataset", "Rows", "Train", "Test", "Classes", "Accuracy", "Precision", "Recall", "F1"})
	for _, r := range reports {
		m := r.Metrics
		table.Append([]string{
			r.Dataset,
			strconv.Itoa(r.Rows),
			strconv.Itoa(r.TrainRows),
			strconv.Itoa(r.TestRows),
			strconv.Itoa(len(r.Classes)),
			pct(m.Accuracy), pct(m.Precision), pct(m.Recall), pct(m.F1),
		})
	}
	table.Render()
	for _, r := range reports {
		if r.BundlePath != "" {
			if _, err := fmt.Fprintf(out, "saved %s\n", r.BundlePath); err != nil {
				return err
			}
		}
	}
	return nil
}

func pct(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
