package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"croprec/internal/dataset"
)

func newCleanCmd(c *cli) *cobra.Command {
	var opts dataset.CleanOptions
	cmd := &cobra.Command{
		Use:   "clean <target>",
		Short: "Drop duplicate and null rows and lowercase labels of a CSV dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Target = args[0]
			rep, out, err := dataset.CleanFile(opts)
			if err != nil {
				return err
			}
			c.log.Info().
				Int("initial_rows", rep.InitialRows).
				Int("duplicate_rows", rep.DuplicateRows).
				Int("null_rows", rep.NullRows).
				Int("final_rows", rep.FinalRows).
				Str("output", out).
				Msg("dataset cleaned")
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.SaveName, "save-name", "", "Output filename (default Clean_<target>.csv)")
	cmd.Flags().StringVar(&opts.PathPrefix, "path-prefix", "", "Directory prefix for target and output")
	return cmd
}

func newCombineCmd(c *cli) *cobra.Command {
	var (
		opts   dataset.CombineOptions
		policy int
	)
	cmd := &cobra.Command{
		Use:   "combine <file> <file> [file...]",
		Short: "Combine CSV datasets sharing the same columns",
		Long: "Combine CSV datasets sharing the same columns.\n\n" +
			"Merge policies:\n" +
			" -1  keep only labels of the first dataset\n" +
			"  0  keep every row of every dataset\n" +
			"  1  narrow to the labels of each following dataset",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := dataset.ParseMergePolicy(policy)
			if err != nil {
				return err
			}
			opts.Filenames = args
			opts.MergeLabels = p
			rep, out, err := dataset.CombineFiles(opts)
			if err != nil {
				return err
			}
			c.log.Info().
				Str("policy", rep.Policy.String()).
				Ints("input_rows", rep.InputRows).
				Int("combined_rows", rep.CombinedRows).
				Int("duplicate_rows", rep.DuplicateRows).
				Int("final_rows", rep.FinalRows).
				Str("output", out).
				Msg("datasets combined")
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.CombinedFilename, "combined-filename", "", "Output filename (default YYYYMMDD_HHMMSS.csv)")
	cmd.Flags().IntVar(&policy, "merge-labels", 0, "Label merge policy: -1=first, 0=all, 1=last")
	cmd.Flags().BoolVar(&opts.AllowDuplicateRows, "allow-duplicate-rows", false, "Keep duplicate rows in the result")
	cmd.Flags().StringVar(&opts.PathPrefix, "path-prefix", "", "Directory prefix for input files")
	cmd.Flags().BoolVar(&opts.SaveWithPrefix, "save-with-prefix", false, "Write the output under the path prefix too")
	return cmd
}

func newStatsCmd(c *cli) *cobra.Command {
	var opts dataset.StatsOptions
	cmd := &cobra.Command{
		Use:   "stats <dataset>",
		Short: "Write per-label max/min/mean/median/std of every numeric feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Filename = args[0]
			out, err := dataset.StatsFile(opts)
			if err != nil {
				return err
			}
			c.log.Info().Str("output", out).Msg("stats written")
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.StatsFilename, "stats-filename", "", "Output filename (default stats_<dataset>)")
	cmd.Flags().StringVar(&opts.PathPrefix, "path-prefix", "", "Directory prefix for dataset and output")
	return cmd
}

func newDescribeCmd(c *cli) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "describe <dataset>",
		Short: "Print row count, columns, duplicate/null presence and label counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(prefix, args[0])
			t, err := dataset.ReadFile(path)
			if err != nil {
				return err
			}
			s, err := dataset.Describe(t)
			if err != nil {
				return err
			}
			c.log.Debug().Str("dataset", path).Int("rows", s.Rows).Msg("dataset described")
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "rows: %d\n", s.Rows)
			fmt.Fprintf(w, "columns: %s\n", strings.Join(s.Columns, ", "))
			fmt.Fprintf(w, "duplicates: %t\n", s.HasDuplicates)
			fmt.Fprintf(w, "nulls: %t\n", s.HasNulls)
			fmt.Fprintf(w, "labels: %d\n", len(s.Labels))
			table := tablewriter.NewWriter(w)
			table.SetHeader([]string{"Label", "Count"})
			for _, lc := range s.Labels {
				table.Append([]string{lc.Label, strconv.Itoa(lc.Count)})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "path-prefix", "", "Directory prefix for the dataset")
	return cmd
}
