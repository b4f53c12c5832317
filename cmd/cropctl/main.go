// Command cropctl prepares crop recommendation datasets and trains models.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"croprec/internal/config"
)

// cli carries state shared by all subcommands of one invocation.
type cli struct {
	logLevel   string
	configPath string
	cfg        config.Config
	log        zerolog.Logger
}

// flagAliases maps the short dataset-tool spellings onto the long flag names.
var flagAliases = map[string]string{
	"sn":             "save-name",
	"pp":             "path-prefix",
	"path_prefix":    "path-prefix",
	"cfn":            "combined-filename",
	"ml":             "merge-labels",
	"adr":            "allow-duplicate-rows",
	"swp":            "save-with-prefix",
	"sfn":            "stats-filename",
	"stats_filename": "stats-filename",
}

func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if long, ok := flagAliases[name]; ok {
		name = long
	}
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "cropctl",
		Short:         "Dataset preparation and model training for crop recommendation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := zerolog.ParseLevel(c.logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", c.logLevel, err)
			}
			c.log = zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).
				Level(lvl).With().Timestamp().Logger()
			log.Logger = c.log
			if c.configPath != "" {
				cfg, err := config.Load(c.configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				c.cfg = cfg
				if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
					if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
						c.log = c.log.Level(lvl)
						log.Logger = c.log
					}
				}
			}
			return nil
		},
	}
	root.SetErr(stderr)
	root.SetGlobalNormalizationFunc(normalizeFlag)
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", envOr("CROPCTL_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Optional config file (.yaml, .json or .toml)")

	root.AddCommand(
		newCleanCmd(c),
		newCombineCmd(c),
		newStatsCmd(c),
		newDescribeCmd(c),
		newTrainCmd(c),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root := newRootCmd(os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
