package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"croprec/internal/common/fsutil"
	"croprec/internal/config"
	"croprec/internal/httpapi"
	"croprec/internal/predictor"
	"croprec/internal/registry"
)

type options struct {
	addr           string
	modelsDir      string
	configPath     string
	logLevel       string
	maxLoaded      int
	maxBodyBytes   int64
	predictTimeout time.Duration
	watch          bool
	corsEnabled    bool
	corsOrigins    string
	corsMethods    string
	corsHeaders    string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.StringVar(&o.addr, "addr", envOr("CROPD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	fs.StringVar(&o.modelsDir, "models-dir", envOr("CROPD_MODELS_DIR", "./models"), "Directory holding metadata.json and *.gob model bundles")
	fs.StringVar(&o.configPath, "config", "", "Optional config file (.yaml, .json or .toml)")
	fs.StringVar(&o.logLevel, "log-level", envOr("CROPD_LOG_LEVEL", "info"), "Log level: debug|info|error|off")
	fs.IntVar(&o.maxLoaded, "max-loaded", 0, "Maximum bundles kept in memory (0=default, <0 disables caching)")
	fs.Int64Var(&o.maxBodyBytes, "max-body-bytes", 0, "Maximum prediction body size in bytes (0=1MiB)")
	fs.DurationVar(&o.predictTimeout, "predict-timeout", 10*time.Second, "Per-prediction timeout (0 disables)")
	fs.BoolVar(&o.watch, "watch", true, "Reload the catalog when the models directory changes")
	fs.BoolVar(&o.corsEnabled, "cors", true, "Enable CORS for the web client")
	fs.StringVar(&o.corsOrigins, "cors-origins", "", "Comma-separated allowed origins (default *)")
	fs.StringVar(&o.corsMethods, "cors-methods", "", "Comma-separated allowed methods")
	fs.StringVar(&o.corsHeaders, "cors-headers", "", "Comma-separated allowed headers")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.configPath == "" {
		return o, nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return o, fmt.Errorf("load config: %w", err)
	}
	applyConfig(&o, cfg, explicitFlags(fs))
	return o, nil
}

func explicitFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyConfig copies file values into o for every flag not given on the command line.
func applyConfig(o *options, cfg config.Config, explicit map[string]bool) {
	if !explicit["addr"] && cfg.Addr != "" {
		o.addr = cfg.Addr
	}
	if !explicit["models-dir"] && cfg.ModelsDir != "" {
		o.modelsDir = cfg.ModelsDir
	}
	if !explicit["log-level"] && cfg.LogLevel != "" {
		o.logLevel = cfg.LogLevel
	}
	if !explicit["max-loaded"] && cfg.MaxLoaded != 0 {
		o.maxLoaded = cfg.MaxLoaded
	}
	if !explicit["max-body-bytes"] && cfg.MaxBodyBytes != 0 {
		o.maxBodyBytes = cfg.MaxBodyBytes
	}
	if !explicit["watch"] {
		o.watch = config.Enabled(cfg.Watch, o.watch)
	}
	if !explicit["cors"] {
		o.corsEnabled = config.Enabled(cfg.CORS.Enabled, o.corsEnabled)
	}
	if !explicit["cors-origins"] && len(cfg.CORS.Origins) > 0 {
		o.corsOrigins = strings.Join(cfg.CORS.Origins, ",")
	}
	if !explicit["cors-methods"] && len(cfg.CORS.Methods) > 0 {
		o.corsMethods = strings.Join(cfg.CORS.Methods, ",")
	}
	if !explicit["cors-headers"] && len(cfg.CORS.Headers) > 0 {
		o.corsHeaders = strings.Join(cfg.CORS.Headers, ",")
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func zerologLevel(s string) zerolog.Level {
	switch s {
	case "off":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func main() {
	o, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stderr).Level(zerologLevel(o.logLevel)).With().Timestamp().Str("svc", "cropd").Logger()
	log.Logger = logger

	dir, err := fsutil.ResolveDir(o.modelsDir)
	if err != nil {
		logger.Fatal().Err(err).Str("models_dir", o.modelsDir).Msg("invalid models dir")
	}
	if !fsutil.PathExists(filepath.Join(dir, registry.MetadataFile)) {
		logger.Fatal().Str("models_dir", dir).Msgf("%s not found in models dir", registry.MetadataFile)
	}
	cat, err := registry.LoadDir(dir)
	if err != nil {
		logger.Fatal().Err(err).Str("models_dir", dir).Msg("failed to load models")
	}
	svc := predictor.New(predictor.Config{Catalog: cat, MaxLoaded: o.maxLoaded})

	httpapi.SetLogger(logger)
	httpapi.SetDefaultLogLevel(o.logLevel)
	httpapi.SetMaxBodyBytes(o.maxBodyBytes)
	httpapi.SetPredictTimeout(o.predictTimeout)
	httpapi.SetCORSOptions(o.corsEnabled, splitCSV(o.corsOrigins), splitCSV(o.corsMethods), splitCSV(o.corsHeaders))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(ctx)

	if o.watch {
		go func() {
			err := registry.Watch(ctx, dir, 500*time.Millisecond, func() {
				c, err := registry.LoadDir(dir)
				if err != nil {
					logger.Error().Err(err).Msg("catalog reload failed; keeping previous catalog")
					return
				}
				svc.Reload(c)
				logger.Info().Int("models", len(c.Entries())).Msg("catalog reloaded")
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("models dir watch stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              o.addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", o.addr).Str("models_dir", dir).Int("models", len(cat.Entries())).Msg("cropd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}
