package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"twharvest/pkg/auth"
	"twharvest/pkg/config"
	"twharvest/pkg/harvest"
	"twharvest/pkg/logger"
	"twharvest/pkg/ui"
)

var (
	// Version information
	version   = "0.3.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile      string
	logLevel        string
	credentialsFile string
	credSource      string
	profile         string
	authMode        string
	outputDir       string
	metricsAddr     string
	separateBudgets bool
	notify          bool
	noColor         bool
	quiet           bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "twharvest",
	Short: "Harvest timelines, friend lists and searches across many API credentials",
	Long: `twharvest downloads user timelines, friend lists and search results from the
Twitter v1.1 REST API into tab-separated tables.

Every credential in the pool is a separate rate-limit budget. Before each page
the harvester checks the active credential's remaining quota, switches to the
credential with the most calls left, and when all are exhausted sleeps until
the earliest window resets.

Features:
  - Credential pools from CSV files, the system keychain or an encrypted file
  - Consecutive error budgets with partial output on abort
  - Keyword tagging for timelines and searches
  - Persisted default user list
  - Prometheus metrics and desktop notifications`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetColor(!noColor)
		ui.SetQuiet(quiet)

		if cmd.Name() != "version" && cmd.Name() != "help" && !quiet {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (default is ./twharvest.yaml or ~/.config/twharvest/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&credentialsFile, "credentials", "", "credentials CSV file (selects the file source)")
	pf.StringVar(&credSource, "source", "", "credentials source (file, keyring, encrypted, env)")
	pf.StringVar(&profile, "profile", "", "keyring profile holding the credential table")
	pf.StringVar(&authMode, "auth-mode", "", "request signing: user (OAuth 1.0a) or app (bearer token)")
	pf.StringVarP(&outputDir, "output", "o", "", "directory for result tables")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.BoolVar(&separateBudgets, "separate-budgets", false, "count rate-limit and transient errors separately")
	pf.BoolVar(&notify, "notify", false, "enable notifications")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`twharvest {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// commandFlags collects the global flags in the form config.Load expects.
func commandFlags() map[string]interface{} {
	return map[string]interface{}{
		"credentials":      credentialsFile,
		"source":           credSource,
		"profile":          profile,
		"auth-mode":        authMode,
		"output":           outputDir,
		"log-level":        logLevel,
		"metrics-addr":     metricsAddr,
		"separate-budgets": separateBudgets,
		"notify":           notify,
	}
}

// loadConfig loads configuration and initializes the global logger with a
// per-run id.
func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configFile, commandFlags())
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithField("run_id", uuid.NewString())
	logger.SetLogger(log)
	return cfg, log, nil
}

// session is everything a harvesting command needs.
type session struct {
	cfg       *config.Config
	log       logger.Logger
	pool      *auth.Pool
	harvester *harvest.Harvester
}

// openSession loads configuration and the credential pool, starts the
// metrics listener when enabled, and wires a harvester.
func openSession(ctx context.Context) (*session, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	src, err := auth.OpenSource(cfg.Twitter.Credentials, promptPassphrase)
	if err != nil {
		return nil, err
	}
	pool, err := auth.LoadPool(src)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			fmt.Println("\nTo add credentials, run:")
			fmt.Println("  twharvest auth guide")
		}
		return nil, err
	}
	log.WithFields(map[string]interface{}{
		"source":      src.Name(),
		"credentials": pool.Len(),
		"version":     version,
	}).Info("twharvest starting")

	if cfg.Metrics.Enabled {
		serveMetrics(ctx, cfg.Metrics.Address, log)
	}

	h, err := harvest.NewFromConfig(cfg, pool, ui.NewProgressDisplay(cfg.Logging.Level == "debug"), log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, pool: pool, harvester: h}, nil
}

// serveMetrics exposes /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.WithField("addr", addr).Info("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics listener failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
