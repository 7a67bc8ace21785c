package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"grshelves/internal/browser"
	"grshelves/internal/config"
	"grshelves/internal/metrics"
	"grshelves/internal/model"
	"grshelves/internal/output"
	"grshelves/internal/report"
	"grshelves/internal/sites/goodreads"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var version = "dev"

const (
	envEmail    = "GOODREADS_EMAIL"
	envPassword = "GOODREADS_PASSWORD"
	envProxy    = "GRSHELVES_PROXY"
)

var (
	configFile   string
	email        string
	password     string
	shelf        string
	outputDir    string
	outputFormat string
	reportFile   string
	wait         time.Duration
	timeout      time.Duration
	maxPages     int
	cacheDetails int
	showUI       bool
	proxyURL     string
	chromeBin    string
	metricsAddr  string
	verbose      bool
)

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "grshelves",
		Short: "Export your Goodreads friends' shelves with book details and genres",
		Long: `grshelves signs in to Goodreads with a real browser, walks your friends
list, reads every friend's shelf and visits each book page for its details
and genres. The results are written as the books_data and genre_data tables.`,
		Example: `  # Credentials from the environment or a .env file
  GOODREADS_EMAIL=me@example.com GOODREADS_PASSWORD=secret grshelves

  # Parquet output, first two pages of each list, with a genre report
  grshelves --format parquet --max-pages 2 --report data/genres.md

  # Another shelf, visible browser, through a proxy
  grshelves --shelf to-read --showui --proxy http://127.0.0.1:7890`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file with URLs, selectors and defaults")
	rootCmd.Flags().StringVarP(&email, "email", "e", "", "Goodreads account email, defaults to "+envEmail+" env var")
	rootCmd.Flags().StringVar(&password, "password", "", "Goodreads account password, defaults to "+envPassword+" env var")
	rootCmd.Flags().StringVar(&shelf, "shelf", defaults.Shelf, "Shelf to read for every friend")
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", defaults.OutputDir, "Output directory for books_data and genre_data")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", defaults.Format, "Output format (csv, json, parquet, dual)")
	rootCmd.Flags().StringVar(&reportFile, "report", "", "Write a Markdown genre report to this file")
	rootCmd.Flags().DurationVarP(&wait, "wait", "w", defaults.Wait, "How long to wait for the next-page link")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", defaults.Timeout, "Page load timeout")
	rootCmd.Flags().IntVar(&maxPages, "max-pages", defaults.MaxPages, "Max pages to paginate per list (-1 for no limit)")
	rootCmd.Flags().IntVar(&cacheDetails, "cache-details", defaults.CacheSize, "Reuse up to N book pages already read (0 disables)")
	rootCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", "", "Proxy URL (e.g. http://127.0.0.1:7890), defaults to "+envProxy+" env var")
	rootCmd.Flags().StringVar(&chromeBin, "chrome", "", "Chrome/Chromium executable (downloaded when empty)")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Verbose)
	slog.SetDefault(logger)

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr, m, logger)
		defer srv.Close()
	}

	ctx := cmd.Context()

	b, err := browser.New(ctx, browser.Config{
		Headless: cfg.Headless,
		ProxyURL: cfg.ProxyURL,
		Bin:      cfg.ChromeBin,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	if b.ProxyURL() != "" {
		logger.Info("using proxy", slog.String("proxy", b.ProxyURL()))
	}

	start := time.Now()
	res, err := goodreads.NewScraper(cfg, logger, m).Scrape(ctx, b, model.Credential{
		Email:    cfg.Email,
		Password: cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to scrape: %w", err)
	}

	files, err := output.Write(cfg.OutputDir, cfg.Format, res.Books, res.Genres)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, f := range files {
		logger.Info("output written", slog.String("path", f))
	}

	if cfg.ReportFile != "" {
		if err := report.New(res, cfg.Shelf, time.Now()).WriteFile(cfg.ReportFile); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		files = append(files, cfg.ReportFile)
	}

	report.Summary{
		Shelf:   cfg.Shelf,
		Result:  res,
		Files:   files,
		Elapsed: time.Since(start),
	}.Write(os.Stderr)

	return nil
}

// buildConfig layers defaults, the config file, environment variables and
// explicitly set flags, in increasing precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		if err := config.Load(configFile, cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(envEmail); v != "" {
		cfg.Email = v
	}
	if v := os.Getenv(envPassword); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv(envProxy); v != "" {
		cfg.ProxyURL = v
	}

	flags := cmd.Flags()
	if flags.Changed("email") {
		cfg.Email = email
	}
	if flags.Changed("password") {
		cfg.Password = password
	}
	if flags.Changed("shelf") {
		cfg.Shelf = shelf
	}
	if flags.Changed("out") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("format") {
		cfg.Format = strings.ToLower(outputFormat)
	}
	if flags.Changed("report") {
		cfg.ReportFile = reportFile
	}
	if flags.Changed("wait") {
		cfg.Wait = wait
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("max-pages") {
		cfg.MaxPages = maxPages
	}
	if flags.Changed("cache-details") {
		cfg.CacheSize = cacheDetails
	}
	if flags.Changed("showui") {
		cfg.Headless = !showUI
	}
	if flags.Changed("proxy") {
		cfg.ProxyURL = proxyURL
	}
	if flags.Changed("chrome") {
		cfg.ChromeBin = chromeBin
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	return cfg, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func startMetricsServer(addr string, m *metrics.Metrics, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	logger.Info("metrics server enabled", slog.String("addr", addr))
	return srv
}
