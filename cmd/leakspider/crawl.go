package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leakspider/leakspider/internal/alert"
	"github.com/leakspider/leakspider/internal/config"
	"github.com/leakspider/leakspider/internal/crawler"
	"github.com/leakspider/leakspider/internal/database"
	"github.com/leakspider/leakspider/internal/detect"
	"github.com/leakspider/leakspider/internal/log"
	"github.com/leakspider/leakspider/internal/model"
	"github.com/leakspider/leakspider/internal/pipeline"
	"github.com/leakspider/leakspider/internal/report"
	"github.com/leakspider/leakspider/internal/results"
	"github.com/leakspider/leakspider/internal/tor"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [onion-address]...",
		Short: "Crawl hidden services for leaked credentials",
		Long: `Crawl fetches a hidden service breadth-first through Tor and scans every
text page for leaked credentials in the email:password dump format.

Each discovery is recorded to the append-only results file and the local
database with the secret one-way hashed, and an alert email is sent when
mail settings are configured. Page fetch failures and alert delivery
failures are logged and skipped; they never abort the crawl.

Examples:
  # Crawl a single onion service with the embedded Tor daemon
  leakspider crawl exampleonion.onion

  # Crawl several services in one run
  leakspider crawl site1.onion site2.onion site3.onion

  # Use an external Tor proxy instead of the embedded daemon
  leakspider crawl --external-tor 127.0.0.1:9050 exampleonion.onion

  # One digest mail per run instead of one alert per discovery
  leakspider crawl --digest exampleonion.onion

  # Write the run report as JSON
  leakspider crawl --json -o report.json exampleonion.onion

Configuration file (.leakspider) example:
  mail:
    host: smtp.example.com
    port: 587
    sender: alerts@example.com
    receiver: security@example.com
  sites:
    exampleonion.onion:
      cookie: "session_id=abc123"
      depth: 3
      ignorePatterns:
        - "/logout"

The SMTP password is read from the LEAKSPIDER_SMTP_PASSWORD environment
variable, or from the config file's mail.password field.`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Tor connection flags
	cmd.Flags().StringP("external-tor", "e", "",
		"Use external Tor proxy at specified address (e.g., 127.0.0.1:9050)")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl recursion depth")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per hidden service")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Politeness delay between consecutive requests")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls when multiple addresses are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .leakspider in current or home directory)")

	// Alert flags
	cmd.Flags().Bool("no-alert", false,
		"Disable alert delivery; discoveries are still persisted")
	cmd.Flags().Bool("digest", false,
		"Send one digest alert per run instead of one alert per discovery")

	// Output flags
	cmd.Flags().StringP("results", "r", "",
		"Append-only results file path (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Setup failures are fatal; everything after this point degrades
	// gracefully instead.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	externalTor, err := cmd.Flags().GetString("external-tor")
	if err != nil {
		return nil, err
	}
	if externalTor != "" {
		cfg.UseExternalTor = true
		cfg.TorProxyAddress = externalTor
	}

	cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout")
	if err != nil {
		return nil, err
	}
	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}
	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}
	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}
	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}
	cfg.NoAlert, err = cmd.Flags().GetBool("no-alert")
	if err != nil {
		return nil, err
	}
	cfg.Digest, err = cmd.Flags().GetBool("digest")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load mail and site configuration from the config file.
	// An explicitly given path that does not exist is an error; an absent
	// default file just means empty configuration.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		cfg.Sites, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Mail = cfg.Sites.Mail
	case explicitConfigPath:
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.Sites = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	resultsFile, err := cmd.Flags().GetString("results")
	if err != nil {
		return nil, err
	}
	if resultsFile != "" {
		cfg.ResultsFile = resultsFile
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Targets = args
	return cfg, nil
}

// runCrawl executes the crawl run for all targets.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Validate and normalize all onion addresses up front.
	for i, target := range cfg.Targets {
		normalized, err := tor.NormalizeAddress(target)
		if err != nil {
			return fmt.Errorf("invalid onion address %q: %w", target, err)
		}
		cfg.Targets[i] = normalized
	}

	logger.Info("starting crawl",
		slog.Any("targets", cfg.Targets),
		slog.Bool("useExternalTor", cfg.UseExternalTor),
		slog.Int("batchSize", cfg.BatchSize))

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Read/write flushed per statement

	if dir := filepath.Dir(cfg.ResultsFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}
	writer, err := results.NewWriter(cfg.ResultsFile)
	if err != nil {
		return fmt.Errorf("failed to open results file: %w", err)
	}
	defer writer.Close() //nolint:errcheck // O_APPEND writes are flushed per line

	client, embeddedTor, err := connectTor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if embeddedTor != nil {
		defer func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := embeddedTor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", slog.String("error", err.Error()))
			}
		}()
	}

	dispatcher := alert.NewDispatcher(buildNotifier(cfg, logger), cfg.Digest, logger)

	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, client, db, writer, dispatcher, logger)
	}
	return runSequentialCrawl(ctx, cfg, client, db, writer, dispatcher, logger)
}

// connectTor establishes Tor connectivity: an external proxy when
// requested, otherwise the embedded daemon. The proxy handshake is
// verified either way; a bad proxy is a fatal setup error.
func connectTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, *tor.EmbeddedTor, error) {
	if cfg.UseExternalTor {
		client, err := tor.NewClient(cfg.TorProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, nil, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)",
				status, cfg.TorProxyAddress)
		}
		logger.Info("Tor proxy connection verified", slog.String("address", cfg.TorProxyAddress))
		return client, nil, nil
	}

	fmt.Println("Starting embedded Tor daemon...")
	fmt.Printf("This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embeddedTor := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	logger.Info("embedded Tor daemon started",
		slog.String("socksAddr", embeddedTor.SocksAddr()),
		slog.String("controlAddr", embeddedTor.ControlAddr()))

	client, err := embeddedTor.NewClient(cfg.Timeout)
	if err != nil {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}
	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %s", status)
	}

	fmt.Printf("Embedded Tor daemon started successfully!\nSOCKS proxy: %s\n\n", embeddedTor.SocksAddr())
	return client, embeddedTor, nil
}

// buildNotifier picks the alert channel from the configuration: SMTP when
// mail is configured, the structured log otherwise.
func buildNotifier(cfg *config.Config, logger *slog.Logger) alert.Notifier {
	if cfg.NoAlert || !cfg.Mail.Enabled() {
		if !cfg.NoAlert {
			logger.Info("no mail configuration; alerts go to the log")
		}
		return alert.NewLogNotifier(logger)
	}
	port := cfg.Mail.Port
	if port == 0 {
		port = config.DefaultSMTPPort
	}
	return alert.NewMailNotifier(cfg.Mail.Host, port, cfg.Mail.Sender, cfg.Mail.Password, cfg.Mail.Receiver)
}

// buildPipelineForTarget wires a pipeline honoring per-site overrides.
func buildPipelineForTarget(
	cfg *config.Config,
	client *tor.Client,
	db *database.LeakDB,
	writer *results.Writer,
	dispatcher *alert.Dispatcher,
	logger *slog.Logger,
	target string,
) *pipeline.Pipeline {
	siteConfig := cfg.Sites.GetSiteConfig(target)

	var httpClient *http.Client
	if siteConfig.Cookie != "" || len(siteConfig.Headers) > 0 {
		httpClient = client.HTTPClientWithConfig(siteConfig.Cookie, siteConfig.Headers)
	} else {
		httpClient = client.NewHTTPClient()
	}

	depth := cfg.CrawlDepth
	if siteConfig.Depth > 0 {
		depth = siteConfig.Depth
	}

	spider := crawler.NewSpider(httpClient,
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithMaxDepth(depth),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithIgnorePatterns(siteConfig.IgnorePatterns),
		crawler.WithFollowPatterns(siteConfig.FollowPatterns),
		crawler.WithLogger(logger),
	)

	return pipeline.DefaultPipeline(spider, detect.NewScanner(), db, writer, dispatcher, logger)
}

// runSequentialCrawl crawls targets one at a time.
func runSequentialCrawl(
	ctx context.Context,
	cfg *config.Config,
	client *tor.Client,
	db *database.LeakDB,
	writer *results.Writer,
	dispatcher *alert.Dispatcher,
	logger *slog.Logger,
) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := buildPipelineForTarget(cfg, client, db, writer, dispatcher, logger, target)
		crawlReport := model.NewCrawlReport(target)

		fmt.Printf("Crawling %s...\n", target)
		startTime := time.Now()

		if err := p.Execute(ctx, crawlReport); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			// A failed target never takes down the run.
			logger.Error("crawl failed", slog.String("target", target), slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", target, err)
			continue
		}

		fmt.Printf("Crawl completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", slog.String("target", target), slog.String("error", err.Error()))
		}
	}
	return nil
}

// runBatchCrawl crawls multiple targets concurrently using BatchProcessor.
// Site-specific overrides still apply because the factory receives the
// seed for each crawl.
func runBatchCrawl(
	ctx context.Context,
	cfg *config.Config,
	client *tor.Client,
	db *database.LeakDB,
	writer *results.Writer,
	dispatcher *alert.Dispatcher,
	logger *slog.Logger,
) error {
	fmt.Printf("Starting batch crawl of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(target string) *pipeline.Pipeline {
			return buildPipelineForTarget(cfg, client, db, writer, dispatcher, logger, target)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil {
		return err
	}

	for i, crawlReport := range reports {
		if crawlReport == nil {
			continue
		}
		fmt.Printf("[%d/%d] Crawl completed: %s\n", i+1, len(reports), crawlReport.Seed)
		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", slog.String("target", crawlReport.Seed), slog.String("error", err.Error()))
		}
	}

	fmt.Printf("\nBatch crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}

// outputReport writes the run report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list account identifiers; owner-only permissions.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Write error surfaces from writer
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(crawlReport)
	return err
}
