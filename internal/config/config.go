package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These are chosen for typical Tor network characteristics: connections are
// slow and flaky, and hidden services are easily overwhelmed.
const (
	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	// Port 9050 is the default for the Tor daemon's SOCKS port.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultTimeout is generous because Tor connections traverse multiple
	// relay hops; a short timeout would skip many reachable pages.
	DefaultTimeout = 120 * time.Second

	// DefaultCrawlDepth limits link-following recursion from the seed.
	DefaultCrawlDepth = 5

	// DefaultMaxPages bounds the total pages fetched per seed, guaranteeing
	// termination even on sites with link cycles or generated pages.
	DefaultMaxPages = 100

	// DefaultCrawlDelay is the politeness delay between requests.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultBatchSize is the number of seeds crawled concurrently.
	// 1 preserves strictly sequential fetching across the whole run.
	DefaultBatchSize = 1

	// DefaultUserAgent identifies leakspider in HTTP requests.
	DefaultUserAgent = "leakspider/1.0 (+https://github.com/leakspider/leakspider)"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultSMTPPort is the submission port used for alert mail.
	DefaultSMTPPort = 587

	// AppName is the application name used for XDG directory paths.
	AppName = "leakspider"

	// DefaultResultsFileName is the append-only credential record file,
	// created under the XDG data directory unless overridden.
	DefaultResultsFileName = "results.txt"
)

// Config holds all options for a leakspider run. It is populated from CLI
// flags and the optional YAML config file, then passed into the pipeline by
// dependency injection; there is no global mutable configuration.
type Config struct {
	// TorProxyAddress is the Tor SOCKS5 proxy in "host:port" format.
	// All HTTP requests are routed through it.
	TorProxyAddress string

	// UseExternalTor disables the embedded Tor daemon and uses an
	// already-running proxy at TorProxyAddress instead.
	UseExternalTor bool

	// TorStartupTimeout bounds embedded Tor bootstrap time.
	TorStartupTimeout time.Duration

	// Timeout is the connection timeout for each HTTP request.
	Timeout time.Duration

	// CrawlDepth is the maximum link-following depth from the seed.
	// Depth 0 fetches only the seed page.
	CrawlDepth int

	// MaxPages is the maximum number of pages fetched per seed.
	MaxPages int

	// CrawlDelay is the delay between consecutive fetches.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// MaxBodySize caps the response body bytes read per page.
	MaxBodySize int64

	// BatchSize is the number of seeds crawled concurrently.
	BatchSize int

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// Targets is the list of onion addresses to crawl.
	Targets []string

	// ConfigFilePath is an explicit config file path; empty means search
	// the usual locations.
	ConfigFilePath string

	// Mail configures the SMTP alert notifier. A zero value disables mail
	// delivery; discoveries are then logged instead.
	Mail MailConfig

	// Sites holds per-site overrides loaded from the config file.
	Sites *File

	// Digest consolidates all discoveries of a run into a single alert
	// instead of one alert per discovery.
	Digest bool

	// NoAlert disables alerting entirely. Records are still persisted.
	NoAlert bool

	// ResultsFile is the append-only credential record file path.
	ResultsFile string

	// DBDir is the directory holding the SQLite leak database.
	DBDir string

	// JSONReport and MarkdownReport select the run report format.
	// Mutually exclusive; default is a human-readable summary.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the run report to a file instead of stdout.
	ReportFile string
}

// MailConfig holds the SMTP relay settings for alert delivery.
// All values are externally supplied; the sender password is read from the
// config file or the LEAKSPIDER_SMTP_PASSWORD environment variable, never
// embedded in source.
type MailConfig struct {
	// Host is the SMTP relay hostname.
	Host string `yaml:"host"`

	// Port is the SMTP relay port (default 587).
	Port int `yaml:"port"`

	// Sender is the authenticated sender address.
	Sender string `yaml:"sender"`

	// Password is the sender credential.
	Password string `yaml:"password"`

	// Receiver is the alert recipient address.
	Receiver string `yaml:"receiver"`
}

// Enabled reports whether enough mail settings are present to deliver alerts.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.Sender != "" && m.Receiver != ""
}

// NewConfig creates a Config with default values. Many defaults are non-zero
// (timeouts, ports, limits), so relying on zero values would be wrong; this
// constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		TorProxyAddress:   DefaultTorProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		Timeout:           DefaultTimeout,
		CrawlDepth:        DefaultCrawlDepth,
		MaxPages:          DefaultMaxPages,
		CrawlDelay:        DefaultCrawlDelay,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		BatchSize:         DefaultBatchSize,
		DBDir:             XDGDataDir(),
		ResultsFile:       filepath.Join(XDGDataDir(), DefaultResultsFileName),
	}
}

// XDGDataDir returns the XDG data directory for leakspider.
// On Linux: ~/.local/share/leakspider
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for leakspider.
// On Linux: ~/.config/leakspider
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag parsing, before any network activity, so
// setup errors surface immediately (and fatally) to the operator.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.CrawlDepth < 0 {
		return ErrInvalidCrawlDepth
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if !c.NoAlert && c.Mail.Host != "" && !c.Mail.Enabled() {
		return ErrIncompleteMailConfig
	}
	return nil
}
