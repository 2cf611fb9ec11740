package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leakspider/leakspider/internal/config"
)

// TestNewCrawlCmd tests the crawl command creation and flags.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has descriptions", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
	})

	tests := []struct {
		flag      string
		shorthand string
	}{
		{"external-tor", "e"},
		{"tor-timeout", "T"},
		{"timeout", "t"},
		{"depth", "d"},
		{"max-pages", "p"},
		{"delay", ""},
		{"batch", "b"},
		{"config", "c"},
		{"no-alert", ""},
		{"digest", ""},
		{"results", "r"},
		{"json", "j"},
		{"markdown", "m"},
		{"output", "o"},
	}
	for _, tt := range tests {
		t.Run("has "+tt.flag+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.flag)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.flag)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
		})
	}
}

// TestBuildConfig tests flag-to-config plumbing.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{"example.onion"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}

		if cfg.UseExternalTor {
			t.Error("expected embedded Tor by default")
		}
		if cfg.TorProxyAddress != config.DefaultTorProxyAddress {
			t.Errorf("unexpected proxy address: %q", cfg.TorProxyAddress)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("unexpected timeout: %s", cfg.Timeout)
		}
		if cfg.CrawlDepth != config.DefaultCrawlDepth {
			t.Errorf("unexpected depth: %d", cfg.CrawlDepth)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("unexpected max pages: %d", cfg.MaxPages)
		}
		if cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("unexpected batch size: %d", cfg.BatchSize)
		}
		if cfg.Digest || cfg.NoAlert {
			t.Error("expected per-discovery alerts by default")
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != "example.onion" {
			t.Errorf("unexpected targets: %v", cfg.Targets)
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		args := []string{
			"--external-tor", "127.0.0.1:9150",
			"--timeout", "30s",
			"--depth", "2",
			"--max-pages", "10",
			"--delay", "0s",
			"--batch", "3",
			"--digest",
			"--no-alert",
			"--json",
		}
		cmd.SetArgs(args)
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"example.onion"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}

		if !cfg.UseExternalTor || cfg.TorProxyAddress != "127.0.0.1:9150" {
			t.Errorf("external tor not applied: %+v", cfg)
		}
		if cfg.Timeout != 30*time.Second {
			t.Errorf("unexpected timeout: %s", cfg.Timeout)
		}
		if cfg.CrawlDepth != 2 || cfg.MaxPages != 10 || cfg.BatchSize != 3 {
			t.Errorf("limits not applied: depth=%d pages=%d batch=%d", cfg.CrawlDepth, cfg.MaxPages, cfg.BatchSize)
		}
		if cfg.CrawlDelay != 0 {
			t.Errorf("unexpected delay: %s", cfg.CrawlDelay)
		}
		if !cfg.Digest || !cfg.NoAlert || !cfg.JSONReport {
			t.Errorf("boolean flags not applied: %+v", cfg)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		args := []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		if _, err := buildConfig(cmd, []string{"example.onion"}); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("loads mail and site settings from config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "leakspider.yaml")
		content := `mail:
  host: smtp.example.com
  sender: alerts@example.com
  receiver: security@example.com
sites:
  example.onion:
    depth: 3
    cookie: "session=abc"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		args := []string{"--config", path}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"example.onion"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}

		if !cfg.Mail.Enabled() {
			t.Errorf("expected mail enabled: %+v", cfg.Mail)
		}
		site := cfg.Sites.GetSiteConfig("example.onion")
		if site.Depth != 3 || site.Cookie != "session=abc" {
			t.Errorf("unexpected site config: %+v", site)
		}
	})

	t.Run("invalid flag combination fails validation", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		args := []string{"--json", "--markdown"}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"example.onion"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if err := cfg.Validate(); !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("no targets fails validation", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if err := cfg.Validate(); !errors.Is(err, config.ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})
}

// TestRunCrawlRejectsInvalidAddress tests that a bad onion address is a
// fatal setup error.
func TestRunCrawlRejectsInvalidAddress(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"crawl", "not-a-valid-onion"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for invalid onion address")
	}
}
