// Package config provides configuration structures and utilities for leakspider.
// It defines crawl settings, mail alert settings, and per-site overrides loaded
// from CLI flags and an optional YAML configuration file.
package config
