package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".leakspider"

// smtpPasswordEnv is the environment variable consulted for the SMTP sender
// credential when the config file leaves it empty. Keeping the credential out
// of the file entirely is the recommended setup.
const smtpPasswordEnv = "LEAKSPIDER_SMTP_PASSWORD"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads mail and site configuration from a YAML file.
// If the file does not exist it returns ErrConfigNotFound; callers decide
// whether that is fatal based on whether the path was explicitly given.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}
	if cf.Mail.Port == 0 {
		cf.Mail.Port = DefaultSMTPPort
	}
	// The environment always wins over the file for the credential so a
	// checked-in config file never needs to carry a password.
	if env := os.Getenv(smtpPasswordEnv); env != "" {
		cf.Mail.Password = env
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in order:
// the explicit path, .leakspider in the current directory, .leakspider in
// the home directory, then the XDG config directory.
// Returns an empty string if nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	candidate := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return ""
}
