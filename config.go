package shortcodes

import (
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
	"golang.org/x/xerrors"
)

// Config holds all externally supplied settings. Every field is read from
// the environment variable named in its env tag.
type Config struct {
	Addr            string        `env:"SHORTCODES_ADDR" envDefault:":5656"`
	BaseURL         string        `env:"SHORTCODES_BASE_URL" envDefault:"http://localhost:5656/"`
	StorageDSN      string        `env:"SHORTCODES_STORAGE_DSN" envDefault:"file:shortcodes.sqlite?_journal_mode=wal&_busy_timeout=5000"`
	CodeLength      int           `env:"SHORTCODES_CODE_LENGTH" envDefault:"6"`
	MaxAttempts     int           `env:"SHORTCODES_MAX_ATTEMPTS" envDefault:"5"`
	StrictURLs      bool          `env:"SHORTCODES_STRICT_URLS" envDefault:"false"`
	CacheTTL        time.Duration `env:"SHORTCODES_CACHE_TTL" envDefault:"10m"`
	LogLevel        string        `env:"SHORTCODES_LOG_LEVEL" envDefault:"info"`
	LogFile         string        `env:"SHORTCODES_LOG_FILE"`
	ShutdownTimeout time.Duration `env:"SHORTCODES_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, xerrors.Errorf("error parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings can be used to run the service.
func (c *Config) Validate() error {
	if c.StorageDSN == "" {
		return xerrors.New("storage DSN must not be empty")
	}
	return c.validateShortening()
}

// validateShortening checks the settings a Shortener depends on.
func (c *Config) validateShortening() error {
	if c.CodeLength < 1 {
		return xerrors.Errorf("code length must be positive, got %d", c.CodeLength)
	}
	if c.MaxAttempts < 1 {
		return xerrors.Errorf("max attempts must be positive, got %d", c.MaxAttempts)
	}
	if _, err := parseBaseURL(c.BaseURL); err != nil {
		return err
	}
	return nil
}

// parseBaseURL parses an absolute base URL and makes sure its path ends in
// a slash, so codes are appended to it instead of replacing its last segment.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, xerrors.Errorf("could not parse base URL '%s': %w", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, xerrors.Errorf("base URL '%s' must be absolute", raw)
	}
	if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
		u.Path += "/"
	}
	return u, nil
}
