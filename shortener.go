package shortcodes

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// reservedCodes are paths routed ahead of the code route; a code equal to
// one of them could never be resolved.
var reservedCodes = map[string]bool{
	"metrics": true,
	"shorten": true,
}

var (
	ErrInvalidURL     = errors.New("invalid URL")
	ErrRetryExhausted = errors.New("no free code found")
)

// Shortener allocates codes for long URLs and resolves them again.
type Shortener struct {
	index       Index
	base        *url.URL
	newCode     func() string
	maxAttempts int
	strict      bool
	logger      *zap.Logger
	metrics     *Metrics
}

// NewShortener returns a Shortener storing mappings in i and building short
// links from cfg.BaseURL. l and m may be nil.
func NewShortener(i Index, cfg *Config, l *zap.Logger, m *Metrics) (*Shortener, error) {
	if err := cfg.validateShortening(); err != nil {
		return nil, err
	}
	base, _ := parseBaseURL(cfg.BaseURL) // validated above
	if l == nil {
		l = zap.NewNop()
	}
	if m == nil {
		m = NewMetrics()
	}

	codeLength := cfg.CodeLength
	return &Shortener{
		index:       i,
		base:        base,
		newCode:     func() string { return NewCode(codeLength) },
		maxAttempts: cfg.MaxAttempts,
		strict:      cfg.StrictURLs,
		logger:      l,
		metrics:     m,
	}, nil
}

// Shorten stores longURL under a fresh code and returns the absolute short
// link. Taken codes are replaced by new ones up to maxAttempts times before
// ErrRetryExhausted is returned.
func (s *Shortener) Shorten(ctx context.Context, longURL string) (string, error) {
	if err := s.checkURL(longURL); err != nil {
		s.metrics.shortened.WithLabelValues(resultInvalid).Inc()
		return "", err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code := s.newCode()
		if reservedCodes[code] {
			s.logger.Debug("skipping reserved code", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}

		err := s.index.Insert(ctx, code, longURL)
		if err == nil {
			s.metrics.shortened.WithLabelValues(resultOK).Inc()
			s.logger.Debug("shortened", zap.String("url", longURL), zap.String("code", code), zap.Int("attempt", attempt))
			return s.shortLink(code), nil
		}
		if !xerrors.Is(err, ErrDuplicateCode) {
			s.metrics.shortened.WithLabelValues(resultError).Inc()
			return "", xerrors.Errorf("error shortening URL: %w", err)
		}

		s.metrics.collisions.Inc()
		s.logger.Debug("code collision", zap.String("code", code), zap.Int("attempt", attempt))
	}

	s.metrics.shortened.WithLabelValues(resultExhausted).Inc()
	s.logger.Error("all generated codes were taken, code space may be too small",
		zap.Int("attempts", s.maxAttempts))

	return "", ErrRetryExhausted
}

// Resolve returns the URL stored for code, or ErrNotFound.
func (s *Shortener) Resolve(ctx context.Context, code string) (string, error) {
	m, err := s.index.Lookup(ctx, code)
	if err != nil {
		if xerrors.Is(err, ErrNotFound) {
			s.metrics.resolved.WithLabelValues(resultMiss).Inc()
			return "", err
		}
		s.metrics.resolved.WithLabelValues(resultError).Inc()
		return "", xerrors.Errorf("error resolving code: %w", err)
	}

	s.metrics.resolved.WithLabelValues(resultHit).Inc()
	return m.LongURL, nil
}

// checkURL rejects empty URLs. In strict mode, only absolute http and https
// URLs with a host are accepted; otherwise URLs are stored as given.
func (s *Shortener) checkURL(longURL string) error {
	if longURL == "" {
		return xerrors.Errorf("empty URL: %w", ErrInvalidURL)
	}
	if !s.strict {
		return nil
	}

	u, err := url.Parse(longURL)
	if err != nil {
		return xerrors.Errorf("could not parse '%s' (%v): %w", longURL, err, ErrInvalidURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return xerrors.Errorf("'%s' is not an absolute http or https URL: %w", longURL, ErrInvalidURL)
	}
	return nil
}

// shortLink joins the base URL and code.
func (s *Shortener) shortLink(code string) string {
	return s.base.ResolveReference(&url.URL{Path: code}).String()
}
