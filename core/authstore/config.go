package authstore

import "time"

// Config holds token store configuration with environment variable support.
type Config struct {
	AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"720h"`
	RenewWithin     time.Duration `env:"AUTH_RENEW_WITHIN" envDefault:"5m"`
}

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 30 * 24 * time.Hour
	defaultRenewWithin     = 5 * time.Minute
)

type settings struct {
	accessTTL   time.Duration
	refreshTTL  time.Duration
	renewWithin time.Duration
}

func defaultSettings() settings {
	return settings{
		accessTTL:   defaultAccessTokenTTL,
		refreshTTL:  defaultRefreshTokenTTL,
		renewWithin: defaultRenewWithin,
	}
}

// Option adjusts token store behavior.
type Option func(*settings)

// WithAccessTTL sets the lifetime of newly issued access tokens.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL sets the lifetime of newly issued refresh tokens.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithRenewWithin sets the sliding renewal threshold: an access token whose
// remaining lifetime drops below this value is rotated on the next response.
// Zero disables automatic renewal.
func WithRenewWithin(d time.Duration) Option {
	return func(s *settings) {
		s.renewWithin = d
	}
}

// FromConfig applies environment-derived configuration.
func FromConfig(cfg Config) Option {
	return func(s *settings) {
		if cfg.AccessTokenTTL > 0 {
			s.accessTTL = cfg.AccessTokenTTL
		}
		if cfg.RefreshTokenTTL > 0 {
			s.refreshTTL = cfg.RefreshTokenTTL
		}
		s.renewWithin = cfg.RenewWithin
	}
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
