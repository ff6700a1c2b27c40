package fetcher

import "time"

// Default configuration values.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxContentSize = 5_000_000
)

// DefaultUserAgent mimics a desktop browser. News sites routinely serve
// reduced or blocked pages to obvious bot agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds HTTP client settings for page fetching.
type Config struct {
	UserAgent          string
	Timeout            time.Duration
	MaxContentSize     int64
	InsecureSkipVerify bool
}

// WithDefaults returns a copy of the config with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxContentSize <= 0 {
		c.MaxContentSize = DefaultMaxContentSize
	}
	return c
}
