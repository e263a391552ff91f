package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the API server configuration, loadable from environment
// variables (STEEZY_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STEEZY_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Migrate     bool   `default:"true" usage:"Apply the embedded schema on startup"`
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	HTTP        HTTPConfig
	Graceful    GracefulConfig
}

// RateLimitConfig limits catalog writes per client. Reads are never limited.
type RateLimitConfig struct {
	Max     int           `default:"60"             usage:"Max write requests per window"`
	Window  time.Duration `default:"1m"             usage:"Rate limit window duration"`
	Methods []string      `default:"POST,PUT,DELETE" usage:"HTTP methods subject to the limit"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers for the
// storefront and admin frontends.
type CORSConfig struct {
	Origins          []string `default:"*"     usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// HTTPConfig holds server timeouts.
type HTTPConfig struct {
	ReadTimeout  time.Duration `default:"5s"   usage:"Maximum duration for reading a request" flag:"read-timeout"`
	WriteTimeout time.Duration `default:"10s"  usage:"Maximum duration for writing a response" flag:"write-timeout"`
	IdleTimeout  time.Duration `default:"120s" usage:"Keep-alive idle timeout" flag:"idle-timeout"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from the environment and YAML files, then
// applies platform defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix:        "STEEZY",
		AllowUnknownEnvs: true,
		Files:            []string{"config.yaml", "/etc/steezy/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STEEZY_DATABASE_URL or DATABASE_URL")
	}
	if cfg.RateLimit.Max <= 0 || cfg.RateLimit.Window <= 0 {
		return nil, errors.Errorf("invalid rate limit %d per %s", cfg.RateLimit.Max, cfg.RateLimit.Window)
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the unprefixed DATABASE_URL and PORT variables
// that hosting platforms inject.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
