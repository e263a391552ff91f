package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// config is read from STEEZY_* variables and storefront.yaml. Flags belong to
// the subcommands, so the loader skips them.
type config struct {
	APIURL    string        `default:"http://localhost:8080" usage:"Catalog API base URL" env:"API_URL"`
	StatePath string        `usage:"Local state file holding recently viewed products" env:"STATE_PATH"`
	Timeout   time.Duration `default:"10s" usage:"Per-command timeout"`
	LogLevel  string        `default:"warn" usage:"Log level (debug, info, warn, error)" env:"LOG_LEVEL"`
}

func loadConfig() (*config, error) {
	return loadConfigFrom(aconfig.Config{
		EnvPrefix:        "STEEZY",
		AllowUnknownEnvs: true,
		SkipFlags:        true,
		Files:            []string{"storefront.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfigFrom(ac aconfig.Config) (*config, error) {
	var cfg config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if cfg.StatePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(err, "resolve state path")
		}
		cfg.StatePath = filepath.Join(dir, "steezy", "state.db")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.Errorf("invalid timeout %s", cfg.Timeout)
	}
	return &cfg, nil
}

// newLogger writes human-readable logs to stderr so they never mix with
// command output.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	lg, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}
