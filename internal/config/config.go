package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config is the process-wide configuration, built once at startup and
// validated before anything issues a request. The backend exposes two URL
// prefixes: a public one for the flashcard endpoints and a private one for
// reading and vocabulary.
type Config struct {
	PublicURL  string `koanf:"public_url" validate:"required,url"`
	PrivateURL string `koanf:"private_url" validate:"required,url"`
	Lang       string `koanf:"lang" validate:"required"`
	Group      string `koanf:"group"`
	Listen     string `koanf:"listen" validate:"required"`
	HistoryDB  string `koanf:"history_db" validate:"required"`
	// TimeoutSecs bounds each backend request. Zero means no timeout,
	// matching the original client.
	TimeoutSecs int `koanf:"timeout_secs" validate:"gte=0"`
}

// Timeout returns the request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Flags returns the flag set whose values feed into Load. Flag defaults
// are the configuration defaults.
func Flags() *pflag.FlagSet {
	f := pflag.NewFlagSet("langfi", pflag.ContinueOnError)
	f.String("config", "", "Path to a YAML config file")
	f.String("public-url", "http://localhost:9000/public/api/v1", "Public API prefix (flashcards)")
	f.String("private-url", "http://localhost:9000/private/api/v1", "Private API prefix (reading/vocab)")
	f.String("lang", "jpx", "Language identifier")
	f.String("group", "", "Card group identifier")
	f.String("listen", "127.0.0.1:8686", "Listen address for the web UI")
	f.String("history-db", "langfi.db", "Path to the local review history database")
	f.Int("timeout-secs", 0, "Per-request timeout in seconds (0 = none)")
	return f
}

// Load merges, in order of increasing precedence: the optional YAML file,
// LANGFI_* environment variables, and command-line flags. The result is
// validated before being returned.
func Load(f *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	path, _ := f.GetString("config")
	if path == "" {
		path = os.Getenv("LANGFI_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("LANGFI_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "LANGFI_")), "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(pf *pflag.Flag) (string, interface{}) {
		key := strings.ReplaceAll(pf.Name, "-", "_")
		return key, posflag.FlagVal(f, pf)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	cfg.PrivateURL = strings.TrimRight(cfg.PrivateURL, "/")

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
