package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables the loader reads, e.g.
// ECHOSCRIBE_TRANSCRIPTION_API_KEY sets transcription.api_key.
const envPrefix = "ECHOSCRIBE_"

// Keys whose trailing underscores belong to the field name, not the section
// path. ECHOSCRIBE_TRANSCRIPTION_API_KEY must map to transcription.api_key
// rather than transcription.api.key.
var compoundFields = []string{
	"api_key", "base_url", "whisper_url", "no_color",
	"fast_model", "strong_model", "fast_timeout", "strong_timeout",
	"max_piece_size", "header_size", "max_body_size",
	"read_timeout", "write_timeout", "idle_timeout", "sample_rate",
	"service_version",
}

// Loader options.
type LoaderOptions struct {
	ConfigFile string // explicit config.yml path
	EnvFile    string // explicit .env path
}

// Option adjusts the loader.
type Option func(*LoaderOptions)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) Option {
	return func(o *LoaderOptions) { o.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(o *LoaderOptions) { o.EnvFile = path }
}

// Load builds the App configuration: config.yml first, then .env, then the
// process environment, then defaults for whatever is still unset. The result
// is validated before it is returned.
func Load(opts ...Option) (*App, error) {
	var lo LoaderOptions
	for _, opt := range opts {
		opt(&lo)
	}

	v := viper.New()

	configFile := lo.ConfigFile
	if configFile == "" {
		configFile = findFirst("./config.yml", "./config/config.yml", "./cmd/echoscribe/config.yml")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	envFile := lo.EnvFile
	if envFile == "" {
		envFile = findFirst("./.env", "./config/.env")
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	bindEnv(v)

	cfg := &App{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// bindEnv sets every ECHOSCRIBE_* environment variable on the viper
// instance under its dotted key, so Unmarshal sees it layered over the file
// values.
func bindEnv(v *viper.Viper) {
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		v.Set(envKey(name), value)
	}
}

// envKey converts ECHOSCRIBE_TRANSCRIPTION_API_KEY to
// transcription.api_key.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	for _, field := range compoundFields {
		if key == field {
			return key
		}
		if strings.HasSuffix(key, "_"+field) {
			section := strings.TrimSuffix(key, "_"+field)
			return strings.ReplaceAll(section, "_", ".") + "." + field
		}
	}
	return strings.ReplaceAll(key, "_", ".")
}

func findFirst(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
