package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"github.com/oukeidos/tamilfix/internal/auth"
	"github.com/oukeidos/tamilfix/internal/gemini"
)

const envPrefix = "TAMILFIX"

// Key sources recorded in Config.KeySource.
const (
	KeySourceEnv      = "Environment Variable"
	KeySourceConfig   = "Config File"
	KeySourceKeychain = auth.SourceKeychain
)

// apiKeyEnvVars are read for gemini.api_key, highest priority first.
var apiKeyEnvVars = []string{envPrefix + "_GEMINI_API_KEY", "GEMINI_API_KEY"}

// Config is the fully resolved runtime configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Correction CorrectionConfig `mapstructure:"correction"`
	Log        LogConfig        `mapstructure:"log"`

	// KeySource says where Gemini.APIKey was found. Empty when there is no key.
	KeySource string `mapstructure:"-"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	Pprof           bool          `mapstructure:"pprof"`
	Metrics         bool          `mapstructure:"metrics"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GeminiConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Endpoint string        `mapstructure:"endpoint"`
	Backend  string        `mapstructure:"backend"`
	Auth     string        `mapstructure:"auth"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CorrectionConfig struct {
	PromptsFile        string  `mapstructure:"prompts_file"`
	FallbackFile       string  `mapstructure:"fallback_file"`
	FallbackConfidence float64 `mapstructure:"fallback_confidence"`
	ModelConfidence    float64 `mapstructure:"model_confidence"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Stubbed in tests.
var (
	keychainKey  = auth.KeychainKey
	dotenvFiles  = []string{".env"}
	envVarRegexp = regexp.MustCompile(`\$\{([^}]+)\}`)
)

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"host":      "server.host",
	"port":      "server.port",
	"pprof":     "server.pprof",
	"model":     "gemini.model",
	"backend":   "gemini.backend",
	"auth":      "gemini.auth",
	"timeout":   "gemini.timeout",
	"prompts":   "correction.prompts_file",
	"fallback":  "correction.fallback_file",
	"log-level": "log.level",
	"log-file":  "log.file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.pprof", false)
	v.SetDefault("server.metrics", true)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", gemini.DefaultModel)
	v.SetDefault("gemini.endpoint", gemini.DefaultEndpoint)
	v.SetDefault("gemini.backend", string(gemini.BackendREST))
	v.SetDefault("gemini.auth", string(gemini.AuthHeader))
	v.SetDefault("gemini.timeout", 30*time.Second)

	v.SetDefault("correction.prompts_file", "")
	v.SetDefault("correction.fallback_file", "")
	v.SetDefault("correction.fallback_confidence", 0.9)
	v.SetDefault("correction.model_confidence", 0.85)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load resolves configuration from defaults, an optional YAML file, the
// environment (after .env is applied) and any flags that were set. When no
// API key is configured the OS keychain is consulted.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(append([]string{"gemini.api_key"}, apiKeyEnvVars...)...); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("tamilfix")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.tamilfix")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Gemini.APIKey = strings.TrimSpace(ResolveEnvVars(cfg.Gemini.APIKey))
	switch {
	case cfg.Gemini.APIKey != "" && apiKeyFromEnv():
		cfg.KeySource = KeySourceEnv
	case cfg.Gemini.APIKey != "":
		cfg.KeySource = KeySourceConfig
	default:
		if key, ok := keychainKey(); ok {
			cfg.Gemini.APIKey = key
			cfg.KeySource = KeySourceKeychain
		}
	}
	return &cfg, nil
}

// apiKeyFromEnv reports whether either key variable is set, .env included.
func apiKeyFromEnv() bool {
	for _, name := range apiKeyEnvVars {
		if strings.TrimSpace(os.Getenv(name)) != "" {
			return true
		}
	}
	return false
}

func loadDotEnv() error {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// Existing environment variables win over .env entries.
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarRegexp.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// Validate checks everything except the presence of an API key.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.Config(fmt.Sprintf("invalid server.port %d", c.Server.Port))
	}
	switch gemini.Backend(c.Gemini.Backend) {
	case gemini.BackendREST, gemini.BackendSDK:
	default:
		return apperrors.Config(fmt.Sprintf("unknown gemini.backend %q (want rest or sdk)", c.Gemini.Backend))
	}
	switch gemini.AuthMode(c.Gemini.Auth) {
	case gemini.AuthHeader, gemini.AuthQuery:
	default:
		return apperrors.Config(fmt.Sprintf("unknown gemini.auth %q (want header or query)", c.Gemini.Auth))
	}
	if strings.TrimSpace(c.Gemini.Model) == "" {
		return apperrors.Config("gemini.model must not be empty")
	}
	if c.Gemini.Timeout <= 0 {
		return apperrors.Config("gemini.timeout must be positive")
	}
	if !inUnitRange(c.Correction.FallbackConfidence) {
		return apperrors.Config("correction.fallback_confidence must be within [0, 1]")
	}
	if !inUnitRange(c.Correction.ModelConfidence) {
		return apperrors.Config("correction.model_confidence must be within [0, 1]")
	}
	return nil
}

// RequireAPIKey fails when no Gemini key was found anywhere.
func (c *Config) RequireAPIKey() error {
	if c.Gemini.APIKey == "" {
		return apperrors.Config("GEMINI_API_KEY not found in environment variables")
	}
	return nil
}

// GeminiOptions converts the gemini section into client options.
func (c *Config) GeminiOptions() gemini.Options {
	return gemini.Options{
		APIKey:   c.Gemini.APIKey,
		Model:    c.Gemini.Model,
		Endpoint: c.Gemini.Endpoint,
		Backend:  gemini.Backend(c.Gemini.Backend),
		Auth:     gemini.AuthMode(c.Gemini.Auth),
		Timeout:  c.Gemini.Timeout,
	}
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func inUnitRange(f float64) bool {
	return f >= 0 && f <= 1
}
