package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/obsidianstack/valvecalc/internal/valve"
)

// EnvPrefix prefixes every environment override, e.g.
// VALVECALC_SERVER_HTTP_PORT or VALVECALC_LOGGING_LEVEL.
const EnvPrefix = "VALVECALC"

// Default values for the configuration.
const (
	DefaultDecimals    = 0
	DefaultMaxMachines = 10000
	DefaultHTTPPort    = 8080
	DefaultGRPCPort    = 50051
	DefaultKeyEnv      = "VALVECALC_API_KEY"
	DefaultHeader      = "x-api-key"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
)

// Config is the root of config.yaml.
type Config struct {
	Calculator CalculatorConfig `yaml:"calculator" envconfig:"CALCULATOR"`
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
}

// CalculatorConfig holds limits and defaults applied by the input adapters.
type CalculatorConfig struct {
	// DefaultDecimals is used when the decimals field is left blank.
	DefaultDecimals int `yaml:"default_decimals" envconfig:"DEFAULT_DECIMALS"`

	// MaxMachines caps the machine count accepted from forms, the API and
	// the websocket. 0 disables the cap.
	MaxMachines int `yaml:"max_machines" envconfig:"MAX_MACHINES"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	// HTTPPort is the port the form page, REST API and websocket listen on.
	HTTPPort int `yaml:"http_port" envconfig:"HTTP_PORT"`

	// GRPCPort is the port the gRPC calculator service listens on. 0 disables it.
	GRPCPort int `yaml:"grpc_port" envconfig:"GRPC_PORT"`

	// Auth configures how /api/, /ws/ and gRPC clients authenticate.
	Auth AuthConfig `yaml:"auth" envconfig:"AUTH"`

	// CORSOrigins lists origins allowed to call /api/ from a browser. Empty
	// disables CORS handling.
	CORSOrigins []string `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`

	// LiveInterval, when positive, makes each websocket connection re-send
	// its last report on this period.
	LiveInterval time.Duration `yaml:"live_interval" envconfig:"LIVE_INTERVAL"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode" envconfig:"MODE"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env" envconfig:"KEY_ENV"`

	// Header is the HTTP header to read the key from.
	Header string `yaml:"header" envconfig:"HEADER"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultHeader
}

// Enabled reports whether requests must carry an API key.
func (a AuthConfig) Enabled() bool {
	return a.Mode == "apikey"
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// Load reads the config file at path, applies environment overrides and
// validates the result. An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Calculator: CalculatorConfig{
			DefaultDecimals: DefaultDecimals,
			MaxMachines:     DefaultMaxMachines,
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			GRPCPort: DefaultGRPCPort,
			Auth:     AuthConfig{
				Mode:   "none",
				KeyEnv: DefaultKeyEnv,
				Header: DefaultHeader,
			},
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	c := cfg.Calculator
	if c.DefaultDecimals < valve.MinDecimals || c.DefaultDecimals > valve.MaxDecimals {
		return fmt.Errorf("calculator.default_decimals %d is out of range [%d, %d]",
			c.DefaultDecimals, valve.MinDecimals, valve.MaxDecimals)
	}
	if c.MaxMachines < 0 {
		return fmt.Errorf("calculator.max_machines must not be negative")
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.GRPCPort < 0 || cfg.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port %d is out of range [0, 65535]", cfg.Server.GRPCPort)
	}
	if cfg.Server.GRPCPort != 0 && cfg.Server.GRPCPort == cfg.Server.HTTPPort {
		return fmt.Errorf("server.grpc_port and server.http_port must differ")
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.Auth.Enabled() && cfg.Server.Auth.KeyEnv == "" {
		return fmt.Errorf("server.auth.key_env is required when mode is apikey")
	}
	if cfg.Server.LiveInterval < 0 {
		return fmt.Errorf("server.live_interval must not be negative")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q unknown: want debug|info|warn|error", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q unknown: want json|text", cfg.Logging.Format)
	}
	return nil
}
