package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes the environment variables read by LoadConfig, e.g.
// CATALOG_SERVER_ADDRESS.
const EnvPrefix = "CATALOG"

// Config holds all configuration for the application
type Config struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`

	// WebServer describes where the client bundle is served from.
	WebServer WebServerConfig `mapstructure:"web_server"`
}

// ServerConfig holds configuration for the GraphQL server
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Path         string        `mapstructure:"path"`
	Playground   bool          `mapstructure:"playground"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`

	// StrictSchema rejects query field name collisions between resources.
	StrictSchema bool `mapstructure:"strict_schema"`
}

// StoreConfig holds configuration for the document store
type StoreConfig struct {
	URL      string `mapstructure:"url"`
	SeedFile string `mapstructure:"seed_file"`
}

// WebServerConfig mirrors the webServer section of package.json
type WebServerConfig struct {
	Protocol string `mapstructure:"protocol"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Folder   string `mapstructure:"folder"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Address:      ":3000",
			Path:         "/graphql",
			Playground:   true,
			Timeout:      10 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Store: StoreConfig{
			URL: "mem://{collection}/id",
		},
		WebServer: WebServerConfig{
			Protocol: "http",
			Host:     "localhost",
			Port:     3000,
			Folder:   "dist",
		},
	}
}

// LoadConfig loads configuration from file and environment variables. An
// optional viper instance carrying bound command line flags takes precedence.
func LoadConfig(configFile string, flags *viper.Viper) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := DefaultConfig()

	v := flags
	if v == nil {
		v = viper.New()
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	setDefaults(v, config)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so that environment variables are seen by
// Unmarshal even when the config file does not mention them.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("debug", c.Debug)
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("log_file", c.LogFile)
	v.SetDefault("server.address", c.Server.Address)
	v.SetDefault("server.path", c.Server.Path)
	v.SetDefault("server.playground", c.Server.Playground)
	v.SetDefault("server.timeout", c.Server.Timeout)
	v.SetDefault("server.max_body_bytes", c.Server.MaxBodyBytes)
	v.SetDefault("server.strict_schema", c.Server.StrictSchema)
	v.SetDefault("store.url", c.Store.URL)
	v.SetDefault("store.seed_file", c.Store.SeedFile)
	v.SetDefault("web_server.protocol", c.WebServer.Protocol)
	v.SetDefault("web_server.host", c.WebServer.Host)
	v.SetDefault("web_server.port", c.WebServer.Port)
	v.SetDefault("web_server.folder", c.WebServer.Folder)
}

// NewLogger creates a zap logger based on the configuration
func (c *Config) NewLogger() (*zap.Logger, error) {
	var level zapcore.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}
	if c.Debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.Level.SetLevel(level)

	if c.LogFile != "" {
		cfg.OutputPaths = []string{c.LogFile, "stdout"}
		cfg.ErrorOutputPaths = []string{c.LogFile, "stderr"}
	} else {
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}

	return logger, nil
}

// Validate checks the server and store configuration
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address must be specified")
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server path must start with /")
	}
	if c.Store.URL == "" {
		return fmt.Errorf("store url must be specified")
	}
	if !strings.Contains(c.Store.URL, "{collection}") {
		return fmt.Errorf("store url must contain {collection}")
	}
	if c.WebServer.Port <= 0 {
		return fmt.Errorf("web server port must be greater than 0")
	}
	return nil
}
