package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Store drivers understood by app.OpenStore.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	Server Server `mapstructure:"server"`
	Store  Store  `mapstructure:"store"`
	Auth   Auth   `mapstructure:"auth"`
	Logger Logger `mapstructure:"logger"`
	Client Client `mapstructure:"client"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Store holds the configuration for the document store.
type Store struct {
	Driver   string        `mapstructure:"driver"`
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Auth holds the configuration for session tokens.
type Auth struct {
	TokenKey   string        `mapstructure:"token_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Client holds the configuration for journalctl's API client.
type Client struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// LoadConfig reads configuration from an optional config file in path, a .env
// file in the working directory and environment variables, in increasing order
// of precedence. The result is not validated; processes that need the store
// and token settings call Validate.
func LoadConfig(path string) (config Config, err error) {
	if err = loadDotEnv(".env"); err != nil {
		return
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Names used by the deployed frontend stack.
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("store.uri", "MONGO_URI", "STORE_URI")
	_ = v.BindEnv("auth.token_key", "TOKEN_KEY", "AUTH_TOKEN_KEY")

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3002)
	v.SetDefault("server.allowed_origin", "http://localhost:3001")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("store.driver", DriverMongo)
	v.SetDefault("store.uri", "")
	v.SetDefault("store.database", "journal")
	v.SetDefault("store.timeout", 10*time.Second)

	v.SetDefault("auth.token_key", "")
	v.SetDefault("auth.token_ttl", 72*time.Hour)
	v.SetDefault("auth.cookie_name", "token")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("client.base_url", "http://localhost:3002")
	v.SetDefault("client.rate_limit", 10)
	v.SetDefault("client.rate_limit_burst", 5)
}

// Validate reports the first missing or inconsistent setting.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.URI == "" {
		return errors.New("store uri is required (MONGO_URI)")
	}
	if c.Auth.TokenKey == "" {
		return errors.New("auth token key is required (TOKEN_KEY)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// loadDotEnv exports the variables of a .env file without overriding the
// ones already set. A missing file is not an error.
func loadDotEnv(name string) error {
	if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(name); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}
