package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SummaryConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// GoogleConfig holds the OAuth2 client used for social login.
// Login with Google is disabled when ClientID is empty.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Summary  SummaryConfig  `mapstructure:"summary"`
	Google   GoogleConfig   `mapstructure:"google"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "data/expenses.db")
	v.SetDefault("database.log_mode", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "expense-tracker")
	v.SetDefault("jwt.access_ttl", 5*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 24*time.Hour)

	v.SetDefault("security.bcrypt_cost", 12)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("summary.cache_ttl", 60*time.Second)

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "http://localhost:8001/api/auth/google/callback/")
}

// Load reads configuration from the given YAML file (e.g. "config.yaml").
// If path is empty, "config.yaml" in the working directory is tried and a
// missing file is not an error. Variables from a .env file are loaded into
// the process environment first; EXP_-prefixed variables override file
// values, e.g. EXP_SERVER_PORT=9000 or EXP_JWT_SECRET=...
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("EXP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.JWT.Secret == "" && c.Server.Mode == "release" {
		errs = append(errs, errors.New("jwt.secret is required in release mode"))
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid jwt.access_ttl %s: must be positive", c.JWT.AccessTTL))
	}
	if c.JWT.RefreshTTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid jwt.refresh_ttl %s: must be positive", c.JWT.RefreshTTL))
	}
	if c.Summary.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid summary.cache_ttl %s: must be positive", c.Summary.CacheTTL))
	}
	if c.Google.ClientID != "" && c.Google.ClientSecret == "" {
		errs = append(errs, errors.New("google.client_secret is required when google.client_id is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GoogleEnabled reports whether social login is configured.
func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != ""
}
