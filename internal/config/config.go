package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("dishom version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Endpoint EndpointConfig `mapstructure:"endpoint"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
}

type EndpointConfig struct {
	BaseURL string            `json:"base_url" mapstructure:"base_url"`
	Timeout time.Duration     `json:"timeout" mapstructure:"timeout"`
	Headers map[string]string `json:"headers" mapstructure:"headers"`
}

// StorageDriver selects where the token and user records are persisted
type StorageDriver string

const (
	StorageDriverFile   StorageDriver = "file"
	StorageDriverMemory StorageDriver = "memory"
	StorageDriverRedis  StorageDriver = "redis"
)

type StorageConfig struct {
	Driver StorageDriver `mapstructure:"driver"`
	Path   string        `mapstructure:"path"`
	Redis  RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type RefreshConfig struct {
	// SingleFlight shares one in-flight refresh call between concurrent requests.
	SingleFlight bool `mapstructure:"single_flight"`
}

type ServerMode string

const (
	ServerModeSTDIO ServerMode = "stdio"
	ServerModeHTTP  ServerMode = "http"
)

type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	Host    string     `mapstructure:"host"`
	Mode    ServerMode `mapstructure:"mode"`
	Name    string     `mapstructure:"name"`
	Version string     `mapstructure:"version"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
	MaxSizeMB         int    `mapstructure:"max_size_mb"`
	MaxBackups        int    `mapstructure:"max_backups"`
}

// InitFlags registers the global command line flags on fs (without parsing)
func InitFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config file")
	fs.String("base-url", "", "Base URL of the Dishom backend")
	fs.String("storage", "", "Storage driver (file|memory|redis)")
	fs.String("log-level", "", "Log level (debug|info|warn|error)")
}

// DefaultStoragePath returns the per-user storage file location
func DefaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "dishom", "storage.json")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint.base_url", "http://localhost:8000")
	v.SetDefault("endpoint.timeout", 30*time.Second)
	v.SetDefault("storage.driver", string(StorageDriverFile))
	v.SetDefault("storage.path", DefaultStoragePath())
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.prefix", "dishom:")
	v.SetDefault("refresh.single_flight", true)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.disable_stacktrace", true)
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("server.mode", string(ServerModeSTDIO))
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8765)
	v.SetDefault("server.name", "Dishom")
	v.SetDefault("server.version", version)
}

// Load reads the configuration from files, .env, environment and the flags in fs.
// fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DISHOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var explicit string
	if fs != nil {
		explicit, _ = fs.GetString("config")
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "dishom"))
		}
		v.AddConfigPath("/etc/dishom")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if fs != nil {
		applyFlags(&cfg, fs)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) {
	if baseURL, _ := fs.GetString("base-url"); baseURL != "" {
		cfg.Endpoint.BaseURL = baseURL
	}
	if driver, _ := fs.GetString("storage"); driver != "" {
		cfg.Storage.Driver = StorageDriver(driver)
	}
	if level, _ := fs.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate checks the settings that cannot be defaulted
func (c *Config) Validate() error {
	c.Endpoint.BaseURL = strings.TrimRight(c.Endpoint.BaseURL, "/")

	switch c.Storage.Driver {
	case StorageDriverFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the file storage driver")
		}
	case StorageDriverMemory:
	case StorageDriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for the redis storage driver, set it in the config or DISHOM_STORAGE_REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}

	switch c.Server.Mode {
	case ServerModeSTDIO, ServerModeHTTP:
	default:
		return fmt.Errorf("unsupported server mode: %s", c.Server.Mode)
	}
	return nil
}
