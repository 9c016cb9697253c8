package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix maps nested keys like "remote.dsn" to HEALTHREG_REMOTE_DSN.
const envPrefix = "HEALTHREG"

// Config is the full process configuration.
type Config struct {
	Server       Server       `mapstructure:"server"`
	Log          Log          `mapstructure:"log"`
	Storage      Storage      `mapstructure:"storage"`
	Redis        RedisConfig  `mapstructure:"redis"`
	Remote       Remote       `mapstructure:"remote"`
	Connectivity Connectivity `mapstructure:"connectivity"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	OperatorToken   string        `mapstructure:"operator_token"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Storage selects the key-value backend that holds the offline queue.
type Storage struct {
	Backend string `mapstructure:"backend"` // file | redis | memory
	Path    string `mapstructure:"path"`
	Key     string `mapstructure:"key"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Remote configures the network-side patient store.
type Remote struct {
	Kind             string        `mapstructure:"kind"`   // postgres | rest | none
	Driver           string        `mapstructure:"driver"` // postgres | pgx
	DSN              string        `mapstructure:"dsn"`
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Table            string        `mapstructure:"table"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
}

type Connectivity struct {
	InitialOnline *bool `mapstructure:"initial_online"`
}

const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"

	RemotePostgres = "postgres"
	RemoteREST     = "rest"
	RemoteNone     = "none"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindKeys(v)
	return v
}

// bindKeys registers every key so AutomaticEnv resolves them during
// Unmarshal even when no config file mentions them.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.addr", "server.operator_token", "server.shutdown_timeout",
		"log.level", "log.format",
		"storage.backend", "storage.path", "storage.key",
		"redis.url", "redis.pool_size", "redis.min_idle_conns",
		"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
		"remote.kind", "remote.driver", "remote.dsn", "remote.base_url",
		"remote.api_key", "remote.table", "remote.timeout",
		"remote.failure_threshold", "remote.cooldown",
		"connectivity.initial_online",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at path, merges HEALTHREG_* overrides, applies
// defaults and validates.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return finalize(v)
}

// LoadFromEnv builds a Config from HEALTHREG_* variables and defaults only.
func LoadFromEnv() (*Config, error) {
	return finalize(newViper())
}

func finalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate rejects combinations the process cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the file backend"))
		}
	case StorageRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis.url is required for the redis backend"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}

	switch c.Remote.Kind {
	case RemotePostgres:
		if c.Remote.DSN == "" {
			errs = append(errs, errors.New("remote.dsn is required for the postgres remote"))
		}
		if c.Remote.Driver != "postgres" && c.Remote.Driver != "pgx" {
			errs = append(errs, fmt.Errorf("unknown remote.driver %q", c.Remote.Driver))
		}
	case RemoteREST:
		if c.Remote.BaseURL == "" {
			errs = append(errs, errors.New("remote.base_url is required for the rest remote"))
		}
	case RemoteNone:
	default:
		errs = append(errs, fmt.Errorf("unknown remote.kind %q", c.Remote.Kind))
	}
	if !identifierPattern.MatchString(c.Remote.Table) {
		errs = append(errs, fmt.Errorf("remote.table %q is not a plain identifier", c.Remote.Table))
	}
	return errors.Join(errs...)
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// StartOnline resolves the initial connectivity assumption. Unset means online.
func (c Connectivity) StartOnline() bool {
	if c.InitialOnline == nil {
		return true
	}
	return *c.InitialOnline
}
