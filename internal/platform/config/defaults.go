package config

import "time"

const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultStorageBackend = StorageFile
	DefaultStoragePath    = "./data"
	DefaultStorageKey     = "offline_patients"

	DefaultRedisPoolSize     = 10
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second

	DefaultRemoteKind             = RemoteNone
	DefaultRemoteDriver           = "postgres"
	DefaultRemoteTable            = "patients"
	DefaultRemoteTimeout          = 10 * time.Second
	DefaultRemoteFailureThreshold = 3
	DefaultRemoteCooldown         = 30 * time.Second
)

// ApplyDefaults fills zero-value fields. Explicit values always win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.Backend == StorageFile && cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = DefaultStorageKey
	}

	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = DefaultRedisReadTimeout
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = DefaultRedisWriteTimeout
	}

	if cfg.Remote.Kind == "" {
		cfg.Remote.Kind = DefaultRemoteKind
	}
	if cfg.Remote.Driver == "" {
		cfg.Remote.Driver = DefaultRemoteDriver
	}
	if cfg.Remote.Table == "" {
		cfg.Remote.Table = DefaultRemoteTable
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = DefaultRemoteTimeout
	}
	if cfg.Remote.FailureThreshold == 0 {
		cfg.Remote.FailureThreshold = DefaultRemoteFailureThreshold
	}
	if cfg.Remote.Cooldown == 0 {
		cfg.Remote.Cooldown = DefaultRemoteCooldown
	}
}
