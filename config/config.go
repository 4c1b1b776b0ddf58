// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings shared by the bridge, the web frontend and
// the CLI tools.
type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Host     HostConfig     `yaml:"host"`
	Server   ServerConfig   `yaml:"server"`
}

// ExchangeConfig selects and tunes the request/response transport.
type ExchangeConfig struct {
	// Driver is "file" or "redis".
	Driver string `yaml:"driver"`

	// Dir holds the request and response documents for the file driver.
	Dir string `yaml:"dir"`

	// PollInterval is how often a requester checks for its response.
	// Default: 500ms
	PollInterval time.Duration `yaml:"poll_interval"`

	// Timeout bounds a generation request.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// StatusTimeout bounds a status check.
	// Default: 3s
	StatusTimeout time.Duration `yaml:"status_timeout"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis driver.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// BridgeConfig configures the request loop.
type BridgeConfig struct {
	// Interval is the polling period of the watcher.
	// Default: 500ms
	Interval time.Duration `yaml:"interval"`

	// Database is the Badger directory holding the scene and history.
	Database string `yaml:"database"`

	MaleTarget   string `yaml:"male_target"`
	FemaleTarget string `yaml:"female_target"`

	// Lexicon optionally names a YAML file merged over the built-in tables.
	Lexicon string `yaml:"lexicon"`
}

// HostConfig describes how the frontend launches the host.
type HostConfig struct {
	// Executable defaults to the running binary.
	Executable string `yaml:"executable"`

	// Model defaults to the bridge database.
	Model string `yaml:"model"`

	// Args may reference {model}. Empty selects "bridge --db {model}".
	Args []string `yaml:"args"`

	// StartupGrace is how long a fresh host must survive.
	// Default: 2s
	StartupGrace time.Duration `yaml:"startup_grace"`
}

// ServerConfig configures the web frontend.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDriver sets the exchange driver.
func WithDriver(driver string) ConfigOption {
	return func(c *Config) {
		c.Exchange.Driver = driver
	}
}

// WithExchangeDir sets the file exchange directory.
func WithExchangeDir(dir string) ConfigOption {
	return func(c *Config) {
		c.Exchange.Dir = dir
	}
}

// WithRedisAddr sets the redis address.
func WithRedisAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.Exchange.Redis.Addr = addr
	}
}

// WithDatabase sets the bridge database directory.
func WithDatabase(path string) ConfigOption {
	return func(c *Config) {
		c.Bridge.Database = path
	}
}

// WithLexicon sets the lexicon override file.
func WithLexicon(path string) ConfigOption {
	return func(c *Config) {
		c.Bridge.Lexicon = path
	}
}

// WithHostExecutable sets the host executable.
func WithHostExecutable(path string) ConfigOption {
	return func(c *Config) {
		c.Host.Executable = path
	}
}

// WithModel sets the model the host is launched with.
func WithModel(path string) ConfigOption {
	return func(c *Config) {
		c.Host.Model = path
	}
}

// WithServerAddr sets the web frontend listen address.
func WithServerAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.Server.Addr = addr
	}
}

// DefaultConfig returns a Config for a single machine running the file
// exchange in the working directory.
func DefaultConfig() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			Driver:        DriverFile,
			Dir:           "exchange",
			PollInterval:  500 * time.Millisecond,
			Timeout:       30 * time.Second,
			StatusTimeout: 3 * time.Second,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "morphit",
				TTL:    5 * time.Minute,
			},
		},
		Bridge: BridgeConfig{
			Interval:     500 * time.Millisecond,
			Database:     "morphit.db",
			MaleTarget:   "mb_male",
			FemaleTarget: "mb_female",
		},
		Host: HostConfig{
			StartupGrace: 2 * time.Second,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:5000",
		},
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithDriver("redis"),
//	    WithRedisAddr("redis:6379"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills derived values and puts fields in canonical form.
func (c *Config) Normalize() {
	defaults := DefaultConfig()

	c.Exchange.Driver = strings.ToLower(strings.TrimSpace(c.Exchange.Driver))
	if c.Exchange.Driver == "" {
		c.Exchange.Driver = DriverFile
	}
	if c.Exchange.Dir != "" {
		c.Exchange.Dir = filepath.Clean(c.Exchange.Dir)
	}
	if c.Exchange.PollInterval == 0 {
		c.Exchange.PollInterval = defaults.Exchange.PollInterval
	}
	if c.Exchange.Timeout == 0 {
		c.Exchange.Timeout = defaults.Exchange.Timeout
	}
	if c.Exchange.StatusTimeout == 0 {
		c.Exchange.StatusTimeout = defaults.Exchange.StatusTimeout
	}
	if c.Exchange.Redis.Prefix == "" {
		c.Exchange.Redis.Prefix = defaults.Exchange.Redis.Prefix
	}
	if c.Exchange.Redis.TTL == 0 {
		c.Exchange.Redis.TTL = defaults.Exchange.Redis.TTL
	}

	if c.Bridge.Interval == 0 {
		c.Bridge.Interval = defaults.Bridge.Interval
	}

	if c.Host.Model == "" {
		c.Host.Model = c.Bridge.Database
	}
	if c.Host.Executable == "" {
		if exe, err := os.Executable(); err == nil {
			c.Host.Executable = exe
		}
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Exchange.Driver {
	case DriverFile:
		if c.Exchange.Dir == "" {
			return fmt.Errorf("%w: exchange.dir is required for the file driver", ErrInvalidConfig)
		}
	case DriverRedis:
		if c.Exchange.Redis.Addr == "" {
			return fmt.Errorf("%w: exchange.redis.addr is required for the redis driver", ErrInvalidConfig)
		}
		if c.Exchange.Redis.TTL < 0 {
			return fmt.Errorf("%w: exchange.redis.ttl must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown exchange driver %q", ErrInvalidConfig, c.Exchange.Driver)
	}

	if c.Exchange.PollInterval < 0 || c.Exchange.Timeout < 0 || c.Exchange.StatusTimeout < 0 {
		return fmt.Errorf("%w: exchange durations must be positive", ErrInvalidConfig)
	}
	if c.Bridge.Interval < 0 {
		return fmt.Errorf("%w: bridge.interval must be positive", ErrInvalidConfig)
	}
	if c.Bridge.Database == "" {
		return fmt.Errorf("%w: bridge.database is required", ErrInvalidConfig)
	}
	if c.Bridge.MaleTarget == "" || c.Bridge.FemaleTarget == "" {
		return fmt.Errorf("%w: bridge targets are required", ErrInvalidConfig)
	}
	if c.Host.StartupGrace < 0 {
		return fmt.Errorf("%w: host.startup_grace must not be negative", ErrInvalidConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	return nil
}
