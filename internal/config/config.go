package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable consulted when no -config flag
// is given.
const EnvPath = "LOFBOT_CONFIG"

// DefaultPath is used when neither the flag nor EnvPath is set.
const DefaultPath = "config/lofbot.toml"

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Account  AccountConfig  `toml:"account"`
	Slaves   []SlaveConfig  `toml:"slaves"`
	Network  NetworkConfig  `toml:"network"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Scripts  ScriptsConfig  `toml:"scripts"`
	Data     DataConfig     `toml:"data"`
}

type ServerConfig struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	SameIP bool   `toml:"same_ip"` // ignore the addresses the login/char servers advertise
}

type AccountConfig struct {
	Name      string `toml:"name"`
	Password  string `toml:"password"`
	CharSlot  int    `toml:"char_slot"`
	Speaker   string `toml:"speaker"`   // prefix for public chat; defaults to Name
	Direction string `toml:"direction"` // faced after entering the map
	Sit       bool   `toml:"sit"`
}

// SlaveConfig is an extra account that logs in alongside the master and
// relays what it hears.
type SlaveConfig struct {
	Name      string `toml:"name"`
	Password  string `toml:"password"`
	CharSlot  int    `toml:"char_slot"`
	Direction string `toml:"direction"`
}

type NetworkConfig struct {
	DialTimeout      time.Duration `toml:"dial_timeout"`
	HandshakeTimeout time.Duration `toml:"handshake_timeout"`
	ReadTimeout      time.Duration `toml:"read_timeout"`
	WriteTimeout     time.Duration `toml:"write_timeout"`
	ReadBuffer       int           `toml:"read_buffer"`
	Workers          int           `toml:"workers"`
	QueueSize        int           `toml:"queue_size"`
	PeriodicInterval time.Duration `toml:"periodic_interval"`
	ReconnectDelay   time.Duration `toml:"reconnect_delay"` // 0 = no reconnect
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables persistence
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // "json" or "console"
	File       string `toml:"file"`   // optional rotating log file
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

type ScriptsConfig struct {
	Dir    string   `toml:"dir"`
	Admins []string `toml:"admins"`
}

type DataConfig struct {
	Emotes string `toml:"emotes"` // optional YAML emote list
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Account.Speaker == "" {
		cfg.Account.Speaker = cfg.Account.Name
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path picks the config file: the flag value, then EnvPath, then
// DefaultPath.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Host == "" {
		errs = append(errs, errors.New("server.host is empty"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Account.Name == "" {
		errs = append(errs, errors.New("account.name is empty"))
	}
	if c.Account.CharSlot < 0 || c.Account.CharSlot > 255 {
		errs = append(errs, fmt.Errorf("account.char_slot %d out of range", c.Account.CharSlot))
	}
	for i, s := range c.Slaves {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("slaves[%d].name is empty", i))
		}
		if s.CharSlot < 0 || s.CharSlot > 255 {
			errs = append(errs, fmt.Errorf("slaves[%d].char_slot %d out of range", i, s.CharSlot))
		}
	}
	if c.Network.Workers <= 0 {
		errs = append(errs, fmt.Errorf("network.workers must be positive, got %d", c.Network.Workers))
	}
	if c.Network.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("network.queue_size must not be negative, got %d", c.Network.QueueSize))
	}
	if c.Network.PeriodicInterval <= 0 {
		errs = append(errs, fmt.Errorf("network.periodic_interval must be positive, got %s", c.Network.PeriodicInterval))
	}
	if c.Network.HandshakeTimeout < 0 {
		errs = append(errs, fmt.Errorf("network.handshake_timeout must not be negative, got %s", c.Network.HandshakeTimeout))
	}
	if c.Network.ReconnectDelay < 0 {
		errs = append(errs, fmt.Errorf("network.reconnect_delay must not be negative, got %s", c.Network.ReconnectDelay))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:   "localhost",
			Port:   6901,
			SameIP: true,
		},
		Account: AccountConfig{
			Direction: "north",
			Sit:       true,
		},
		Network: NetworkConfig{
			DialTimeout:      10 * time.Second,
			HandshakeTimeout: 30 * time.Second,
			ReadTimeout:      0,
			WriteTimeout:     10 * time.Second,
			ReadBuffer:       2048,
			Workers:          4,
			QueueSize:        64,
			PeriodicInterval: 12 * time.Second,
			ReconnectDelay:   30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Scripts: ScriptsConfig{
			Dir: "scripts",
		},
	}
}
