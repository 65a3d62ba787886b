// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"firestige.xyz/craft/internal/core"
)

// Config is the top-level static configuration. Maps to the `craft:`
// root key in YAML.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Engine EngineConfig `mapstructure:"engine"`
}

// LogConfig controls the logrus setup.
type LogConfig struct {
	Level  string        `mapstructure:"level"`  // debug | info | warn | error
	Format string        `mapstructure:"format"` // text | json
	File   FileLogConfig `mapstructure:"file"`
}

// FileLogConfig enables rotated file output next to stdout.
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// EngineConfig carries defaults for the packet engine.
type EngineConfig struct {
	// StartProtocol is the descriptor tag inspect starts parsing with
	// when the caller gives none.
	StartProtocol string `mapstructure:"start_protocol"`
	// BufferSize is the scratch buffer allocated for fills.
	BufferSize int `mapstructure:"buffer_size"`
	// UDPPorts routes UDP payloads to application descriptors,
	// e.g. {"5123": ecpri}. Keys stay strings so the viper decode
	// needs no custom hook; they are validated here.
	UDPPorts map[string]string `mapstructure:"udp_ports"`
}

// configRoot wraps Config under the `craft:` YAML key.
type configRoot struct {
	Craft Config `mapstructure:"craft"`
}

// Load reads the config file at path, applies env overrides
// (CRAFT_LOG_LEVEL and friends) and defaults, and validates.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Key "craft.log.level" maps to env "CRAFT_LOG_LEVEL" via the
	// replacer, no explicit prefix needed.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Craft

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Engine: EngineConfig{StartProtocol: "ethernet", BufferSize: 2048},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("craft.log.level", "info")
	v.SetDefault("craft.log.format", "text")
	v.SetDefault("craft.log.file.max_size_mb", 100)
	v.SetDefault("craft.log.file.max_backups", 3)
	v.SetDefault("craft.log.file.max_age_days", 7)
	v.SetDefault("craft.engine.start_protocol", "ethernet")
	v.SetDefault("craft.engine.buffer_size", 2048)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log level %q: %w", c.Log.Level, core.ErrConfigInvalid)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q: %w", c.Log.Format, core.ErrConfigInvalid)
	}
	if c.Log.File.Enabled && c.Log.File.Path == "" {
		return fmt.Errorf("file log enabled without a path: %w", core.ErrConfigInvalid)
	}
	if c.Engine.BufferSize <= 0 {
		return fmt.Errorf("buffer size %d: %w", c.Engine.BufferSize, core.ErrConfigInvalid)
	}
	if c.Engine.StartProtocol == "" {
		return fmt.Errorf("empty start protocol: %w", core.ErrConfigInvalid)
	}
	if _, err := c.Engine.PortBindings(); err != nil {
		return err
	}
	return nil
}

// PortBindings parses the UDP port map into numeric ports.
func (e *EngineConfig) PortBindings() (map[uint16]string, error) {
	out := make(map[uint16]string, len(e.UDPPorts))
	for raw, tag := range e.UDPPorts {
		port, err := strconv.ParseUint(raw, 10, 16)
		if err != nil || tag == "" {
			return nil, fmt.Errorf("udp port binding %q: %q: %w", raw, tag, core.ErrConfigInvalid)
		}
		out[uint16(port)] = tag
	}
	return out, nil
}
