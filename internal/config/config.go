// Package config loads service settings from YAML and TANK_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"water_tank/internal/engine"
	"water_tank/internal/models"

	"github.com/spf13/viper"
)

const envPrefix = "TANK"

// Config is the decoded service configuration.
type Config struct {
	Port       string           `mapstructure:"port"`
	LogLevel   string           `mapstructure:"log_level"`
	Node       string           `mapstructure:"node"`
	DB         DBConfig         `mapstructure:"db"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// SimulationConfig holds engine constants and the initial tank state.
type SimulationConfig struct {
	Tick         time.Duration `mapstructure:"tick"`
	InitialLevel float64       `mapstructure:"initial_level"`
	Timezone     string        `mapstructure:"timezone"`
	Autostart    bool          `mapstructure:"autostart"`

	DrainRate      float64 `mapstructure:"drain_rate"`
	FillRate       float64 `mapstructure:"fill_rate"`
	CutoffLevel    float64 `mapstructure:"cutoff_level"`
	NightStart     int     `mapstructure:"night_start"`
	NightEnd       int     `mapstructure:"night_end"`
	PeakDrainRate  float64 `mapstructure:"peak_drain_rate"`
	PeakStart      int     `mapstructure:"peak_start"`
	PeakEnd        int     `mapstructure:"peak_end"`
	LowLevel       float64 `mapstructure:"low_level"`
	CapacityLiters float64 `mapstructure:"capacity_liters"`

	AutoCutoff        bool    `mapstructure:"auto_cutoff"`
	NightLimit        bool    `mapstructure:"night_limit"`
	CriticalThreshold float64 `mapstructure:"critical_threshold"`
}

// MQTTConfig enables telemetry when Broker is set.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Topic    string `mapstructure:"topic"`
}

func setDefaults(v *viper.Viper) {
	def := engine.DefaultConfig()

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("node", "tank-1")
	v.SetDefault("db.path", "app.db")

	v.SetDefault("simulation.tick", time.Second)
	v.SetDefault("simulation.initial_level", engine.DefaultInitialLevel)
	v.SetDefault("simulation.timezone", "Local")
	v.SetDefault("simulation.autostart", true)
	v.SetDefault("simulation.drain_rate", def.DrainRate)
	v.SetDefault("simulation.fill_rate", def.FillRate)
	v.SetDefault("simulation.cutoff_level", def.CutoffLevel)
	v.SetDefault("simulation.night_start", def.NightWindow.Start)
	v.SetDefault("simulation.night_end", def.NightWindow.End)
	v.SetDefault("simulation.peak_drain_rate", def.PeakDrainRate)
	v.SetDefault("simulation.peak_start", def.PeakWindow.Start)
	v.SetDefault("simulation.peak_end", def.PeakWindow.End)
	v.SetDefault("simulation.low_level", def.LowLevel)
	v.SetDefault("simulation.capacity_liters", def.CapacityLiters)
	v.SetDefault("simulation.auto_cutoff", true)
	v.SetDefault("simulation.night_limit", true)
	v.SetDefault("simulation.critical_threshold", engine.DefaultCriticalThreshold)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.topic", "")
}

// Load reads path, or configs/config.yml when path is empty. A missing
// default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the decoded values; engine constants are checked by
// engine.Config.Validate.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("config: port is empty")
	}
	if c.Simulation.Tick <= 0 {
		return fmt.Errorf("config: simulation.tick %v must be > 0", c.Simulation.Tick)
	}
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if l := c.Simulation.InitialLevel; l < 0 || l > 100 {
		return fmt.Errorf("config: %w: initial level %v outside [0,100]", engine.ErrInvalidState, l)
	}
	if err := engine.ValidateThreshold(c.Simulation.CriticalThreshold); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// EngineConfig maps the simulation block onto engine constants.
func (c *Config) EngineConfig() engine.Config {
	s := c.Simulation
	return engine.Config{
		DrainRate:      s.DrainRate,
		FillRate:       s.FillRate,
		CutoffLevel:    s.CutoffLevel,
		NightWindow:    engine.Window{Start: s.NightStart, End: s.NightEnd},
		PeakDrainRate:  s.PeakDrainRate,
		PeakWindow:     engine.Window{Start: s.PeakStart, End: s.PeakEnd},
		LowLevel:       s.LowLevel,
		CapacityLiters: s.CapacityLiters,
	}
}

// InitialState is the tank at process start.
func (c *Config) InitialState() models.TankState {
	s := c.Simulation
	return models.TankState{
		Level:             s.InitialLevel,
		AutoCutoffEnabled: s.AutoCutoff,
		NightLimitEnabled: s.NightLimit,
		CriticalThreshold: s.CriticalThreshold,
	}
}

// Location resolves the time zone used for the hour of day.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Simulation.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: simulation.timezone %q: %w", tz, err)
	}
	return loc, nil
}
