package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"vantron/internal/collector"
	"vantron/internal/collector/services"
	"vantron/internal/engine"

	"collectd.org/exec"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultClientID        = "vantron-collectd-support"
	DefaultStatePrefix     = "collectd"
	DefaultDiscoveryPrefix = "homeassistant"
)

type Config struct {
	LogLevel    string         `yaml:"log_level"`
	MQTT        MQTTConfig     `yaml:"mqtt"`
	Collectd    CollectdConfig `yaml:"collectd"`
	Thresholds  engine.Config  `yaml:"thresholds"`
	History     HistoryConfig  `yaml:"history"`
	LocalDevice bool           `yaml:"local_device"`
}

// HistoryConfig enables the DuckDB read cycle history. An empty path keeps
// it disabled for vantron-collectd and in memory for vantron-mcp.
type HistoryConfig struct {
	Path          string        `yaml:"path"`
	Threads       int           `yaml:"threads"`
	MemoryLimitMB int           `yaml:"memory_limit_mb"`
	Retention     time.Duration `yaml:"retention"` // 0 keeps every cycle
}

type MQTTConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ClientID        string        `yaml:"client_id"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	DiscoveryPrefix string        `yaml:"discovery_prefix"`
	StatePrefix     string        `yaml:"state_prefix"`
	PublishTimeout  time.Duration `yaml:"publish_timeout"`
}

// Broker returns the paho broker URL.
func (m MQTTConfig) Broker() string {
	return fmt.Sprintf("tcp://%s:%d", m.Host, m.Port)
}

type CollectdConfig struct {
	Hostname     string        `yaml:"hostname"`
	Interval     time.Duration `yaml:"interval"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	CPUFreqPath  string        `yaml:"cpu_freq_path"`
	FanSpeedPath string        `yaml:"fan_speed_path"`
	PMICCommand  string        `yaml:"pmic_command"`
	PMICArgs     []string      `yaml:"pmic_args"`
	TextfilePath string        `yaml:"textfile_path"`
	DisableCPU   bool          `yaml:"disable_cpu"`
	DisablePower bool          `yaml:"disable_power"`
}

// CollectorConfig maps the collectd section onto the plugin configuration.
func (c CollectdConfig) CollectorConfig() collector.CollectorConfig {
	cfg := collector.DefaultCollectorConfig().
		WithHostname(c.Hostname).
		WithInterval(c.Interval).
		WithReadTimeout(c.ReadTimeout).
		WithPMICCommand(c.PMICCommand, c.PMICArgs...).
		WithTextfile(c.TextfilePath).
		WithCPUMetrics(!c.DisableCPU).
		WithPowerMetrics(!c.DisablePower)
	cfg.CPUFrequencyPath = c.CPUFreqPath
	cfg.FanSpeedPath = c.FanSpeedPath
	return cfg
}

// Load reads the YAML file at path. An empty path yields the defaults, which
// is how collectd normally starts the plugin.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = logrus.InfoLevel.String()
	}

	if c.MQTT.Host == "" {
		c.MQTT.Host = "0.0.0.0"
	}
	if c.MQTT.Port == 0 {
		c.MQTT.Port = 1883
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = DefaultClientID
	}
	if c.MQTT.DiscoveryPrefix == "" {
		c.MQTT.DiscoveryPrefix = DefaultDiscoveryPrefix
	}
	if c.MQTT.StatePrefix == "" {
		c.MQTT.StatePrefix = DefaultStatePrefix
	}
	if c.MQTT.PublishTimeout == 0 {
		c.MQTT.PublishTimeout = 10 * time.Second
	}

	if c.Collectd.Hostname == "" {
		c.Collectd.Hostname = exec.Hostname()
	}
	if c.Collectd.Interval == 0 {
		c.Collectd.Interval = exec.Interval()
	}
	if c.Collectd.CPUFreqPath == "" {
		c.Collectd.CPUFreqPath = services.DefaultCPUFrequencyPath
	}
	if c.Collectd.FanSpeedPath == "" {
		c.Collectd.FanSpeedPath = services.DefaultFanSpeedPath
	}
	if c.Collectd.PMICCommand == "" {
		c.Collectd.PMICCommand = services.DefaultPMICCommand
		if len(c.Collectd.PMICArgs) == 0 {
			c.Collectd.PMICArgs = slices.Clone(services.DefaultPMICArgs)
		}
	}

	thresholds := engine.DefaultConfig()
	if c.Thresholds.Power == (engine.Thresholds{}) {
		c.Thresholds.Power = thresholds.Power
	}
	if c.Thresholds.Temperature == (engine.Thresholds{}) {
		c.Thresholds.Temperature = thresholds.Temperature
	}
	if c.Thresholds.FanStallTemp == 0 {
		c.Thresholds.FanStallTemp = thresholds.FanStallTemp
	}
}

func (c *Config) validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
		return fmt.Errorf("mqtt.port %d is out of range", c.MQTT.Port)
	}
	if c.MQTT.PublishTimeout < 0 {
		return fmt.Errorf("mqtt.publish_timeout must not be negative")
	}
	if err := c.Collectd.CollectorConfig().Validate(); err != nil {
		return fmt.Errorf("collectd config: %w", err)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if c.History.Threads < 0 || c.History.MemoryLimitMB < 0 {
		return fmt.Errorf("history threads and memory_limit_mb must not be negative")
	}
	if c.History.Retention < 0 {
		return fmt.Errorf("history.retention must not be negative")
	}
	return nil
}
