package collector

import (
	"slices"
	"time"

	"vantron/internal/collector/services"
)

// CollectorConfig contains configurable parameters for the collectd plugin.
// Use DefaultCollectorConfig() to get sensible defaults, then override as needed.
type CollectorConfig struct {
	// Identity of dispatched values
	Hostname string        // Host field of every value list (default: os hostname)
	Interval time.Duration // Read interval advertised to collectd (default: 10s)

	// Per-cycle limit for all read callbacks together
	ReadTimeout time.Duration // (default: 0, none; the PMIC command bounds itself)

	// Hardware sources
	CPUFrequencyPath string   // cpufreq scaling_cur_freq of cpu0
	FanSpeedPath     string   // hwmon fan1_input of the cooling fan
	PMICCommand      string   // command printing PMIC ADC readings (default: vcgencmd)
	PMICArgs         []string // arguments of PMICCommand (default: pmic_read_adc)

	// Optional node_exporter textfile sink; empty disables it.
	TextfilePath string

	// Feature flags
	EnableCPUMetrics   bool // Whether to dispatch fan speed and clock frequency (default: true)
	EnablePowerMetrics bool // Whether to dispatch estimated power use (default: true)
}

// DefaultCollectorConfig returns a CollectorConfig with sensible defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		Interval: 10 * time.Second,

		CPUFrequencyPath: services.DefaultCPUFrequencyPath,
		FanSpeedPath:     services.DefaultFanSpeedPath,
		PMICCommand:      services.DefaultPMICCommand,
		PMICArgs:         slices.Clone(services.DefaultPMICArgs),

		EnableCPUMetrics:   true,
		EnablePowerMetrics: true,
	}
}

// WithHostname returns a copy of the config with modified hostname.
func (c CollectorConfig) WithHostname(hostname string) CollectorConfig {
	c.Hostname = hostname
	return c
}

// WithInterval returns a copy of the config with modified read interval.
func (c CollectorConfig) WithInterval(d time.Duration) CollectorConfig {
	c.Interval = d
	return c
}

// WithReadTimeout returns a copy of the config with modified read timeout.
func (c CollectorConfig) WithReadTimeout(d time.Duration) CollectorConfig {
	c.ReadTimeout = d
	return c
}

// WithPMICCommand returns a copy of the config reading the PMIC through another command.
func (c CollectorConfig) WithPMICCommand(command string, args ...string) CollectorConfig {
	c.PMICCommand = command
	c.PMICArgs = args
	return c
}

// WithTextfile returns a copy of the config with the textfile sink pointed at path.
func (c CollectorConfig) WithTextfile(path string) CollectorConfig {
	c.TextfilePath = path
	return c
}

// WithCPUMetrics returns a copy of the config with CPU metrics enabled/disabled.
func (c CollectorConfig) WithCPUMetrics(enabled bool) CollectorConfig {
	c.EnableCPUMetrics = enabled
	return c
}

// WithPowerMetrics returns a copy of the config with power metrics enabled/disabled.
func (c CollectorConfig) WithPowerMetrics(enabled bool) CollectorConfig {
	c.EnablePowerMetrics = enabled
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c CollectorConfig) Validate() error {
	if c.Hostname == "" {
		return &ConfigError{Field: "Hostname", Message: "must not be empty"}
	}
	if c.Interval <= 0 {
		return &ConfigError{Field: "Interval", Message: "must be positive"}
	}
	if c.ReadTimeout < 0 {
		return &ConfigError{Field: "ReadTimeout", Message: "must not be negative"}
	}
	if c.EnableCPUMetrics && (c.CPUFrequencyPath == "" || c.FanSpeedPath == "") {
		return &ConfigError{Field: "CPUFrequencyPath", Message: "and FanSpeedPath must be set when CPU metrics are enabled"}
	}
	if c.EnablePowerMetrics && c.PMICCommand == "" {
		return &ConfigError{Field: "PMICCommand", Message: "must be set when power metrics are enabled"}
	}
	if !c.EnableCPUMetrics && !c.EnablePowerMetrics {
		return &ConfigError{Field: "EnableCPUMetrics", Message: "or EnablePowerMetrics must be true"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
