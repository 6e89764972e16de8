package engine

import (
	"fmt"

	"vantron/internal/collector"
	"vantron/internal/collector/services"
)

const (
	StatusHealthy  = "OK"
	StatusWarning  = "WARN"
	StatusCritical = "CRIT"
)

// Thresholds defines warning and critical levels for a reading
type Thresholds struct {
	Warning  float64 `yaml:"warning"`
	Critical float64 `yaml:"critical"`
}

type Config struct {
	Power       Thresholds `yaml:"power"`       // W
	Temperature Thresholds `yaml:"temperature"` // °C

	// A stopped fan is flagged once the hottest zone is above this.
	FanStallTemp float64 `yaml:"fan_stall_temp"`
}

// DefaultConfig matches the Pi 5 firmware: the fan spins up at 60 °C and
// the SoC starts throttling at 80 °C.
func DefaultConfig() Config {
	return Config{
		Power:        Thresholds{Warning: 15.0, Critical: 22.0},
		Temperature:  Thresholds{Warning: 70.0, Critical: 80.0},
		FanStallTemp: 60.0,
	}
}

type CheckResult struct {
	Key    string
	Name   string
	Value  float64
	Status string
}

func getStatus(value float64, t Thresholds) string {
	if value > t.Critical {
		return StatusCritical
	}
	if value > t.Warning {
		return StatusWarning
	}
	return StatusHealthy
}

// Evaluate grades one read cycle. Failed callbacks produce no results.
func Evaluate(r collector.Readings, temps []services.TempStat, cfg Config) []CheckResult {
	var result []CheckResult

	// Temperatures
	for _, t := range temps {
		result = append(result, CheckResult{
			Key:    t.SensorKey,
			Name:   fmt.Sprintf("Temperature %s", t.SensorKey),
			Value:  t.Temperature,
			Status: getStatus(t.Temperature, cfg.Temperature),
		})
	}

	// CPU
	if r.CPUErr == nil || r.FanSent {
		fanStatus := StatusHealthy
		if hot, ok := services.Hottest(temps); ok && r.FanSpeedRPM == 0 && hot.Temperature > cfg.FanStallTemp {
			fanStatus = StatusCritical
		}
		result = append(result, CheckResult{Key: "fanspeed", Name: "Fan Speed", Value: float64(r.FanSpeedRPM), Status: fanStatus})
	}
	if r.CPUErr == nil {
		result = append(result, CheckResult{Key: "cpufreq", Name: "Clock Frequency", Value: r.FrequencyGHz(), Status: StatusHealthy})
	}

	// Power
	if r.PowerErr == nil {
		result = append(result, CheckResult{
			Key:    "power_use",
			Name:   "Power Use",
			Value:  r.Watts,
			Status: getStatus(r.Watts, cfg.Power),
		})
	}

	return result
}

// Validate reports thresholds whose warning level is above the critical one.
func (c Config) Validate() error {
	for name, t := range map[string]Thresholds{"power": c.Power, "temperature": c.Temperature} {
		if t.Warning > t.Critical {
			return fmt.Errorf("%s warning threshold %.1f is above critical %.1f", name, t.Warning, t.Critical)
		}
	}
	return nil
}
