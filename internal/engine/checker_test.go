package engine

import (
	"errors"
	"testing"

	"vantron/internal/collector"
	"vantron/internal/collector/services"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		readings collector.Readings
		temps    []services.TempStat
		expected map[string]string // Check key -> Expected Status
	}{
		{
			name:     "All Healthy",
			readings: collector.Readings{FanSpeedRPM: 3000, FrequencyKHz: 2400000, Watts: 6.5},
			temps:    []services.TempStat{{SensorKey: "cpu_thermal", Temperature: 52.0}},
			expected: map[string]string{
				"fanspeed":    StatusHealthy,
				"cpufreq":     StatusHealthy,
				"power_use":   StatusHealthy,
				"cpu_thermal": StatusHealthy,
			},
		},
		{
			name:     "Power Warning",
			readings: collector.Readings{FanSpeedRPM: 3000, Watts: 16.0},
			expected: map[string]string{
				"power_use": StatusWarning,
			},
		},
		{
			name:     "Power Critical",
			readings: collector.Readings{FanSpeedRPM: 3000, Watts: 23.0},
			expected: map[string]string{
				"power_use": StatusCritical,
			},
		},
		{
			name:     "Temperature Critical",
			readings: collector.Readings{FanSpeedRPM: 8000, Watts: 9.0},
			temps:    []services.TempStat{{SensorKey: "cpu_thermal", Temperature: 84.5}},
			expected: map[string]string{
				"cpu_thermal": StatusCritical,
				"fanspeed":    StatusHealthy,
			},
		},
		{
			name:     "Stopped fan while cool",
			readings: collector.Readings{FanSpeedRPM: 0, Watts: 4.0},
			temps:    []services.TempStat{{SensorKey: "cpu_thermal", Temperature: 45.0}},
			expected: map[string]string{
				"fanspeed": StatusHealthy,
			},
		},
		{
			name:     "Stopped fan while hot",
			readings: collector.Readings{FanSpeedRPM: 0, Watts: 4.0},
			temps:    []services.TempStat{{SensorKey: "cpu_thermal", Temperature: 65.0}},
			expected: map[string]string{
				"fanspeed":    StatusCritical,
				"cpu_thermal": StatusHealthy,
			},
		},
		{
			name:     "Stopped fan without temperatures",
			readings: collector.Readings{FanSpeedRPM: 0},
			expected: map[string]string{
				"fanspeed": StatusHealthy,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Evaluate(tt.readings, tt.temps, DefaultConfig())

			got := make(map[string]string, len(results))
			for _, res := range results {
				got[res.Key] = res.Status
			}
			for key, want := range tt.expected {
				if got[key] != want {
					t.Errorf("%s: for %s expected %s, got %q", tt.name, key, want, got[key])
				}
			}
		})
	}
}

func TestEvaluate_SkipsFailedCallbacks(t *testing.T) {
	r := collector.Readings{CPUErr: errors.New("no fan"), PowerErr: errors.New("no pmic")}
	results := Evaluate(r, nil, DefaultConfig())
	if len(results) != 0 {
		t.Errorf("Expected no results for failed callbacks, got %+v", results)
	}
}

func TestEvaluate_FanKeptWhenFrequencyFails(t *testing.T) {
	r := collector.Readings{FanSpeedRPM: 2400, FanSent: true, CPUErr: errors.New("no cpufreq"), PowerErr: errors.New("no pmic")}
	results := Evaluate(r, nil, DefaultConfig())
	if len(results) != 1 || results[0].Key != "fanspeed" {
		t.Fatalf("Expected only the fanspeed check, got %+v", results)
	}
	if results[0].Value != 2400 {
		t.Errorf("Expected fan speed 2400, got %v", results[0].Value)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.Temperature = Thresholds{Warning: 90, Critical: 80}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for inverted temperature thresholds")
	}
}
