package mcpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"vantron/internal/collector"
	"vantron/internal/collector/services"
	"vantron/internal/database/relational"
	"vantron/internal/discovery"
	"vantron/internal/engine"
)

// MockProvider implements collector.ReadingsProvider for testing
type MockProvider struct {
	Readings *collector.Readings
	Err      error
}

func (m *MockProvider) Read(ctx context.Context) (*collector.Readings, error) {
	return m.Readings, m.Err
}

// MockThermal implements services.ThermalReader for testing
type MockThermal struct {
	Temps []services.TempStat
}

func (m *MockThermal) Read(ctx context.Context) (services.PhysicalResult, error) {
	return services.PhysicalResult{Temperatures: m.Temps}, nil
}

// MockHistory implements History for testing
type MockHistory struct {
	Cycles    []relational.CycleSummary
	Err       error
	QueryHost string
	Limit     int
	Since     time.Time
}

func (m *MockHistory) QueryCycles(ctx context.Context, hostname string, limit int) ([]relational.CycleSummary, error) {
	m.QueryHost, m.Limit = hostname, limit
	return m.Cycles, m.Err
}

func (m *MockHistory) PowerSince(ctx context.Context, hostname string, since time.Time) (relational.PowerStats, error) {
	m.Since = since
	return relational.PowerStats{Hostname: hostname, Cycles: 3, AvgWatts: 6}, nil
}

func newServer(p collector.ReadingsProvider, h History) *Server {
	msgs, _ := discovery.Plan("homeassistant", "collectd", discovery.AllSensors())
	return NewServer(Config{Hostname: "vantron", Thresholds: engine.DefaultConfig()}, p, &MockThermal{
		Temps: []services.TempStat{{SensorKey: "cpu_thermal", Temperature: 55}},
	}, h, msgs, nil)
}

func TestHandleReadSensors(t *testing.T) {
	v, c := 5.0, 2.0
	s := newServer(&MockProvider{Readings: &collector.Readings{
		Host:         "vantron",
		FanSpeedRPM:  3100,
		FrequencyKHz: 2400000,
		Watts:        16.5,
		Samples:      []services.Sample{{Name: "EXT5V", Voltage: &v, Current: &c}},
	}}, nil)

	_, result, err := s.handleReadSensors(context.Background(), nil, ReadSensorsArgs{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.FanSpeedRPM == nil || *result.FanSpeedRPM != 3100 {
		t.Errorf("Expected fan speed 3100, got %v", result.FanSpeedRPM)
	}
	if result.Watts == nil || *result.Watts != 16.5 {
		t.Errorf("Expected 16.5 W, got %v", result.Watts)
	}
	if len(result.Rails) != 1 || result.Rails[0].Watts != 10 {
		t.Errorf("Expected one 10 W rail, got %+v", result.Rails)
	}
	if len(result.Temperatures) != 1 {
		t.Errorf("Expected temperatures from thermal sensor, got %+v", result.Temperatures)
	}

	statuses := map[string]string{}
	for _, c := range result.Checks {
		statuses[c.Key] = c.Status
	}
	if statuses["power_use"] != engine.StatusWarning {
		t.Errorf("Expected power warning, got %q", statuses["power_use"])
	}
	if statuses["cpu_thermal"] != engine.StatusHealthy {
		t.Errorf("Expected healthy temperature, got %q", statuses["cpu_thermal"])
	}
}

func TestHandleReadSensors_PartialFailure(t *testing.T) {
	s := newServer(&MockProvider{
		Readings: &collector.Readings{Host: "vantron", FanSpeedRPM: 3000, PowerErr: errors.New("no pmic")},
		Err:      errors.New("no pmic"),
	}, nil)

	_, result, err := s.handleReadSensors(context.Background(), nil, ReadSensorsArgs{})
	if err != nil {
		t.Fatalf("Expected partial readings without error, got: %v", err)
	}
	if result.Watts != nil {
		t.Errorf("Expected no watts after power failure, got %v", *result.Watts)
	}
	if result.FanSpeedRPM == nil {
		t.Error("Expected fan speed to survive power failure")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "no pmic" {
		t.Errorf("Expected power error, got %v", result.Errors)
	}
}

func TestHandleReadSensors_ProviderError(t *testing.T) {
	s := newServer(&MockProvider{Err: errors.New("sensor failure")}, nil)

	_, _, err := s.handleReadSensors(context.Background(), nil, ReadSensorsArgs{})
	if err == nil {
		t.Error("Expected error when provider returns no readings")
	}
}

func TestHandleGetHistory(t *testing.T) {
	h := &MockHistory{Cycles: []relational.CycleSummary{{CycleID: 1, Hostname: "vantron"}}}
	s := newServer(&MockProvider{}, h)

	before := time.Now()
	_, result, err := s.handleGetHistory(context.Background(), nil, HistoryArgs{Limit: 5})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if h.QueryHost != "vantron" {
		t.Errorf("Expected default hostname vantron, got %q", h.QueryHost)
	}
	if h.Limit != 5 {
		t.Errorf("Expected limit 5, got %d", h.Limit)
	}
	if d := before.Sub(h.Since); d < 59*time.Minute || d > 61*time.Minute {
		t.Errorf("Expected one hour window, got %s", d)
	}
	if len(result.Cycles) != 1 || result.Power.Cycles != 3 {
		t.Errorf("Unexpected result %+v", result)
	}
}

func TestHandleGetHistory_Error(t *testing.T) {
	s := newServer(&MockProvider{}, &MockHistory{Err: errors.New("db closed")})

	_, _, err := s.handleGetHistory(context.Background(), nil, HistoryArgs{Hostname: "vnet"})
	if err == nil {
		t.Error("Expected error when history query fails")
	}
}

func TestHandleDiscoveryPlan(t *testing.T) {
	s := newServer(&MockProvider{}, nil)

	tests := []struct {
		name   string
		device string
		want   int
	}{
		{"all devices", "", 48},
		{"pi only", "vantron", 22},
		{"router only", "Vnet", 26},
		{"unknown device", "toaster", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result, err := s.handleDiscoveryPlan(context.Background(), nil, DiscoveryPlanArgs{Device: tt.device})
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if len(result.Entities) != tt.want {
				t.Errorf("Expected %d entities, got %d", tt.want, len(result.Entities))
			}
		})
	}
}

func TestHandleDiscoveryPlan_Topics(t *testing.T) {
	s := newServer(&MockProvider{}, nil)

	_, result, _ := s.handleDiscoveryPlan(context.Background(), nil, DiscoveryPlanArgs{Device: "vantron"})
	for _, e := range result.Entities {
		if e.Name == "Power Use" {
			if e.StateTopic != "collectd/vantron/power_use/gauge" {
				t.Errorf("Unexpected state topic %s", e.StateTopic)
			}
			if e.Topic != "homeassistant/sensor/vantron/power-use/config" {
				t.Errorf("Unexpected config topic %s", e.Topic)
			}
			return
		}
	}
	t.Error("Power Use entity not found")
}
