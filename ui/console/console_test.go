package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"vantron/internal/collector"
	"vantron/internal/discovery"
	"vantron/internal/output"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		n        int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"Wireless Incoming Traffic Rate", 20, "Wireless Incoming..."},
		{"°C°C°C°C", 5, "°C..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q; want %q", tt.in, tt.n, got, tt.expected)
		}
	}
}

func TestPrint(t *testing.T) {
	view := output.BuildDashboard(collector.Readings{
		FanSpeedRPM:  3187,
		FrequencyKHz: 2400000,
		Watts:        6.5,
	}, nil)

	var buf bytes.Buffer
	Print(&buf, view)
	out := buf.String()

	for _, want := range []string{"VANTRON READINGS", "─ CPU", "Fan Speed", "3187.00 rpm", "2.40 GHz", "Estimated board power: 6.50 W"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Thermal") {
		t.Errorf("empty sections should be skipped:\n%s", out)
	}
}

func TestPrint_Errors(t *testing.T) {
	view := output.BuildDashboard(collector.Readings{
		CPUErr:   errors.New("failed to read fan speed"),
		PowerErr: errors.New("acquire vcgencmd: no output"),
	}, nil)

	var buf bytes.Buffer
	Print(&buf, view)

	if !strings.Contains(buf.String(), "failed to read fan speed X") {
		t.Errorf("expected error marker:\n%s", buf.String())
	}
}

func TestPrint_Thresholds(t *testing.T) {
	view := output.BuildDashboard(collector.Readings{FanSpeedRPM: 3000, Watts: 23.0}, nil)

	var buf bytes.Buffer
	Print(&buf, view)

	if !strings.Contains(buf.String(), "23.00 W !!") {
		t.Errorf("expected critical marker on power use:\n%s", buf.String())
	}
}

func TestPrintPlan(t *testing.T) {
	msgs, err := discovery.Plan("homeassistant", "collectd", discovery.AllSensors())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	var buf bytes.Buffer
	PrintPlan(&buf, msgs)
	out := buf.String()

	for _, want := range []string{
		"DISCOVERY PLAN (48 entities)",
		"─ Vantron (Raspberry Pi 5)",
		"─ Vnet (Beryl AX (GL-MT3000))",
		"homeassistant/binary_sensor/vnet/network-online/config",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintPlan output missing %q", want)
		}
	}
	if strings.Count(out, "─ Vantron") != 1 {
		t.Errorf("device header should be printed once per device")
	}
}
