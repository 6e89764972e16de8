package output

import (
	"fmt"
	"strings"

	"vantron/internal/collector"
	"vantron/internal/collector/services"
	"vantron/internal/engine"
)

// Section constants to avoid hardcoded strings
const (
	SectionCPU     = "cpu"
	SectionPower   = "power"
	SectionThermal = "thermal"
)

const (
	StatusOK       = engine.StatusHealthy
	StatusWarning  = engine.StatusWarning
	StatusCritical = engine.StatusCritical
	StatusError    = "ERROR"
)

// UI/view-model types (no printing here)
type Item struct {
	Key    string
	Label  string
	Value  float64
	Unit   string
	Status string
	Note   string
}

type Section struct {
	ID    string // cpu/power/thermal
	Title string
	Items []Item
}

type DashboardView struct {
	Sections []Section
	Watts    float64
}

// BuildDashboard converts one read cycle plus optional temperatures into
// UI-ready sections graded with the default thresholds.
func BuildDashboard(r collector.Readings, temps []services.TempStat) DashboardView {
	return BuildDashboardWith(r, temps, engine.DefaultConfig())
}

func BuildDashboardWith(r collector.Readings, temps []services.TempStat, cfg engine.Config) DashboardView {
	status := make(map[string]string)
	for _, c := range engine.Evaluate(r, temps, cfg) {
		status[c.Key] = c.Status
	}

	cpu := Section{ID: SectionCPU, Title: "CPU"}
	if r.CPUErr != nil {
		if r.FanSent {
			cpu.Items = append(cpu.Items, Item{Key: "fanspeed", Label: "Fan Speed", Value: float64(r.FanSpeedRPM), Unit: "rpm", Status: status["fanspeed"]})
		}
		cpu.Items = append(cpu.Items, Item{Key: "cpu_error", Label: "Read", Status: StatusError, Note: r.CPUErr.Error()})
	} else {
		cpu.Items = append(cpu.Items,
			Item{Key: "fanspeed", Label: "Fan Speed", Value: float64(r.FanSpeedRPM), Unit: "rpm", Status: status["fanspeed"]},
			Item{Key: "cpufreq", Label: "Clock Frequency", Value: r.FrequencyGHz(), Unit: "GHz", Status: status["cpufreq"]},
		)
	}

	power := Section{ID: SectionPower, Title: "Power"}
	if r.PowerErr != nil {
		power.Items = append(power.Items, Item{Key: "power_error", Label: "Read", Status: StatusError, Note: r.PowerErr.Error()})
	} else {
		power.Items = append(power.Items, Item{Key: "power_use", Label: "Estimated Total", Value: r.Watts, Unit: "W", Status: status["power_use"]})
		for _, s := range r.Samples {
			p, err := s.Power()
			if err != nil {
				continue
			}
			power.Items = append(power.Items, Item{
				Key:   strings.ToLower(s.Name),
				Label: s.Name,
				Value: p,
				Unit:  "W",
				Note:  railNote(s),
			})
		}
	}

	thermal := Section{ID: SectionThermal, Title: "Thermal"}
	for _, t := range temps {
		thermal.Items = append(thermal.Items, Item{
			Key:    t.SensorKey,
			Label:  t.SensorKey,
			Value:  t.Temperature,
			Unit:   "°C",
			Status: status[t.SensorKey],
		})
	}

	return DashboardView{
		Sections: []Section{cpu, power, thermal},
		Watts:    r.Watts,
	}
}

func railNote(s services.Sample) string {
	return fmt.Sprintf("%.3f V × %.3f A", *s.Voltage, *s.Current)
}

func (v DashboardView) SectionByID(id string) *Section {
	for i := range v.Sections {
		if v.Sections[i].ID == id {
			return &v.Sections[i]
		}
	}
	return nil
}

func (s Section) ItemByKey(key string) *Item {
	for i := range s.Items {
		if s.Items[i].Key == key {
			return &s.Items[i]
		}
	}
	return nil
}
