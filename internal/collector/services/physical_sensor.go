package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v4/sensors"
)

// TempStat is one thermal zone reading in °C.
type TempStat struct {
	SensorKey   string
	Temperature float64
}

// ThermalReader is the typed side of PhysicalSensor.
type ThermalReader interface {
	Read(ctx context.Context) (PhysicalResult, error)
}

type PhysicalResult struct {
	Temperatures []TempStat
}

// Hottest returns the zone with the highest reading.
func Hottest(temps []TempStat) (TempStat, bool) {
	if len(temps) == 0 {
		return TempStat{}, false
	}
	hot := temps[0]
	for _, t := range temps[1:] {
		if t.Temperature > hot.Temperature {
			hot = t
		}
	}
	return hot, true
}

// PhysicalSensor reads thermal zones for the watch views. Dispatching
// temperatures is left to collectd's thermal plugin.
type PhysicalSensor struct{}

func NewPhysicalSensor() *PhysicalSensor {
	return &PhysicalSensor{}
}

func (s *PhysicalSensor) Name() string {
	return "Thermal"
}

func (s *PhysicalSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *PhysicalSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *PhysicalSensor) Collect(ctx context.Context) (any, error) {
	return s.Read(ctx)
}

// Read returns the zones sorted by key. gopsutil reports partial results
// together with an error when some hwmon entries are unreadable; those are
// kept. Zones reporting zero or less are unpopulated and dropped.
func (s *PhysicalSensor) Read(ctx context.Context) (PhysicalResult, error) {
	data, err := sensors.TemperaturesWithContext(ctx)
	if err != nil && len(data) == 0 {
		return PhysicalResult{}, fmt.Errorf("failed to get temperatures: %w", err)
	}

	temps := make([]TempStat, 0, len(data))
	for _, t := range data {
		if t.Temperature <= 0 {
			continue
		}
		temps = append(temps, TempStat{
			SensorKey:   strings.TrimSuffix(t.SensorKey, "_input"),
			Temperature: t.Temperature,
		})
	}
	sort.Slice(temps, func(i, j int) bool { return temps[i].SensorKey < temps[j].SensorKey })

	return PhysicalResult{Temperatures: temps}, nil
}
