package services

import "context"

// Sensor is one hardware source of the plugin. Connect locates the source
// (sysfs file, PMIC command) once; Collect performs a single read and
// returns the sensor's typed result.
type Sensor interface {
	Name() string
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Collect(ctx context.Context) (any, error)
}

var (
	_ Sensor = (*CPUSensor)(nil)
	_ Sensor = (*PowerSensor)(nil)
	_ Sensor = (*PhysicalSensor)(nil)
	_ Sensor = (*HostSensor)(nil)

	_ ThermalReader = (*PhysicalSensor)(nil)
)
