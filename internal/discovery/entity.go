package discovery

import (
	"errors"
	"strings"
	"unicode"
)

// Component is the Home Assistant MQTT platform an entity is announced as.
type Component string

const (
	ComponentSensor       Component = "sensor"
	ComponentBinarySensor Component = "binary_sensor"
)

// ErrUnknownComponent is returned for entities that are neither a sensor nor
// a binary sensor.
var ErrUnknownComponent = errors.New("entity must represent sensor or binary_sensor")

// expireAfterSeconds replaces any expiry configured on an entity.
const expireAfterSeconds = 120

// Entity describes one Home Assistant entity. Exactly one of Sensor and
// Binary carries the platform specific fields, selected by Component.
type Entity struct {
	Component Component

	Name        string
	ObjectID    string
	UniqueID    string
	Icon        string
	DeviceClass string
	ExpireAfter int // seconds, zero means never
	Device      *Device

	Sensor *SensorFields
	Binary *BinarySensorFields
}

type SensorFields struct {
	UnitOfMeasurement         string
	StateClass                string
	SuggestedDisplayPrecision *int
	ValueTemplate             string
}

type BinarySensorFields struct {
	PayloadOn     string
	PayloadOff    string
	ValueTemplate string
}

// Entry pairs an entity with the collectd topic its state is read from,
// relative to the device's state topic root.
type Entry struct {
	Entity Entity
	Path   string
}

func precision(n int) *int {
	return &n
}

func newSensor(d *Device, name string, f SensorFields) Entity {
	return Entity{Component: ComponentSensor, Name: name, Device: d, Sensor: &f}
}

// populate derives the identifiers Home Assistant uses to track the entity.
func populate(e Entity) Entity {
	e.ObjectID = spinal(e.Name)
	if e.Device != nil {
		e.UniqueID = spinal(e.Device.Name + " " + e.Name)
	}
	if e.ExpireAfter != 0 {
		e.ExpireAfter = expireAfterSeconds
	}
	return e
}

// spinal lowercases s and turns every separator (space, dot, dash or
// underscore) into its own dash. Runs are kept and digits stay attached
// to their word, so "Load Avg. 1min" becomes "load-avg--1min".
func spinal(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '-' || r == '_' || unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, strings.ToLower(s))
}
