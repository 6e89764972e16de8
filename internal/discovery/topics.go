package discovery

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

const DefaultPingHost = "1.1.1.1"

func UptimeTopics(d *Device) []Entry {
	return []Entry{
		{populate(newSensor(d, "Up Since", SensorFields{ValueTemplate: uptimeTemplate}).withClass("timestamp")), "uptime/uptime"},
	}
}

func CPUTopics(d *Device) []Entry {
	percent := func(name string) Entity {
		e := newSensor(d, name, SensorFields{
			UnitOfMeasurement:         "%",
			SuggestedDisplayPrecision: precision(1),
			ValueTemplate:             valueTemplate(1),
		})
		e.Icon = "mdi:chip"
		return populate(e)
	}

	return []Entry{
		{percent("CPU Percent User"), "cpu/percent-user"},
		{percent("CPU Percent Interrupt"), "cpu/percent-interrupt"},
		{percent("CPU Percent Soft IRQ"), "cpu/percent-softirq"},
		{percent("CPU Percent Steal"), "cpu/percent-steal"},
		{percent("CPU Percent Idle"), "cpu/percent-idle"},
		{percent("CPU Percent Wait"), "cpu/percent-wait"},
		{percent("CPU Percent System"), "cpu/percent-system"},
		{populate(newSensor(d, "CPU Temperature", SensorFields{
			UnitOfMeasurement:         "°C",
			SuggestedDisplayPrecision: precision(1),
			ValueTemplate:             valueTemplate(1),
		}).withClass("temperature")), "thermal-thermal_zone0/temperature"},
	}
}

// CPUPluginTopics announces the cpu values dispatched by this plugin.
func CPUPluginTopics(d *Device) []Entry {
	freq := newSensor(d, "CPU Frequency", SensorFields{
		UnitOfMeasurement:         "GHz",
		StateClass:                "measurement",
		SuggestedDisplayPrecision: precision(2),
		ValueTemplate:             valueTemplateWith(1, "| float", " / 1000000.0"),
	}).withClass("frequency")
	freq.Icon = "mdi:speedometer"

	fan := newSensor(d, "CPU Fan Speed", SensorFields{
		UnitOfMeasurement:         "rpm",
		StateClass:                "measurement",
		SuggestedDisplayPrecision: precision(0),
		ValueTemplate:             valueTemplateWith(1, "| int(0)", ""),
	})
	fan.Icon = "mdi:fan"

	return []Entry{
		{populate(freq), "cpu/cpufreq"},
		{populate(fan), "cpu/fanspeed"},
	}
}

func LoadTopics(d *Device) []Entry {
	load := func(name string, i int) Entity {
		return populate(newSensor(d, name, SensorFields{
			UnitOfMeasurement:         "%",
			SuggestedDisplayPrecision: precision(1),
			ValueTemplate:             valueTemplateWith(i, defaultCast, " * 100.0"),
		}).withClass("data_size"))
	}

	return []Entry{
		{load("Load Avg. 1min", 1), "load/load"},
		{load("Load Avg. 5min", 2), "load/load"},
		{load("Load Avg. 15min", 3), "load/load"},
	}
}

func MemoryTopics(d *Device) []Entry {
	memory := func(name string) Entity {
		e := newSensor(d, name, SensorFields{
			UnitOfMeasurement:         "%",
			SuggestedDisplayPrecision: precision(1),
			ValueTemplate:             valueTemplate(1),
		}).withClass("data_size")
		e.Icon = "mdi:memory"
		return populate(e)
	}

	return []Entry{
		{memory("Memory Percent Free"), "memory/percent-free"},
		{memory("Memory Percent Buffered"), "memory/percent-buffered"},
		{memory("Memory Percent Cached"), "memory/percent-cached"},
		{memory("Memory Percent Used"), "memory/percent-used"},
	}
}

// PowerTopics announces the estimated board power dispatched by this plugin.
func PowerTopics(d *Device) []Entry {
	e := newSensor(d, "Power Use", SensorFields{
		UnitOfMeasurement:         "W",
		StateClass:                "measurement",
		SuggestedDisplayPrecision: precision(2),
		ValueTemplate:             valueTemplate(1),
	}).withClass("power")
	e.Icon = "mdi:flash"

	return []Entry{{populate(e), "power_use/gauge"}}
}

func DiskFreeTopics(d *Device, fsName string) []Entry {
	bytes := func(name string) Entity {
		return populate(newSensor(d, name, SensorFields{
			UnitOfMeasurement:         "B",
			SuggestedDisplayPrecision: precision(0),
			ValueTemplate:             valueTemplate(1),
		}).withClass("data_size"))
	}

	label := strcase.ToCamel(fsName)
	return []Entry{
		{bytes(label + " Bytes Free"), fmt.Sprintf("df-%s/df_complex-free", fsName)},
		{bytes(label + " Bytes Reserved"), fmt.Sprintf("df-%s/df_complex-reserved", fsName)},
		{bytes(label + " Bytes Used"), fmt.Sprintf("df-%s/df_complex-used", fsName)},
	}
}

func NetworkTopics(d *Device, pingHost string) []Entry {
	online := populate(Entity{
		Component:   ComponentBinarySensor,
		Name:        "Network Online",
		DeviceClass: "connectivity",
		Device:      d,
		Binary:      &BinarySensorFields{PayloadOn: "ON", PayloadOff: "OFF"},
	})

	ping := populate(newSensor(d, pingHost+" Avg. Ping Time", SensorFields{
		UnitOfMeasurement:         "ms",
		SuggestedDisplayPrecision: precision(1),
		ValueTemplate:             valueTemplate(1),
	}).withClass("duration"))

	leases := newSensor(d, "DHCP Leases", SensorFields{
		StateClass:                "measurement",
		SuggestedDisplayPrecision: precision(0),
		ValueTemplate:             valueTemplate(1),
	})
	leases.Icon = "mdi:ip"

	traffic := func(name, icon string, i int) Entity {
		e := newSensor(d, name, SensorFields{
			UnitOfMeasurement:         "B/s",
			SuggestedDisplayPrecision: precision(1),
			ValueTemplate:             valueTemplate(i),
		}).withClass("data_rate")
		e.Icon = icon
		return populate(e)
	}

	return []Entry{
		{online, "pppoe-wwan"},
		{ping, "ping/ping-" + pingHost},
		{populate(leases), "dhcpleases/count"},
		{traffic("Wired Outgoing Traffic Rate", "mdi:router-network", 1), "interface-br-lan/if_octets"},
		{traffic("Wired Incoming Traffic Rate", "mdi:router-network", 2), "interface-br-lan/if_octets"},
		{traffic("Wireless Outgoing Traffic Rate", "mdi:router-network-wireless", 1), "interface-rax0/if_octets"},
		{traffic("Wireless Incoming Traffic Rate", "mdi:router-network-wireless", 2), "interface-rax0/if_octets"},
	}
}

func (e Entity) withClass(class string) Entity {
	e.DeviceClass = class
	return e
}
