package discovery

import (
	"fmt"
	"slices"
	"strings"

	"vantron/internal/collector/services"
)

// Device groups entities in Home Assistant.
type Device struct {
	Name         string      `json:"name"`
	Identifiers  []string    `json:"identifiers"`
	Model        string      `json:"model,omitempty"`
	Manufacturer string      `json:"manufacturer,omitempty"`
	Connections  [][2]string `json:"connections,omitempty"`
}

// NodeID is the discovery topic level shared by the device's entities.
func (d *Device) NodeID() string {
	return spinal(d.Name)
}

const DiskFreeRootFS = "root"

func PiDevice() *Device {
	return &Device{
		Name:         "Vantron",
		Identifiers:  []string{"7135376c756a5f2a"},
		Model:        "Raspberry Pi 5",
		Manufacturer: "Raspberry Pi Foundation",
		Connections:  [][2]string{{"eth0 mac", "2c:cf:67:6d:e7:58"}},
	}
}

func RouterDevice() *Device {
	return &Device{
		Name:         "Vnet",
		Identifiers:  []string{"yx87fec"},
		Model:        "Beryl AX (GL-MT3000)",
		Manufacturer: "GL.iNet",
		Connections:  [][2]string{{"eth0 mac", "94:83:c4:58:7f:ec"}},
	}
}

// LocalDevice describes the machine the command runs on.
func LocalDevice(h services.HostResult) *Device {
	id := h.HostID
	if id == "" {
		id = strings.ReplaceAll(h.MAC, ":", "")
	}
	d := &Device{
		Name:        h.Hostname,
		Identifiers: []string{id},
		Model:       strings.TrimSpace(fmt.Sprintf("%s %s (%s)", h.Platform, h.PlatformVersion, h.KernelArch)),
	}
	if h.MAC != "" {
		d.Connections = [][2]string{{h.Interface + " mac", h.MAC}}
	}
	return d
}

// PiSensors lists the Raspberry Pi's entities, including the values
// dispatched by this plugin.
func PiSensors() []Entry {
	d := PiDevice()
	return slices.Concat(
		UptimeTopics(d),
		CPUTopics(d),
		CPUPluginTopics(d),
		LoadTopics(d),
		MemoryTopics(d),
		PowerTopics(d),
		DiskFreeTopics(d, DiskFreeRootFS),
	)
}

func RouterSensors() []Entry {
	d := RouterDevice()
	return slices.Concat(
		UptimeTopics(d),
		CPUTopics(d),
		LoadTopics(d),
		MemoryTopics(d),
		DiskFreeTopics(d, DiskFreeRootFS),
		NetworkTopics(d, DefaultPingHost),
	)
}

func LocalSensors(h services.HostResult) []Entry {
	d := LocalDevice(h)
	return slices.Concat(
		UptimeTopics(d),
		CPUTopics(d),
		CPUPluginTopics(d),
		LoadTopics(d),
		MemoryTopics(d),
		PowerTopics(d),
		DiskFreeTopics(d, DiskFreeRootFS),
	)
}

// AllSensors is the full announcement: the Pi, then the router.
func AllSensors() []Entry {
	return slices.Concat(PiSensors(), RouterSensors())
}
