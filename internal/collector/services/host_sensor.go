package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/net"
)

type HostResult struct {
	Hostname        string
	Platform        string
	PlatformVersion string
	KernelArch      string
	HostID          string
	Uptime          uint64

	// Interface and hardware address of the first non-loopback NIC.
	Interface string
	MAC       string
}

type HostSensor struct{}

func NewHostSensor() *HostSensor {
	return &HostSensor{}
}

func (s *HostSensor) Name() string {
	return "Host"
}

func (s *HostSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *HostSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *HostSensor) Collect(ctx context.Context) (any, error) {
	return s.Read(ctx)
}

func (s *HostSensor) Read(ctx context.Context) (HostResult, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostResult{}, fmt.Errorf("failed to get host info: %w", err)
	}

	res := HostResult{
		Hostname:        info.Hostname,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelArch:      info.KernelArch,
		HostID:          info.HostID,
		Uptime:          info.Uptime,
	}

	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return res, nil
	}
	for _, iface := range ifaces {
		if iface.HardwareAddr == "" || slices.Contains(iface.Flags, "loopback") {
			continue
		}
		res.Interface = iface.Name
		res.MAC = iface.HardwareAddr
		break
	}

	return res, nil
}
