package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
)

const (
	DefaultCPUFrequencyPath = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq"
	DefaultFanSpeedPath     = "/sys/devices/platform/cooling_fan/hwmon/hwmon3/fan1_input"

	fanSpeedGlob = "/sys/devices/platform/cooling_fan/hwmon/hwmon*/fan1_input"
)

type CPUResult struct {
	FanSpeedRPM  int64
	FrequencyKHz int64
}

// FrequencyGHz converts the sysfs kHz reading.
func (r CPUResult) FrequencyGHz() float64 {
	return float64(r.FrequencyKHz) / 1000000.0
}

type CPUSensor struct {
	frequencyPath string
	fanSpeedPath  string
	fanSpeedGlob  string
}

func NewCPUSensor(frequencyPath, fanSpeedPath string) *CPUSensor {
	if frequencyPath == "" {
		frequencyPath = DefaultCPUFrequencyPath
	}
	if fanSpeedPath == "" {
		fanSpeedPath = DefaultFanSpeedPath
	}
	return &CPUSensor{
		frequencyPath: frequencyPath,
		fanSpeedPath:  fanSpeedPath,
		fanSpeedGlob:  fanSpeedGlob,
	}
}

func (s *CPUSensor) Name() string {
	return "CPU"
}

// Connect resolves the fan speed file. The hwmon index of the cooling fan
// is assigned at boot, so a missing configured path is looked up again.
func (s *CPUSensor) Connect(ctx context.Context) error {
	if _, err := os.Stat(s.fanSpeedPath); err == nil {
		return nil
	}
	matches, err := filepath.Glob(s.fanSpeedGlob)
	if err != nil {
		return fmt.Errorf("failed to glob fan speed path: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("fan speed input not found at %s", s.fanSpeedPath)
	}
	s.fanSpeedPath = matches[0]
	return nil
}

func (s *CPUSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *CPUSensor) Collect(ctx context.Context) (any, error) {
	fan, err := s.ReadFanSpeed(ctx)
	if err != nil {
		return nil, err
	}
	freq, err := s.ReadClockFrequency(ctx)
	if err != nil {
		return nil, err
	}
	return CPUResult{FanSpeedRPM: fan, FrequencyKHz: freq}, nil
}

// ReadFanSpeed returns the cooling fan speed reported by hwmon.
func (s *CPUSensor) ReadFanSpeed(ctx context.Context) (int64, error) {
	v, err := readFirstLineInt(s.fanSpeedPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read fan speed: %w", err)
	}
	return v, nil
}

// ReadClockFrequency returns the current clock of cpu0 in kHz. Hosts
// without cpufreq fall back to the nominal frequency from gopsutil.
func (s *CPUSensor) ReadClockFrequency(ctx context.Context) (int64, error) {
	v, err := readFirstLineInt(s.frequencyPath)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("failed to read cpu frequency: %w", err)
	}

	info, infoErr := cpu.InfoWithContext(ctx)
	if infoErr != nil || len(info) == 0 || info[0].Mhz <= 0 {
		return 0, fmt.Errorf("failed to read cpu frequency: %w", err)
	}
	return int64(info[0].Mhz * 1000), nil
}

func readFirstLineInt(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%s: empty", path)
		}
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	v, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
