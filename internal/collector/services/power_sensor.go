package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPMICCommand = "vcgencmd"

	// The PMIC only sees the monitored rails. Scaling the measured sum by
	// these constants approximates total board consumption
	// (https://github.com/jfikar/RPi5-power).
	powerScale  = 1.1451
	powerOffset = 0.5879
)

var DefaultPMICArgs = []string{"pmic_read_adc"}

// pmicLineRegex matches one line of `vcgencmd pmic_read_adc`, e.g.
// "   VDD_CORE_A current(7)=2.06718000A".
var pmicLineRegex = regexp.MustCompile(
	`^\s*(?P<sys>[0-9A-Z_]+)_(?P<suffix>[VA])\s(?P<unit>current|volt)\((?P<id>\d+)\)=(?P<value>\d+\.\d+)(?P<letter>[AV])\s*$`,
)

const (
	readingVolt    = "volt"
	readingCurrent = "current"
)

// ErrIncompleteSample is returned when power is requested from a sample
// that lacks its voltage or current reading.
var ErrIncompleteSample = errors.New("sample is missing a voltage or current reading")

// Sample is one PMIC rail's voltage and current measured in a single batch.
type Sample struct {
	Name    string
	Voltage *float64 // volts
	Current *float64 // amps
}

// Complete reports whether both readings are present.
func (s Sample) Complete() bool {
	return s.Voltage != nil && s.Current != nil
}

// Power returns voltage × current in watts.
func (s Sample) Power() (float64, error) {
	if !s.Complete() {
		return 0, fmt.Errorf("%w: name=%s", ErrIncompleteSample, s.Name)
	}
	return *s.Voltage * *s.Current, nil
}

// AcquisitionError reports a failure to obtain PMIC output.
type AcquisitionError struct {
	Command string
	Err     error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Command, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// ParseError reports a PMIC output line that does not have the expected shape.
type ParseError struct {
	LineNo int
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse line %d %q: %s", e.LineNo, e.Line, e.Reason)
}

// PowerResult is the outcome of one acquisition/parse/aggregate cycle.
type PowerResult struct {
	Samples []Sample
	Watts   float64
}

// PowerSensor estimates board power consumption from PMIC ADC readings.
type PowerSensor struct {
	command string
	args    []string
	log     logrus.FieldLogger
}

func NewPowerSensor(command string, args []string, log logrus.FieldLogger) *PowerSensor {
	if command == "" {
		command = DefaultPMICCommand
		if len(args) == 0 {
			args = DefaultPMICArgs
		}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PowerSensor{command: command, args: args, log: log}
}

func (s *PowerSensor) Name() string {
	return "Power"
}

// Connect verifies that the PMIC command can be found.
func (s *PowerSensor) Connect(ctx context.Context) error {
	if _, err := exec.LookPath(s.command); err != nil {
		return &AcquisitionError{Command: s.command, Err: err}
	}
	return nil
}

func (s *PowerSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *PowerSensor) Collect(ctx context.Context) (any, error) {
	return s.Read(ctx)
}

// Read acquires, parses and aggregates one batch of PMIC readings.
func (s *PowerSensor) Read(ctx context.Context) (PowerResult, error) {
	out, err := s.Acquire(ctx)
	if err != nil {
		return PowerResult{}, err
	}

	samples, err := ParsePMICOutput(out)
	if err != nil {
		return PowerResult{}, err
	}

	watts, err := ComputePowerConsumption(samples)
	if err != nil {
		return PowerResult{}, err
	}

	return PowerResult{Samples: samples, Watts: watts}, nil
}

// Acquire runs the PMIC command and returns its standard output.
func (s *PowerSensor) Acquire(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, s.command, s.args...)
	out, err := cmd.Output()

	var acqErr *AcquisitionError
	switch {
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		acqErr = &AcquisitionError{Command: s.command, Err: err}
	case len(strings.TrimSpace(string(out))) == 0:
		acqErr = &AcquisitionError{Command: s.command, Err: errors.New("no output")}
	}

	if acqErr != nil {
		s.log.WithError(acqErr.Err).
			WithField("command", s.command).
			WithField("args", s.args).
			Error("Failed to read PMIC")
		return "", acqErr
	}

	return string(out), nil
}

// ParsePMICOutput groups PMIC output lines into per-rail samples. Every line
// must be a well formed reading; rails missing one of the two readings are
// left out of the result. Samples keep the order in which rails first appear.
func ParsePMICOutput(out string) ([]Sample, error) {
	byName := make(map[string]*Sample)
	var order []string

	scanner := bufio.NewScanner(strings.NewReader(out))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		m := pmicLineRegex.FindStringSubmatch(line)
		if m == nil {
			return nil, &ParseError{LineNo: lineNo, Line: line, Reason: "does not match PMIC reading format"}
		}

		name := m[pmicLineRegex.SubexpIndex("sys")]
		unit := m[pmicLineRegex.SubexpIndex("unit")]
		suffix := m[pmicLineRegex.SubexpIndex("suffix")]
		letter := m[pmicLineRegex.SubexpIndex("letter")]

		value, err := strconv.ParseFloat(m[pmicLineRegex.SubexpIndex("value")], 64)
		if err != nil {
			return nil, &ParseError{LineNo: lineNo, Line: line, Reason: err.Error()}
		}

		sample, ok := byName[name]
		if !ok {
			sample = &Sample{Name: name}
			byName[name] = sample
			order = append(order, name)
		}

		switch unit {
		case readingVolt:
			if suffix != "V" || letter != "V" {
				return nil, &ParseError{LineNo: lineNo, Line: line, Reason: "volt reading without V suffix and unit"}
			}
			sample.Voltage = &value
		case readingCurrent:
			if suffix != "A" || letter != "A" {
				return nil, &ParseError{LineNo: lineNo, Line: line, Reason: "current reading without A suffix and unit"}
			}
			sample.Current = &value
		default:
			return nil, &ParseError{LineNo: lineNo, Line: line, Reason: fmt.Sprintf("%s is not a valid unit", unit)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{LineNo: lineNo, Reason: err.Error()}
	}

	samples := make([]Sample, 0, len(order))
	for _, name := range order {
		if s := byName[name]; s.Complete() {
			samples = append(samples, *s)
		}
	}
	return samples, nil
}

// ComputePowerConsumption sums per-rail power and applies the board-level
// correction. An empty slice yields the correction offset alone.
func ComputePowerConsumption(samples []Sample) (float64, error) {
	measured := 0.0
	for _, s := range samples {
		p, err := s.Power()
		if err != nil {
			return 0, err
		}
		measured += p
	}
	return measured*powerScale + powerOffset, nil
}
