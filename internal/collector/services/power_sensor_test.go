package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const pmicOutput = `     3V7_WL_SW_A current(0)=0.00000000A
   3V3_SYS_A current(1)=0.05171000A
   1V8_SYS_A current(2)=0.17079300A
   DDR_VDD2_A current(3)=0.02049600A
   VDD_CORE_A current(7)=0.76000000A
   3V7_WL_SW_V volt(8)=3.71523600V
   3V3_SYS_V volt(9)=3.30615800V
   1V8_SYS_V volt(10)=1.79816300V
   DDR_VDD2_V volt(11)=1.11167300V
   EXT5V_V volt(24)=5.14923000V
`

func ptr(v float64) *float64 { return &v }

func TestParsePMICOutput(t *testing.T) {
	samples, err := ParsePMICOutput(pmicOutput)
	require.NoError(t, err)

	// VDD_CORE has no volt line and EXT5V no current line.
	names := make([]string, 0, len(samples))
	for _, s := range samples {
		names = append(names, s.Name)
		require.True(t, s.Complete(), s.Name)
	}
	require.Equal(t, []string{"3V7_WL_SW", "3V3_SYS", "1V8_SYS", "DDR_VDD2"}, names)

	require.InDelta(t, 0.05171, *samples[1].Current, 1e-12)
	require.InDelta(t, 3.306158, *samples[1].Voltage, 1e-12)
}

func TestComputePowerConsumption_SingleRail(t *testing.T) {
	samples, err := ParsePMICOutput("FOO_V volt(0)=5.000V\nFOO_A current(0)=2.000A\n")
	require.NoError(t, err)

	got, err := ComputePowerConsumption(samples)
	require.NoError(t, err)
	require.InDelta(t, 12.0389, got, 1e-9)
}

func TestComputePowerConsumption_MatchesFormula(t *testing.T) {
	samples, err := ParsePMICOutput(pmicOutput)
	require.NoError(t, err)

	measured := 0.0
	for _, s := range samples {
		measured += *s.Voltage * *s.Current
	}

	got, err := ComputePowerConsumption(samples)
	require.NoError(t, err)
	require.InDelta(t, measured*1.1451+0.5879, got, 1e-9)
}

func TestComputePowerConsumption_Empty(t *testing.T) {
	samples, err := ParsePMICOutput("")
	require.NoError(t, err)
	require.Empty(t, samples)

	got, err := ComputePowerConsumption(samples)
	require.NoError(t, err)
	require.Equal(t, 0.5879, got)
}

func TestComputePowerConsumption_VoltageOnlyExcluded(t *testing.T) {
	in := "FOO_V volt(0)=5.000V\nFOO_A current(0)=2.000A\nBAR_V volt(1)=12.000V\n"
	samples, err := ParsePMICOutput(in)
	require.NoError(t, err)
	require.Len(t, samples, 1)

	got, err := ComputePowerConsumption(samples)
	require.NoError(t, err)
	require.InDelta(t, 12.0389, got, 1e-9)
}

func TestComputePowerConsumption_RejectsIncompleteSample(t *testing.T) {
	_, err := ComputePowerConsumption([]Sample{{Name: "FOO", Voltage: ptr(5)}})
	require.ErrorIs(t, err, ErrIncompleteSample)
}

func TestSamplePower(t *testing.T) {
	p, err := Sample{Name: "FOO", Voltage: ptr(5), Current: ptr(0.5)}.Power()
	require.NoError(t, err)
	require.Equal(t, 2.5, p)

	_, err = Sample{Name: "FOO", Current: ptr(0.5)}.Power()
	require.ErrorIs(t, err, ErrIncompleteSample)
}

func TestParsePMICOutput_DuplicateLastWriteWins(t *testing.T) {
	in := "FOO_V volt(0)=5.000V\nFOO_A current(0)=2.000A\nFOO_V volt(0)=4.000V\n"
	samples, err := ParsePMICOutput(in)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.Equal(t, 4.0, *samples[0].Voltage)

	got, err := ComputePowerConsumption(samples)
	require.NoError(t, err)
	require.InDelta(t, 4.0*2.0*1.1451+0.5879, got, 1e-9)
}

func TestParsePMICOutput_OrderIndependent(t *testing.T) {
	lines := strings.Split(strings.TrimRight(pmicOutput, "\n"), "\n")

	base, err := ParsePMICOutput(pmicOutput)
	require.NoError(t, err)
	want, err := ComputePowerConsumption(base)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), lines...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		samples, err := ParsePMICOutput(strings.Join(shuffled, "\n"))
		require.NoError(t, err)
		got, err := ComputePowerConsumption(samples)
		require.NoError(t, err)
		require.InDelta(t, want, got, 1e-9)
	}
}

func TestParsePMICOutput_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "missing unit suffix", in: "FOO_V volt(0)=5.000\n"},
		{name: "integer value", in: "FOO_V volt(0)=5V\n"},
		{name: "lowercase name", in: "foo_V volt(0)=5.000V\n"},
		{name: "unknown keyword", in: "FOO_W watt(0)=5.000W\n"},
		{name: "keyword case", in: "FOO_V Volt(0)=5.000V\n"},
		{name: "blank line between readings", in: "FOO_V volt(0)=5.000V\n\nFOO_A current(0)=2.000A\n"},
		{name: "suffix disagrees with keyword", in: "FOO_A volt(0)=5.000V\n"},
		{name: "unit disagrees with keyword", in: "FOO_A current(0)=2.000V\n"},
		{name: "garbage", in: "error=1 error_msg=\"Command not registered\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples, err := ParsePMICOutput(tt.in)
			require.Nil(t, samples)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			require.Positive(t, parseErr.LineNo)
		})
	}
}

func TestParsePMICOutput_SurroundingWhitespace(t *testing.T) {
	samples, err := ParsePMICOutput("\t FOO_V volt(12)=5.000V  \r\n  FOO_A current(13)=1.500A\t\n")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	p, err := samples[0].Power()
	require.NoError(t, err)
	require.InDelta(t, 7.5, p, 1e-12)
}

func TestPowerSensorAcquire_Errors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
	}{
		{name: "missing command", command: "vantron-no-such-command"},
		{name: "non-zero exit", command: "false"},
		{name: "no output", command: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, hook := logtest.NewNullLogger()
			s := NewPowerSensor(tt.command, tt.args, log)

			out, err := s.Acquire(context.Background())
			require.Empty(t, out)

			var acqErr *AcquisitionError
			require.ErrorAs(t, err, &acqErr)
			require.Equal(t, tt.command, acqErr.Command)

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			require.Equal(t, logrus.ErrorLevel, entry.Level)
			require.Equal(t, tt.command, entry.Data["command"])
			require.Contains(t, entry.Data, logrus.ErrorKey)
		})
	}
}

func TestPowerSensorRead(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	s := NewPowerSensor("printf", []string{`FOO_V volt(0)=5.000V\nFOO_A current(0)=2.000A\n`}, log)

	res, err := s.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Samples, 1)
	require.InDelta(t, 12.0389, res.Watts, 1e-9)
	require.Empty(t, hook.AllEntries())
}

func TestPowerSensorRead_ParseErrorAborts(t *testing.T) {
	s := NewPowerSensor("printf", []string{`FOO_V volt(0)=5.000\n`}, logrus.New())

	res, err := s.Read(context.Background())
	require.Zero(t, res.Watts)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestNewPowerSensor_Defaults(t *testing.T) {
	s := NewPowerSensor("", nil, nil)
	require.Equal(t, DefaultPMICCommand, s.command)
	require.Equal(t, DefaultPMICArgs, s.args)
	require.NotNil(t, s.log)
}
