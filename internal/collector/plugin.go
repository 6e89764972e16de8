package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vantron/internal/collector/services"

	"collectd.org/api"
	"github.com/sirupsen/logrus"
)

const (
	PluginCPU   = "cpu"
	PluginPower = "power_use"

	TypeFanSpeed = "fanspeed"
	TypeCPUFreq  = "cpufreq"
	TypeGauge    = "gauge"
)

// ============================================================================
// DATA STRUCTURES
// ============================================================================

// Readings is the outcome of one read cycle. Fields of a callback that failed
// keep their zero value and the failure is recorded in the matching error.
type Readings struct {
	Host string
	Time time.Time

	FanSpeedRPM  int64
	FrequencyKHz int64
	CPUErr       error
	FanSent      bool // fan speed reached the writer even if CPUErr is set

	Watts    float64
	Samples  []services.Sample
	PowerErr error
}

// FrequencyGHz converts the cpufreq reading.
func (r Readings) FrequencyGHz() float64 {
	return services.CPUResult{FrequencyKHz: r.FrequencyKHz}.FrequencyGHz()
}

// ============================================================================
// INTERFACE DEFINITION
// ============================================================================

// ReadingsProvider defines the contract for anything producing read cycles.
type ReadingsProvider interface {
	Read(ctx context.Context) (*Readings, error)
}

// CPUReader is the part of services.CPUSensor used by the plugin.
type CPUReader interface {
	ReadFanSpeed(ctx context.Context) (int64, error)
	ReadClockFrequency(ctx context.Context) (int64, error)
}

// PowerReader is the part of services.PowerSensor used by the plugin.
type PowerReader interface {
	Read(ctx context.Context) (services.PowerResult, error)
}

// ============================================================================
// CONCRETE IMPLEMENTATION
// ============================================================================

// Plugin runs the registered read callbacks and dispatches their values.
type Plugin struct {
	host     string
	interval time.Duration
	timeout  time.Duration

	cpu   CPUReader
	power PowerReader

	writer api.Writer
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewPlugin builds the sensors described by cfg. Disabled callbacks are not
// registered.
func NewPlugin(cfg CollectorConfig, w api.Writer, log logrus.FieldLogger) (*Plugin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	p := &Plugin{
		host:     cfg.Hostname,
		interval: cfg.Interval,
		timeout:  cfg.ReadTimeout,
		writer:   w,
		log:      log,
		now:      time.Now,
	}
	ctx := context.Background()

	if cfg.EnableCPUMetrics {
		s := services.NewCPUSensor(cfg.CPUFrequencyPath, cfg.FanSpeedPath)
		if err := s.Connect(ctx); err != nil {
			log.WithError(err).Warn("CPU fan not found, reads will fail until it appears")
		}
		p.cpu = s
	}
	if cfg.EnablePowerMetrics {
		s := services.NewPowerSensor(cfg.PMICCommand, cfg.PMICArgs, log)
		if err := s.Connect(ctx); err != nil {
			log.WithError(err).Warn("PMIC command not available, reads will fail until it is installed")
		}
		p.power = s
	}

	log.Info("Setting up Vantron plugin")
	return p, nil
}

// NewPluginWithReaders wires already constructed readers. A nil reader
// unregisters its callback.
func NewPluginWithReaders(host string, interval time.Duration, cpu CPUReader, power PowerReader, w api.Writer, log logrus.FieldLogger) *Plugin {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Plugin{
		host:     host,
		interval: interval,
		cpu:      cpu,
		power:    power,
		writer:   w,
		log:      log,
		now:      time.Now,
	}
}

// Interval returns the read interval values are dispatched with.
func (p *Plugin) Interval() time.Duration {
	return p.interval
}

// Read runs every registered callback once, cpu first. A failing callback
// does not stop the others; all failures are joined in the returned error.
func (p *Plugin) Read(ctx context.Context) (*Readings, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	r := &Readings{Host: p.host, Time: p.timestamp()}

	if p.cpu != nil {
		r.FanSpeedRPM, r.FrequencyKHz, r.FanSent, r.CPUErr = p.readCPUMetrics(ctx)
	}
	if p.power != nil {
		var res services.PowerResult
		res, r.PowerErr = p.readPowerConsumption(ctx)
		r.Watts, r.Samples = res.Watts, res.Samples
	}

	return r, errors.Join(r.CPUErr, r.PowerErr)
}

// ReadCPUMetrics dispatches the fan speed and then the clock frequency.
func (p *Plugin) ReadCPUMetrics(ctx context.Context) error {
	_, _, _, err := p.readCPUMetrics(ctx)
	return err
}

// ReadPowerConsumption dispatches the estimated board power use.
func (p *Plugin) ReadPowerConsumption(ctx context.Context) error {
	_, err := p.readPowerConsumption(ctx)
	return err
}

func (p *Plugin) readCPUMetrics(ctx context.Context) (fan, freq int64, fanSent bool, err error) {
	if p.cpu == nil {
		return 0, 0, false, errors.New("cpu callback not registered")
	}

	ts := p.timestamp()
	fan, err = p.cpu.ReadFanSpeed(ctx)
	if err != nil {
		return 0, 0, false, err
	}
	p.log.Debugf("Reading CPU fan speed, %d rpm", fan)
	if err := p.dispatch(ctx, PluginCPU, TypeFanSpeed, ts, float64(fan)); err != nil {
		return fan, 0, false, err
	}

	ts = p.timestamp()
	freq, err = p.cpu.ReadClockFrequency(ctx)
	if err != nil {
		return fan, 0, true, err
	}
	p.log.Debugf("Reading CPU clock frequency, %.2f GHz", float64(freq)/1000000.0)
	if err := p.dispatch(ctx, PluginCPU, TypeCPUFreq, ts, float64(freq)); err != nil {
		return fan, freq, true, err
	}

	return fan, freq, true, nil
}

func (p *Plugin) readPowerConsumption(ctx context.Context) (services.PowerResult, error) {
	if p.power == nil {
		return services.PowerResult{}, errors.New("power callback not registered")
	}

	ts := p.timestamp()
	res, err := p.power.Read(ctx)
	if err != nil {
		return services.PowerResult{}, fmt.Errorf("failed to read power consumption: %w", err)
	}
	p.log.Debugf("Reading power consumption, %.2f W", res.Watts)

	if err := p.dispatch(ctx, PluginPower, TypeGauge, ts, res.Watts); err != nil {
		return res, err
	}
	return res, nil
}

func (p *Plugin) dispatch(ctx context.Context, plugin, typ string, ts time.Time, v float64) error {
	vl := &api.ValueList{
		Identifier: api.Identifier{
			Host:   p.host,
			Plugin: plugin,
			Type:   typ,
		},
		Time:     ts,
		Interval: p.interval,
		Values:   []api.Value{api.Gauge(v)},
	}
	if err := p.writer.Write(ctx, vl); err != nil {
		return fmt.Errorf("failed to dispatch %s: %w", vl.Identifier, err)
	}
	return nil
}

func (p *Plugin) timestamp() time.Time {
	return p.now().Truncate(time.Second)
}
