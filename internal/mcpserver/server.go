package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"vantron/internal/collector"
	"vantron/internal/collector/services"
	"vantron/internal/database/relational"
	"vantron/internal/discovery"
	"vantron/internal/engine"
)

// History is the part of relational.Repo the server queries.
type History interface {
	QueryCycles(ctx context.Context, hostname string, limit int) ([]relational.CycleSummary, error)
	PowerSince(ctx context.Context, hostname string, since time.Time) (relational.PowerStats, error)
}

// Server wraps the MCP server with Vantron capabilities.
type Server struct {
	mcpServer  *mcp.Server
	provider   collector.ReadingsProvider
	thermal    services.ThermalReader // optional
	history    History                // optional
	discovery  []discovery.Message
	thresholds engine.Config
	hostname   string
	log        logrus.FieldLogger
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
	Hostname      string // default host for history queries
	Thresholds    engine.Config
}

// NewServer creates a new MCP server instance. thermal and history may be nil.
func NewServer(cfg Config, provider collector.ReadingsProvider, thermal services.ThermalReader, history History, msgs []discovery.Message, log logrus.FieldLogger) *Server {
	if cfg.ServerName == "" {
		cfg.ServerName = "vantron"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	s := &Server{
		mcpServer:  mcp.NewServer(impl, nil),
		provider:   provider,
		thermal:    thermal,
		history:    history,
		discovery:  msgs,
		thresholds: cfg.Thresholds,
		hostname:   cfg.Hostname,
		log:        log,
	}
	s.registerTools()
	return s
}

// ReadSensorsArgs defines the input for read_sensors tool.
type ReadSensorsArgs struct{}

// RailResult is the power drawn by one PMIC rail.
type RailResult struct {
	Name    string  `json:"name"`
	Voltage float64 `json:"voltage" jsonschema:"volts"`
	Current float64 `json:"current" jsonschema:"amps"`
	Watts   float64 `json:"watts"`
}

// ReadSensorsResult defines the output for read_sensors tool.
type ReadSensorsResult struct {
	Host         string               `json:"host"`
	Time         time.Time            `json:"time"`
	FanSpeedRPM  *int64               `json:"fan_speed_rpm,omitempty"`
	FrequencyGHz *float64             `json:"frequency_ghz,omitempty"`
	Watts        *float64             `json:"watts,omitempty" jsonschema:"estimated board power"`
	Rails        []RailResult         `json:"rails,omitempty"`
	Temperatures []services.TempStat  `json:"temperatures,omitempty"`
	Checks       []engine.CheckResult `json:"checks" jsonschema:"threshold checks: OK, WARN or CRIT"`
	Errors       []string             `json:"errors,omitempty"`
}

// HistoryArgs defines the input for get_history tool.
type HistoryArgs struct {
	Hostname string `json:"hostname,omitempty" jsonschema:"hostname to filter by"`
	Limit    int    `json:"limit,omitempty" jsonschema:"number of cycles to return (max 100)"`
	Minutes  int    `json:"minutes,omitempty" jsonschema:"window for the power summary, default 60"`
}

// HistoryResult wraps stored cycles and a power summary.
type HistoryResult struct {
	Cycles []relational.CycleSummary `json:"cycles"`
	Power  relational.PowerStats     `json:"power"`
}

// DiscoveryPlanArgs defines the input for discovery_plan tool.
type DiscoveryPlanArgs struct {
	Device string `json:"device,omitempty" jsonschema:"only entities of this device name"`
}

// PlanEntry is one discovery config message.
type PlanEntry struct {
	Device     string `json:"device"`
	Name       string `json:"name"`
	Component  string `json:"component"`
	UniqueID   string `json:"unique_id"`
	Topic      string `json:"topic"`
	StateTopic string `json:"state_topic"`
}

// DiscoveryPlanResult lists the config messages.
type DiscoveryPlanResult struct {
	Entities []PlanEntry `json:"entities"`
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "read_sensors",
		Description: "Run one read cycle on the Raspberry Pi: CPU fan speed, clock frequency, PMIC rail power and the estimated board power, graded against the configured thresholds.",
	}, s.handleReadSensors)

	if s.history != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "get_history",
			Description: "Query stored read cycles from DuckDB, newest first, with a min/avg/max power summary over a time window.",
		}, s.handleGetHistory)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "discovery_plan",
		Description: "List the Home Assistant MQTT discovery entities this installation announces, with their config and state topics.",
	}, s.handleDiscoveryPlan)
}

// handleReadSensors runs the plugin once.
func (s *Server) handleReadSensors(ctx context.Context, _ *mcp.CallToolRequest, _ ReadSensorsArgs) (*mcp.CallToolResult, ReadSensorsResult, error) {
	r, err := s.provider.Read(ctx)
	if r == nil {
		if err == nil {
			err = fmt.Errorf("no readings")
		}
		return nil, ReadSensorsResult{}, fmt.Errorf("failed to read sensors: %w", err)
	}

	res := ReadSensorsResult{Host: r.Host, Time: r.Time, Checks: []engine.CheckResult{}}

	if r.CPUErr == nil || r.FanSent {
		fan := r.FanSpeedRPM
		res.FanSpeedRPM = &fan
	}
	if r.CPUErr == nil {
		ghz := r.FrequencyGHz()
		res.FrequencyGHz = &ghz
	} else {
		res.Errors = append(res.Errors, r.CPUErr.Error())
	}

	if r.PowerErr == nil {
		watts := r.Watts
		res.Watts = &watts
		for _, smp := range r.Samples {
			p, pErr := smp.Power()
			if pErr != nil {
				continue
			}
			res.Rails = append(res.Rails, RailResult{Name: smp.Name, Voltage: *smp.Voltage, Current: *smp.Current, Watts: p})
		}
	} else {
		res.Errors = append(res.Errors, r.PowerErr.Error())
	}

	if s.thermal != nil {
		if out, tErr := s.thermal.Read(ctx); tErr == nil {
			res.Temperatures = out.Temperatures
		} else {
			s.log.WithError(tErr).Debug("Temperatures unavailable")
		}
	}

	res.Checks = append(res.Checks, engine.Evaluate(*r, res.Temperatures, s.thresholds)...)
	return nil, res, nil
}

// handleGetHistory queries DuckDB.
func (s *Server) handleGetHistory(ctx context.Context, _ *mcp.CallToolRequest, args HistoryArgs) (*mcp.CallToolResult, HistoryResult, error) {
	host := args.Hostname
	if host == "" {
		host = s.hostname
	}
	minutes := args.Minutes
	if minutes <= 0 {
		minutes = 60
	}

	cycles, err := s.history.QueryCycles(ctx, host, args.Limit)
	if err != nil {
		return nil, HistoryResult{}, fmt.Errorf("failed to query history: %w", err)
	}

	power, err := s.history.PowerSince(ctx, host, time.Now().Add(-time.Duration(minutes)*time.Minute))
	if err != nil {
		return nil, HistoryResult{}, fmt.Errorf("failed to summarize power: %w", err)
	}

	return nil, HistoryResult{Cycles: cycles, Power: power}, nil
}

// handleDiscoveryPlan lists the planned config messages.
func (s *Server) handleDiscoveryPlan(_ context.Context, _ *mcp.CallToolRequest, args DiscoveryPlanArgs) (*mcp.CallToolResult, DiscoveryPlanResult, error) {
	res := DiscoveryPlanResult{Entities: []PlanEntry{}}
	for _, m := range s.discovery {
		e := m.Entry.Entity
		device := ""
		if e.Device != nil {
			device = e.Device.Name
		}
		if args.Device != "" && !strings.EqualFold(device, args.Device) {
			continue
		}
		res.Entities = append(res.Entities, PlanEntry{
			Device:     device,
			Name:       e.Name,
			Component:  string(e.Component),
			UniqueID:   e.UniqueID,
			Topic:      m.Topic,
			StateTopic: m.StateTopic,
		})
	}
	return nil, res, nil
}

// Start starts the MCP server using stdio transport.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting Vantron MCP server on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
