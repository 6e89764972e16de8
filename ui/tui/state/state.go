package state

import (
	"time"

	"vantron/internal/collector"
	"vantron/internal/collector/services"
	"vantron/internal/discovery"
	"vantron/internal/engine"
)

type Page int

const (
	PageMenu      Page = iota
	PageReadings       // "Live Sensor Readings"
	PageDiscovery      // "Discovery Entities"
	PageConsole        // "Read Log"
)

// AppState holds the latest read cycle and what the plugin announces
type AppState struct {
	Readings     *collector.Readings
	Temperatures []services.TempStat
	LastUpdate   time.Time
	Err          error
	PowerHistory []float64
	ConsoleLogs  []string
	Discovery    []discovery.Message
	Thresholds   engine.Config
	CurrentPage  Page
}
