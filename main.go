package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"vantron/internal/collector"
	"vantron/internal/collector/services"
	"vantron/internal/config"
	"vantron/internal/discovery"
	"vantron/internal/logging"
	"vantron/ui/tui"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The alt screen owns the terminal; failures surface in the read log.
	log, err := logging.New(cfg.LogLevel, io.Discard)
	if err != nil {
		return err
	}

	recorder := tui.NewRecorder()
	plugin, err := collector.NewPlugin(cfg.Collectd.CollectorConfig(), recorder, log)
	if err != nil {
		return err
	}

	msgs, err := discovery.Plan(cfg.MQTT.DiscoveryPrefix, cfg.MQTT.StatePrefix, discovery.AllSensors())
	if err != nil {
		return err
	}

	return tui.Start(tui.Options{
		Provider:        plugin,
		Recorder:        recorder,
		Thermal:         services.NewPhysicalSensor(),
		Discovery:       msgs,
		Thresholds:      &cfg.Thresholds,
		RefreshInterval: plugin.Interval(),
	})
}
