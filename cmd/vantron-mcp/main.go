// Command vantron-mcp serves the Pi sensor readings, their DuckDB history and
// the discovery plan to MCP clients over stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vantron/internal/collector"
	"vantron/internal/collector/services"
	"vantron/internal/config"
	"vantron/internal/database/relational"
	"vantron/internal/discovery"
	"vantron/internal/logging"
	"vantron/internal/mcpserver"
	"vantron/internal/output"
	"vantron/internal/worker"

	"collectd.org/api"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "vantron-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// stdout carries the MCP protocol.
	log, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	collectorCfg := cfg.Collectd.CollectorConfig()
	writers := api.Fanout{}
	if collectorCfg.TextfilePath != "" {
		writers = append(writers, output.NewTextfileWriter(collectorCfg.TextfilePath))
	}

	plugin, err := collector.NewPlugin(collectorCfg, writers, log)
	if err != nil {
		return err
	}

	client, err := relational.NewDuckDBClient(cfg.History.Path,
		relational.WithThreads(cfg.History.Threads),
		relational.WithMemoryLimit(cfg.History.MemoryLimitMB),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := relational.NewRepo(client.DB()).WithRetention(cfg.History.Retention)
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate history: %w", err)
	}

	w, err := worker.NewReadWorker(plugin, plugin.Interval(), log)
	if err != nil {
		return err
	}
	if err := w.WithStore(repo).Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	msgs, err := discovery.Plan(cfg.MQTT.DiscoveryPrefix, cfg.MQTT.StatePrefix, discovery.AllSensors())
	if err != nil {
		return err
	}

	srv := mcpserver.NewServer(mcpserver.Config{
		ServerName:    "vantron",
		ServerVersion: version,
		Hostname:      collectorCfg.Hostname,
		Thresholds:    cfg.Thresholds,
	}, plugin, services.NewPhysicalSensor(), repo, msgs, log)

	return srv.Start(ctx)
}
