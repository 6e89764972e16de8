// Command vantron-collectd is run by collectd's exec plugin. It prints PUTVAL
// lines for the Pi 5 fan speed, clock frequency and board power on stdout.
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
	"vantron/internal/engine"
	"vantron/internal/logging"
	"vantron/internal/output"
	"vantron/internal/worker"
	"vantron/ui/console"

	"collectd.org/api"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	once := flag.Bool("once", false, "run a single read cycle and print a summary to stderr")
	flag.Parse()

	if err := run(*configPath, *once); err != nil {
		fmt.Fprintf(os.Stderr, "vantron-collectd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, once bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	collectorCfg := cfg.Collectd.CollectorConfig()
	writers := api.Fanout{output.NewPutvalWriter(os.Stdout)}
	if collectorCfg.TextfilePath != "" {
		writers = append(writers, output.NewTextfileWriter(collectorCfg.TextfilePath))
	}

	plugin, err := collector.NewPlugin(collectorCfg, writers, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := worker.NewReadWorker(plugin, plugin.Interval(), log)
	if err != nil {
		return err
	}

	if cfg.History.Path != "" {
		repo, closeRepo, err := openHistory(ctx, cfg.History)
		if err != nil {
			return err
		}
		defer closeRepo()
		w.WithStore(repo)
	}

	if once {
		return runOnce(ctx, w, cfg.Thresholds, log)
	}

	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	log.Info("Shutting down Vantron plugin")
	w.Stop()
	return nil
}

func openHistory(ctx context.Context, hc config.HistoryConfig) (*relational.Repo, func(), error) {
	client, err := relational.NewFileDB(hc.Path,
		relational.WithThreads(hc.Threads),
		relational.WithMemoryLimit(hc.MemoryLimitMB),
	)
	if err != nil {
		return nil, nil, err
	}

	repo := relational.NewRepo(client.DB()).WithRetention(hc.Retention)
	if err := repo.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to migrate history: %w", err)
	}
	return repo, func() { _ = client.Close() }, nil
}

func runOnce(ctx context.Context, w *worker.ReadWorker, thresholds engine.Config, log logrus.FieldLogger) error {
	err := w.PullOnce(ctx)

	var temps []services.TempStat
	if res, tErr := services.NewPhysicalSensor().Read(ctx); tErr == nil {
		temps = res.Temperatures
	} else {
		log.WithError(tErr).Debug("Temperatures unavailable")
	}

	if r := w.Last(); r != nil {
		console.Print(os.Stderr, output.BuildDashboardWith(*r, temps, thresholds))
	}
	return err
}
