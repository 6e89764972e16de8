// Command vantron-discovery publishes Home Assistant MQTT discovery configs
// for the Raspberry Pi and router collectd values.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"vantron/internal/collector/services"
	"vantron/internal/config"
	"vantron/internal/discovery"
	"vantron/internal/logging"
	"vantron/ui/console"

	"github.com/sirupsen/logrus"
)

const disconnectQuiesceMs = 250

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	dryRun := flag.Bool("dry-run", false, "print the discovery plan instead of publishing it")
	flag.Parse()

	if err := run(*configPath, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "vantron-discovery: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, dryRun bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	entries, err := buildEntries(ctx, cfg.LocalDevice, log)
	if err != nil {
		return err
	}

	if dryRun {
		msgs, err := discovery.Plan(cfg.MQTT.DiscoveryPrefix, cfg.MQTT.StatePrefix, entries)
		if err != nil {
			return err
		}
		console.PrintPlan(os.Stdout, msgs)
		return nil
	}

	client, err := discovery.Dial(ctx, cfg.MQTT.Broker(), cfg.MQTT.ClientID, cfg.MQTT.Username, cfg.MQTT.Password, cfg.MQTT.PublishTimeout)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesceMs)

	log.WithField("broker", cfg.MQTT.Broker()).Info("Connected to MQTT broker")

	pub := discovery.NewPublisher(client, discovery.PublisherOptions{
		DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
		StatePrefix:     cfg.MQTT.StatePrefix,
		PublishTimeout:  cfg.MQTT.PublishTimeout,
	}, log)
	return pub.PublishAll(ctx, entries)
}

func buildEntries(ctx context.Context, local bool, log logrus.FieldLogger) ([]discovery.Entry, error) {
	entries := discovery.AllSensors()
	if !local {
		return entries, nil
	}

	host, err := services.NewHostSensor().Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to describe local device: %w", err)
	}
	log.WithField("hostname", host.Hostname).Debug("Adding local device entities")
	return slices.Concat(entries, discovery.LocalSensors(host)), nil
}
