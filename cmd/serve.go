package main

import (
	"context"
	"errors"
	"sync"

	"github.com/desertthunder/practicebook/internal/server"
	"github.com/desertthunder/practicebook/internal/services"
	"github.com/desertthunder/practicebook/internal/telemetry"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API over the local database together with MQTT ingestion and the log recorder.
//
// It always uses the local backend, even when a remote URL is configured.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config.Server
	if host := cmd.String("host"); host != "" {
		config.Host = host
	}
	if port := int(cmd.Int("port")); port > 0 {
		config.Port = port
	}

	local, err := r.localService()
	if err != nil {
		return err
	}
	r.service = local

	ctx, cancel := context.WithCancel(ctx)
	stop := r.startTelemetry(ctx, local, !cmd.Bool("no-mqtt"))
	defer func() {
		cancel()
		stop()
	}()

	return server.New(config, local, r.logger).ListenAndServe(ctx)
}

// startTelemetry feeds the broker from MQTT and records samples against the active piece, as configured.
//
// The returned func waits for both goroutines after ctx is cancelled.
func (r *Runner) startTelemetry(ctx context.Context, local *services.LocalService, mqttEnabled bool) func() {
	var wg sync.WaitGroup

	if r.config.Telemetry.RecordLogs {
		samples, release := r.broker.Subscribe()
		recorder := telemetry.NewRecorder(local.Active(), local.Logs(), r.config.Telemetry.LogRate, r.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer release()
			if err := recorder.Run(ctx, samples); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("recorder stopped", "error", err)
			}
		}()
	}

	if r.config.MQTT.Enabled && mqttEnabled {
		ingestor := telemetry.NewIngestor(r.config.MQTT, r.broker, r.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ingestor.Start(ctx); err != nil {
				r.logger.Error("mqtt ingestion unavailable, continuing without live samples", "broker", r.config.MQTT.Broker, "error", err)
			}
		}()
	} else {
		r.logger.Info("mqtt ingestion disabled")
	}

	return wg.Wait
}
