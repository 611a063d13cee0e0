package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/practicebook/internal/formatter"
	"github.com/desertthunder/practicebook/internal/services"
	"github.com/desertthunder/practicebook/internal/telemetry"
	"github.com/urfave/cli/v3"
)

// BPMWatch prints live samples until interrupted or the stream ends.
//
// With --mqtt it connects to the broker itself, which works without a running server.
func (r *Runner) BPMWatch(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !cmd.Bool("mqtt") {
		svc, err := r.Service()
		if err != nil {
			return err
		}
		sub, err := svc.SubscribeBPM(ctx)
		if err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}
		defer sub.Close()

		r.logger.Info("watching live bpm", "backend", svc.Name())
		return r.printSamples(ctx, sub.C)
	}

	ingestor := telemetry.NewIngestor(r.config.MQTT, r.broker, r.logger)
	ch, release := r.broker.Subscribe()
	sub := services.NewSubscription(ch, release)
	defer sub.Close()

	var ingestErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		if ingestErr = ingestor.Start(ctx); ingestErr != nil {
			cancel()
		}
	}()

	r.logger.Info("watching live bpm", "broker", r.config.MQTT.Broker)
	err := r.printSamples(ctx, sub.C)
	cancel()
	<-done

	if ingestErr != nil {
		return fmt.Errorf("mqtt ingestion failed: %w", ingestErr)
	}
	return err
}

func (r *Runner) printSamples(ctx context.Context, samples <-chan float64) error {
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case bpm, ok := <-samples:
			if !ok {
				return nil
			}
			if err := r.writePlain("%s  %s BPM\n", time.Now().Format(time.TimeOnly), formatter.FormatBPM(bpm)); err != nil {
				return err
			}
		}
	}
}
