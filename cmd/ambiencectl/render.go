// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ik5/ambience"
	"github.com/ik5/ambience/audio"
	"github.com/ik5/ambience/formats/wav"
	"github.com/ik5/ambience/internal/config"
)

const defaultRenderDuration = 30 * time.Second

func render(ctx context.Context, cfg config.Config, log *slog.Logger, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	duration := fs.Duration("duration", 0, "length of the render (default: the listener path, or 30s)")
	rate := fs.Int("rate", 0, "output sample rate (default: AMBIENCE_SAMPLE_RATE)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errUsage
	}

	e, err := newEngine(ctx, cfg, log, fs.Arg(0), false)
	if err != nil {
		return err
	}

	d := *duration
	if d <= 0 {
		d = e.scene.Listener.Duration()
	}
	if d <= 0 {
		d = defaultRenderDuration
	}
	outRate := *rate
	if outRate <= 0 {
		outRate = cfg.SampleRate
	}

	src := e.m.Source(ambience.SourceOptions{
		Duration:     d,
		TickInterval: cfg.TickInterval,
		Listener:     e.scene.Listener.At,
	})
	defer src.Close()

	start := time.Now()
	pcm, outRate, err := audio.ResampleToMono16(src, outRate, max(cfg.BufferFrames, 1))
	if err != nil {
		return err
	}

	f, err := os.Create(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := wav.WriteWAV16(f, outRate, pcm); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", fs.Arg(1), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", fs.Arg(1), err)
	}

	log.Debug("render finished", "took", time.Since(start))
	fmt.Fprintf(stdout, "wrote %s: %v of mono audio at %d Hz\n", fs.Arg(1), d, outRate)
	return nil
}
