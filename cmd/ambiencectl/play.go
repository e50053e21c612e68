// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ebitengine/oto/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/ambience"
	"github.com/ik5/ambience/internal/config"
	"github.com/ik5/ambience/zone"
)

func play(ctx context.Context, cfg config.Config, log *slog.Logger, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(stderr)
	duration := fs.Duration("duration", 0, "stop after this long (default: the listener path, or until interrupted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}
	if cfg.Channels < 1 || cfg.Channels > 2 {
		return fmt.Errorf("%w: %d", errChannels, cfg.Channels)
	}

	e, err := newEngine(ctx, cfg, log, fs.Arg(0), true)
	if err != nil {
		return err
	}

	d := *duration
	if d <= 0 {
		d = e.scene.Listener.Duration()
	}
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(cfg.BufferFrames) * time.Second / time.Duration(cfg.SampleRate),
	})
	if err != nil {
		return fmt.Errorf("opening audio output: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(newOutput(e.m, e.dev, cfg.Channels, cfg.BufferFrames))
	defer player.Close()
	player.Play()

	log.Info("playing", "rate", cfg.SampleRate, "channels", cfg.Channels, "duration", d)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return drive(ctx, e.m, e.scene.Listener.At, cfg.TickInterval) })
	g.Go(func() error { return report(ctx, e.m, log, 5*time.Second) })

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if perr := player.Err(); perr != nil && err == nil {
		err = fmt.Errorf("audio output: %w", perr)
	}
	return err
}

// drive runs the control loop on a wall-clock ticker until ctx ends.
func drive(ctx context.Context, m *ambience.Manager, listener func(time.Duration) zone.Vec3, every time.Duration) error {
	start := time.Now()
	last := start
	m.Tick(0, listener(0))

	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			m.Tick(now.Sub(last).Seconds(), listener(now.Sub(start)))
			last = now
		}
	}
}

// report logs what is playing every so often.
func report(ctx context.Context, m *ambience.Manager, log *slog.Logger, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			for _, info := range m.Tracks() {
				log.Info("track", "sequence", info.Name, "clip", info.Clip, "fade", info.Fade, "delegated", info.Delegated)
			}
			for _, b := range m.Blocked() {
				log.Debug("blocked", "sequence", b.Name, "reason", b.Reason)
			}
		}
	}
}
