// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ik5/ambience"
	"github.com/ik5/ambience/device"
	"github.com/ik5/ambience/internal/config"
	"github.com/ik5/ambience/internal/scene"
	"github.com/ik5/ambience/pcmcache"
)

// engine is a loaded scene wired to a Manager and, for live playback, an
// output device for delegated tracks.
type engine struct {
	scene *scene.Scene
	m     *ambience.Manager
	dev   *device.Device
}

func newEngine(ctx context.Context, cfg config.Config, log *slog.Logger, path string, withDevice bool) (*engine, error) {
	sc, err := scene.LoadFile(path)
	if err != nil {
		return nil, err
	}

	reg := pcmcache.DefaultRegistry()

	e := &engine{scene: sc}
	var delegate ambience.Delegate
	if withDevice {
		e.dev = device.New(device.Options{
			SampleRate: cfg.SampleRate,
			Registry:   reg,
			Logger:     log,
		})
		delegate = e.dev
	}

	volume := cfg.GlobalVolume
	e.m = ambience.New(ambience.Options{
		SampleRate:          cfg.SampleRate,
		Channels:            cfg.Channels,
		Resolver:            pcmcache.FSResolver{FS: os.DirFS(cfg.AssetDir)},
		Registry:            reg,
		DecodeWorkers:       cfg.DecodeWorkers,
		Delegate:            delegate,
		Logger:              log,
		GlobalVolume:        &volume,
		OneShotTimeoutTicks: cfg.OneShotTimeoutTicks,
		Seed:                cfg.Seed,
	})

	clips := sc.Clips()
	log.Info("loading clips", "scene", path, "clips", len(clips), "dir", cfg.AssetDir)
	if err := e.m.Preload(ctx, clips...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("some clips failed to load", "err", err)
	}

	sc.Apply(e.m)
	return e, nil
}
