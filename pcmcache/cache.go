// SPDX-License-Identifier: EPL-2.0

package pcmcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ik5/ambience/audio"
)

// Options configures a Cache.
type Options struct {
	Registry *audio.Registry
	Resolver Resolver
	Logger   *slog.Logger

	// TargetRate, when set, resamples every clip to this rate at load time.
	TargetRate int
	// MaxFrames caps the decoded length of a clip; zero means no cap.
	MaxFrames int
	// Workers bounds concurrent decodes. Defaults to 4.
	Workers int
}

// Cache decodes clips into shared PCM buffers, one per clip identity.
//
// All methods are meant for the control loop. Decoding runs on background
// goroutines; results only become visible to buffers in Poll (or Preload),
// never from inside a render callback.
type Cache struct {
	registry   *audio.Registry
	resolver   Resolver
	log        *slog.Logger
	targetRate int
	maxFrames  int
	workers    int

	sem    chan struct{}
	flight singleflight.Group

	mu      sync.Mutex
	buffers map[string]*Buffer
	pending map[string]<-chan singleflight.Result
}

func New(opts Options) *Cache {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	return &Cache{
		registry:   opts.Registry,
		resolver:   opts.Resolver,
		log:        opts.Logger.With("component", "pcmcache"),
		targetRate: opts.TargetRate,
		maxFrames:  opts.MaxFrames,
		workers:    opts.Workers,
		sem:        make(chan struct{}, opts.Workers),
		buffers:    make(map[string]*Buffer),
		pending:    make(map[string]<-chan singleflight.Result),
	}
}

// GetBuffer returns the shared buffer for id, starting an asynchronous decode
// on first reference. Repeated calls return the same *Buffer and never decode
// twice. An empty id returns nil.
func (c *Cache) GetBuffer(id string) *Buffer {
	if id == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.buffers[id]; ok {
		return b
	}

	b := newBuffer(id)
	c.buffers[id] = b
	c.startLocked(b)

	return b
}

// Put installs already decoded PCM under id, replacing nothing: if id is
// known the existing buffer is returned unchanged.
func (c *Cache) Put(id string, pcm *audio.Planar) *Buffer {
	if id == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.buffers[id]; ok {
		return b
	}

	b := NewStatic(id, pcm)
	c.buffers[id] = b
	return b
}

// Peek returns the buffer for id without triggering a load.
func (c *Cache) Peek(id string) (*Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buffers[id]
	return b, ok
}

// IsLoaded reports whether id has decoded samples.
func (c *Cache) IsLoaded(id string) bool {
	b, ok := c.Peek(id)
	return ok && b.Loaded()
}

// Pending is the number of decodes not yet published.
func (c *Cache) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

// Len is the number of known clips.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.buffers)
}

// Poll publishes finished decodes without blocking and returns how many
// buffers changed state.
func (c *Cache) Poll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	done := 0
	for id, ch := range c.pending {
		select {
		case res := <-ch:
			delete(c.pending, id)
			c.finishLocked(c.buffers[id], res)
			done++
		default:
		}
	}

	return done
}

// Preload decodes ids and blocks until every one has settled or ctx ends.
// Individual failures do not stop the others; the first one is returned.
func (c *Cache) Preload(ctx context.Context, ids ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	var (
		errMu    sync.Mutex
		firstErr error
	)

	for _, id := range ids {
		b := c.GetBuffer(id)
		if b == nil {
			continue
		}

		g.Go(func() error {
			ch, ok := c.takePending(id)
			if !ok {
				return nil // settled already, or another caller is publishing it
			}

			select {
			case res := <-ch:
				c.mu.Lock()
				c.finishLocked(b, res)
				c.mu.Unlock()
				if res.Err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("%w: %s: %w", ErrLoadFailed, id, res.Err)
					}
					errMu.Unlock()
				}
				return nil
			case <-ctx.Done():
				// put it back so Poll can still publish it
				c.mu.Lock()
				c.pending[id] = ch
				c.mu.Unlock()
				return ctx.Err()
			}
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("preload: %w", err)
	}
	return firstErr
}

func (c *Cache) takePending(id string) (<-chan singleflight.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	return ch, ok
}

func (c *Cache) startLocked(b *Buffer) {
	if c.resolver == nil {
		c.failLocked(b, ErrNoResolver)
		return
	}

	asset, err := c.resolver.Resolve(b.id)
	if err != nil {
		c.failLocked(b, err)
		return
	}
	b.asset = asset

	if asset.Streaming {
		b.state.Store(int32(Streaming))
		return
	}

	dec, ok := c.registry.Get(asset.Format)
	if !ok || asset.Open == nil {
		c.log.Info("clip has no offline decoder, delegating", "clip", b.id, "format", asset.Format)
		b.err = fmt.Errorf("%w: format %q", ErrNotExtractable, asset.Format)
		b.state.Store(int32(Unreadable))
		return
	}

	b.state.Store(int32(Loading))
	c.pending[b.id] = c.flight.DoChan(b.id, func() (any, error) {
		return c.decode(asset, dec)
	})
}

func (c *Cache) finishLocked(b *Buffer, res singleflight.Result) {
	if b == nil {
		return
	}
	if res.Err != nil {
		c.failLocked(b, res.Err)
		return
	}

	pcm := res.Val.(*audio.Planar)
	b.publish(pcm, nil)
	c.log.Debug("clip loaded", "clip", b.id, "frames", pcm.Frames(), "rate", pcm.SampleRate, "channels", pcm.Channels())
}

func (c *Cache) failLocked(b *Buffer, err error) {
	c.log.Warn("clip failed to load", "clip", b.id, "err", err)
	b.publish(nil, err)
}

func (c *Cache) decode(asset Asset, dec audio.Decoder) (pcm *audio.Planar, err error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	defer func() {
		if r := recover(); r != nil {
			pcm, err = nil, fmt.Errorf("%w: %v", ErrDecoderPanic, r)
		}
	}()

	rc, err := asset.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", asset.ID, err)
	}
	defer rc.Close()

	src, err := dec.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", asset.ID, err)
	}
	defer src.Close()

	var in audio.Source = src
	if c.targetRate > 0 && src.SampleRate() != c.targetRate {
		in = audio.NewResampler(src, c.targetRate)
	}

	pcm, err = audio.ReadPlanar(in, c.maxFrames)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", asset.ID, err)
	}
	if pcm.Frames() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyClip, asset.ID)
	}

	return pcm, nil
}
