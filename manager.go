// SPDX-License-Identifier: EPL-2.0

package ambience

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/ik5/ambience/audio"
	"github.com/ik5/ambience/pcmcache"
	"github.com/ik5/ambience/requirement"
	"github.com/ik5/ambience/sequence"
	"github.com/ik5/ambience/syncgroup"
	"github.com/ik5/ambience/track"
	"github.com/ik5/ambience/zone"
)

// Options configures a Manager.
type Options struct {
	// SampleRate of RenderBuffer output. Defaults to 48000.
	SampleRate int
	// Channels of RenderBuffer output. Defaults to 2.
	Channels int

	// Cache supplies clip PCM. When nil one is built from Resolver,
	// Registry and DecodeWorkers, resampling clips to SampleRate.
	Cache         *pcmcache.Cache
	Resolver      pcmcache.Resolver
	Registry      *audio.Registry
	DecodeWorkers int

	// Delegate plays tracks that cannot be mixed in software.
	Delegate Delegate

	Logger *slog.Logger

	// GlobalVolume defaults to 1.
	GlobalVolume *float64
	// OneShotTimeoutTicks finalizes one-shots that produced no audio after
	// this many ticks. Defaults to 250.
	OneShotTimeoutTicks int
	// Seed makes clip order and placement reproducible; zero seeds randomly.
	Seed uint64
}

type trackKey struct {
	seq     *sequence.Sequence
	oneShot bool
}

type route int

const (
	integrated route = iota
	delegated
)

func (r route) String() string {
	if r == delegated {
		return "delegated"
	}
	return "integrated"
}

// live is the Manager's bookkeeping for one Track.
type live struct {
	key   trackKey
	t     *track.Track
	route route
	voice *voice
	zone  *zone.Zone

	angle, distance float64
	placed          bool
	events          []string
	synced          string

	// fired one-shots were requested through PlayOneShot or
	// PlaySequenceOnce and ignore zones and requirements.
	fired bool
}

// Manager orchestrates zones, sequences and tracks, and renders their mix.
//
// Control methods and Tick may be called from any goroutine; they serialise
// on an internal lock. RenderBuffer is meant for the host's audio callback
// and never waits on anything but the brief list updates done by Tick.
type Manager struct {
	log      *slog.Logger
	cache    *pcmcache.Cache
	state    *requirement.State
	sync     *syncgroup.Coordinator
	delegate Delegate

	rate           int
	channels       int
	oneShotTimeout int

	ctlMu      sync.Mutex
	rng        *rand.Rand
	zones      []*zone.Zone
	globals    []*sequence.Sequence
	forced     map[*sequence.Sequence]bool
	clipSeqs   map[string]*sequence.Sequence
	tracks     map[trackKey]*live
	order      []trackKey
	known      map[*sequence.Sequence]bool
	spent      map[*sequence.Sequence]bool
	lastState  uint64
	blocked    []BlockedInfo
	tick       uint64
	deferred   taskQueue
	listener   zone.Vec3
	enabled    bool
	onStarted  []func(TrackInfo)
	onStopped  []func(TrackInfo)
	warnedSeqs map[*sequence.Sequence]bool

	mixMu sync.Mutex
	mix   []*track.Track

	delegMu sync.Mutex
	deleg   []*voice

	paused   atomic.Bool
	volume   atomic.Uint64
	rendered atomic.Int64
}

// New returns an enabled Manager with no zones or sequences.
func New(opts Options) *Manager {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 48000
	}
	if opts.Channels <= 0 {
		opts.Channels = 2
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.OneShotTimeoutTicks <= 0 {
		opts.OneShotTimeoutTicks = 250
	}
	if opts.Cache == nil {
		opts.Cache = pcmcache.New(pcmcache.Options{
			Registry:   opts.Registry,
			Resolver:   opts.Resolver,
			Logger:     opts.Logger,
			TargetRate: opts.SampleRate,
			Workers:    opts.DecodeWorkers,
		})
	}

	seed1, seed2 := opts.Seed, opts.Seed^0x9e3779b97f4a7c15
	if opts.Seed == 0 {
		seed1, seed2 = rand.Uint64(), rand.Uint64()
	}

	m := &Manager{
		log:            opts.Logger.With("component", "ambience"),
		cache:          opts.Cache,
		state:          requirement.NewState(),
		delegate:       opts.Delegate,
		rate:           opts.SampleRate,
		channels:       opts.Channels,
		oneShotTimeout: opts.OneShotTimeoutTicks,
		rng:            rand.New(rand.NewPCG(seed1, seed2)),
		forced:         make(map[*sequence.Sequence]bool),
		clipSeqs:       make(map[string]*sequence.Sequence),
		tracks:         make(map[trackKey]*live),
		known:          make(map[*sequence.Sequence]bool),
		spent:          make(map[*sequence.Sequence]bool),
		enabled:        true,
		warnedSeqs:     make(map[*sequence.Sequence]bool),
	}
	m.sync = syncgroup.NewCoordinator(m.Now)

	v := 1.0
	if opts.GlobalVolume != nil {
		v = max(*opts.GlobalVolume, 0)
	}
	m.volume.Store(math.Float64bits(v))

	return m
}

// SampleRate of RenderBuffer output.
func (m *Manager) SampleRate() int { return m.rate }

// Channels of RenderBuffer output.
func (m *Manager) Channels() int { return m.channels }

// Cache is the PCM cache the Manager loads clips through.
func (m *Manager) Cache() *pcmcache.Cache { return m.cache }

// Now is the amount of audio rendered so far, in seconds. Sync groups use it
// as their shared clock.
func (m *Manager) Now() float64 {
	return float64(m.rendered.Load()) / float64(m.rate)
}

func (m *Manager) globalVolume() float64 {
	return math.Float64frombits(m.volume.Load())
}

// lockFor takes the lock of the list l's track lives in.
func (m *Manager) lockFor(l *live) func() {
	if l.route == delegated {
		m.delegMu.Lock()
		return m.delegMu.Unlock
	}
	m.mixMu.Lock()
	return m.mixMu.Unlock
}

func (m *Manager) newTrackRand() *rand.Rand {
	return rand.New(rand.NewPCG(m.rng.Uint64(), m.rng.Uint64()))
}
