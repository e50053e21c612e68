// SPDX-License-Identifier: EPL-2.0

package track

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/ik5/ambience/pcmcache"
	"github.com/ik5/ambience/sequence"
	"github.com/ik5/ambience/syncgroup"
	"github.com/ik5/ambience/utils"
)

// BufferSource hands out shared clip buffers, starting loads as needed.
type BufferSource interface {
	GetBuffer(id string) *pcmcache.Buffer
}

// Block describes one render call.
type Block struct {
	Frames   int
	Channels int
	Rate     int
	// GlobalVolume scales every track.
	GlobalVolume float64
	// Now is the amount of audio, in seconds, rendered before this block.
	Now float64
}

// Options configures a new Track.
type Options struct {
	Sequence *sequence.Sequence
	// OneShot tracks play one clip and finish.
	OneShot bool
	Buffers BufferSource
	// Rand drives clip order, delays and randomisation. Defaults to a
	// randomly seeded PCG.
	Rand *rand.Rand
}

type clipSlot struct {
	ref sequence.ClipRef
	buf *pcmcache.Buffer
}

// voice is one clip being played.
type voice struct {
	slot  int
	buf   *pcmcache.Buffer
	clock float64 // seconds into the clip at natural speed
	gain  float64
	speed float64
}

func (v *voice) reset() { *v = voice{slot: -1} }

// Track is one live instance of a Sequence.
//
// A Track is not safe for concurrent use. Control code calls UpdateTrackData
// and the render path calls Render or Filter while both hold the lock of the
// list the track lives in.
type Track struct {
	seq     *sequence.Sequence
	oneShot bool
	buffers BufferSource
	rng     *rand.Rand

	params    *sequence.Params
	clips     []clipSlot
	clipsVer  uint64
	target    float64
	fadeTime  float64
	finished  bool
	sync      atomic.Pointer[syncgroup.State]
	waitTicks int

	// render state
	fade    float64
	volume  float64
	speed   float64
	started bool
	audible bool

	cur, next   voice
	crossfading bool
	pool        []int
	passEnding  bool

	delaying      bool
	delayLeft     float64
	delayPending  float64
	padding       bool
	fadeInElapsed float64
	fadingIn      bool

	orphan     voice
	orphanFade float64
	orphaned   bool

	aligned      bool
	alignedStart float64
	groupPos     float64
}

// New creates a silent Track for opts.Sequence. It does nothing until the
// first UpdateTrackData.
func New(opts Options) *Track {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	t := &Track{
		seq:     opts.Sequence,
		oneShot: opts.OneShot,
		buffers: opts.Buffers,
		rng:     rng,
	}
	t.cur.reset()
	t.next.reset()
	t.orphan.reset()
	return t
}

func (t *Track) Sequence() *sequence.Sequence { return t.seq }
func (t *Track) OneShot() bool                { return t.oneShot }
func (t *Track) Fade() float64                { return t.fade }
func (t *Track) FadeTarget() float64          { return t.target }
func (t *Track) Finished() bool               { return t.finished }
func (t *Track) Delaying() bool               { return t.delaying }

func (t *Track) Name() string {
	if t.seq == nil {
		return ""
	}
	return t.seq.Name
}

// Volume is the smoothed sequence volume times the current clip gain.
func (t *Track) Volume() float64 {
	if t.cur.slot < 0 {
		return t.volume
	}
	return t.volume * t.cur.gain
}

// Clip is the id of the clip currently playing, or "".
func (t *Track) Clip() string {
	if t.cur.slot < 0 || t.cur.slot >= len(t.clips) {
		return ""
	}
	return t.clips[t.cur.slot].ref.ID
}

// Started reports whether the track has produced any audio.
func (t *Track) Started() bool { return t.audible }

// Removable reports whether the track may be dropped from its list: it
// finished, or it faded out completely and is not a one-shot waiting out a
// delay.
func (t *Track) Removable() bool {
	if t.finished {
		return true
	}
	return t.target == 0 && t.fade == 0 && !(t.oneShot && t.delaying)
}

// Finalize marks the track finished. The Manager uses it for one-shots that
// never got to play.
func (t *Track) Finalize() { t.finished = true }

// WaitTick counts one control tick spent without audible output and returns
// the total so far.
func (t *Track) WaitTick() int {
	if t.audible {
		return 0
	}
	t.waitTicks++
	return t.waitTicks
}

// Delegated reports whether any clip must be played by an output device.
func (t *Track) Delegated() bool {
	for _, c := range t.clips {
		if c.buf != nil && c.buf.Delegated() {
			return true
		}
	}
	return false
}

// StreamAsset returns the asset of the first delegated clip.
func (t *Track) StreamAsset() (pcmcache.Asset, bool) {
	for _, c := range t.clips {
		if c.buf != nil && c.buf.Delegated() {
			return c.buf.Asset(), true
		}
	}
	return pcmcache.Asset{}, false
}

// PlaybackSpeed is the effective speed of the current clip, including the
// sync-group factor.
func (t *Track) PlaybackSpeed() float64 {
	s := t.speed * t.syncSpeed()
	if t.cur.slot >= 0 {
		s *= t.cur.speed
	}
	return s
}

// NaturalDuration implements syncgroup.Member.
func (t *Track) NaturalDuration() float64 {
	if t.seq == nil {
		return 0
	}
	if p := t.seq.Params(); p != nil {
		return p.Duration
	}
	return 0
}

// SyncMode implements syncgroup.Member.
func (t *Track) SyncMode() syncgroup.Mode {
	if t.seq == nil {
		return 0
	}
	return t.seq.SyncMode
}

// SetSync implements syncgroup.Member. It may be called without holding the
// track's list lock.
func (t *Track) SetSync(st *syncgroup.State) { t.sync.Store(st) }

func (t *Track) syncSpeed() float64 {
	if st := t.sync.Load(); st != nil && st.Speed > 0 {
		return st.Speed
	}
	return 1
}

// UpdateTrackData installs new parameters and a new fade target. A rising
// target fades in over FadeIn, a falling one out over FadeOut. It returns
// false, after requesting the clip loads, when p has nothing that could
// play. A track that never played is left untouched then; one that did
// keeps its current clips and fades out.
func (t *Track) UpdateTrackData(p *sequence.Params, fade float64) bool {
	if p == nil || t.seq == nil {
		return false
	}

	if t.params == nil || p.ClipsVersion != t.clipsVer {
		clips := t.resolve(p.Clips)
		if !playable(clips) {
			if t.params != nil {
				t.setTarget(0, p.FadeOut)
			}
			return false
		}
		t.setClips(clips, p.ClipsVersion)
	}

	// clips that failed after they were picked up
	if !playable(t.clips) {
		if t.params != nil {
			t.setTarget(0, p.FadeOut)
		}
		return false
	}

	if t.params == nil {
		t.volume = p.Volume
		t.speed = p.Speed
	}
	t.params = p

	fade = utils.Clamp01(fade)
	switch {
	case fade > t.target:
		t.setTarget(fade, p.FadeIn)
	case fade < t.target:
		t.setTarget(fade, p.FadeOut)
	}

	return true
}

func (t *Track) setTarget(fade, over float64) {
	if fade == t.target {
		return
	}
	t.target = fade
	t.fadeTime = over
}

func (t *Track) resolve(refs []sequence.ClipRef) []clipSlot {
	clips := make([]clipSlot, 0, len(refs))
	for _, r := range refs {
		var b *pcmcache.Buffer
		if t.buffers != nil {
			b = t.buffers.GetBuffer(r.ID)
		}
		clips = append(clips, clipSlot{ref: r, buf: b})
	}
	return clips
}

// playable reports whether at least one clip could still produce audio.
func playable(clips []clipSlot) bool {
	for _, c := range clips {
		if c.buf != nil && c.buf.State() != pcmcache.Failed {
			return true
		}
	}
	return false
}

// setClips swaps the clip list. A playing clip that is still listed keeps
// playing; one that is gone becomes an orphan faded out over FadeOut before
// the new selection starts.
func (t *Track) setClips(clips []clipSlot, version uint64) {
	old := t.clips
	t.clips = clips
	t.clipsVer = version
	t.pool = make([]int, 0, len(clips))

	if !t.started || t.cur.slot < 0 {
		return
	}

	id := old[t.cur.slot].ref.ID
	if i := t.slotOf(id); i >= 0 {
		t.cur.slot = i
		t.crossfading = false
		t.next.reset()
		t.scheduleNext()
		return
	}

	if t.cur.buf != nil && t.cur.buf.Usable() && !t.delaying {
		t.orphan = t.cur
		t.orphanFade = 1
		t.orphaned = true
	}
	t.cur.reset()
	t.next.reset()
	t.crossfading = false
	t.delayPending = 0
}

func (t *Track) slotOf(id string) int {
	for i, c := range t.clips {
		if c.ref.ID == id {
			return i
		}
	}
	return -1
}

// Restart rewinds a finished or playing track to its first clip.
func (t *Track) Restart() {
	t.finished = false
	t.started = false
	t.audible = false
	t.waitTicks = 0
	t.fade = 0
	t.cur.reset()
	t.next.reset()
	t.orphan.reset()
	t.orphaned = false
	t.crossfading = false
	t.delaying = false
	t.delayPending = 0
	t.padding = false
	t.fadingIn = false
	t.pool = t.pool[:0]
}
