// SPDX-License-Identifier: EPL-2.0

package track

import (
	"math"

	"github.com/ik5/ambience/pcmcache"
	"github.com/ik5/ambience/syncgroup"
	"github.com/ik5/ambience/utils"
)

// Render adds b.Frames interleaved frames of the track into dst. It never
// allocates, blocks or decodes; clips that are still loading render as
// silence without advancing the track.
func (t *Track) Render(dst []float32, b *Block) {
	if t.params == nil || b.Rate <= 0 || b.Channels <= 0 {
		return
	}
	if len(dst) < b.Frames*b.Channels {
		return
	}

	step := 1 / float64(b.Rate)
	t.alignSync(b.Now)

	fadeDelta := rate(step, t.fadeTime)
	volDelta := rate(step, t.params.VolumeFade)
	speedDelta := rate(step, t.params.SpeedFade)

	for i := 0; i < b.Frames; i++ {
		if !t.waiting() {
			t.fade = utils.MoveToward(t.fade, t.target, fadeDelta)
			t.volume = utils.MoveToward(t.volume, t.params.Volume, volDelta)
			t.speed = utils.MoveToward(t.speed, t.params.Speed, speedDelta)
		}

		if t.finished {
			continue
		}

		out := dst[i*b.Channels : (i+1)*b.Channels]
		t.frame(out, step, t.fade*t.volume*b.GlobalVolume)
	}
}

// waiting reports whether the track has not made a sound yet and has no
// loaded clip to make it with. Envelopes hold still meanwhile.
func (t *Track) waiting() bool {
	if t.audible || t.finished {
		return false
	}
	if t.cur.slot >= 0 {
		return loading(t.cur.buf)
	}
	for _, c := range t.clips {
		if c.buf != nil && c.buf.Usable() {
			return false
		}
	}
	return true
}

func loading(b *pcmcache.Buffer) bool {
	if b == nil {
		return false
	}
	st := b.State()
	return st == pcmcache.Unloaded || st == pcmcache.Loading
}

// Filter is the delegated-output path. When ownsPCM is set the track renders
// its own clips into a cleared dst; otherwise dst already holds the streamed
// clip and the track only applies its fade and volume.
func (t *Track) Filter(dst []float32, b *Block, ownsPCM bool) {
	n := b.Frames * b.Channels
	if len(dst) < n {
		return
	}

	if ownsPCM {
		clear(dst[:n])
		t.Render(dst, b)
		return
	}

	if t.params == nil || b.Rate <= 0 {
		clear(dst[:n])
		return
	}

	step := 1 / float64(b.Rate)
	fadeDelta := rate(step, t.fadeTime)
	volDelta := rate(step, t.params.VolumeFade)
	speedDelta := rate(step, t.params.SpeedFade)

	for i := 0; i < b.Frames; i++ {
		t.fade = utils.MoveToward(t.fade, t.target, fadeDelta)
		t.volume = utils.MoveToward(t.volume, t.params.Volume, volDelta)
		t.speed = utils.MoveToward(t.speed, t.params.Speed, speedDelta)

		g := float32(0)
		if !t.finished {
			g = float32(t.fade * t.volume * b.GlobalVolume)
			t.audible = true
		}
		for c := range b.Channels {
			dst[i*b.Channels+c] *= g
		}
	}
	t.started = true
}

// rate converts a full-scale duration into a per-frame delta; a zero
// duration jumps.
func rate(step, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return step / duration
}

func (t *Track) frame(out []float32, step, gain float64) {
	if t.orphaned {
		t.renderOrphan(out, step, gain)
		return
	}

	if t.delaying {
		if t.delayLeft > 0 {
			t.delayLeft -= step
			t.groupPos += step
			return
		}
		t.delaying = false
		if !t.padding && t.params.DelayFade > 0 {
			t.fadingIn = true
			t.fadeInElapsed = 0
		}
		t.padding = false
	}

	if !t.started {
		if !t.start() {
			return
		}
		if t.delaying {
			return
		}
	}

	// bounded skip over failed or empty clips
	for range len(t.clips) + 1 {
		if t.cur.slot < 0 {
			t.advance(0)
			if t.finished || t.delaying || t.cur.slot < 0 {
				return
			}
		}

		buf := t.cur.buf
		switch {
		case buf == nil:
		case loading(buf):
			return
		case buf.Usable():
			t.play(out, step, gain, buf)
			return
		}

		if t.oneShot {
			t.finished = true
			return
		}
		t.crossfading = false
		t.advance(0)
		if t.delaying {
			return
		}
	}
}

func (t *Track) renderOrphan(out []float32, step, gain float64) {
	o := &t.orphan
	mix(out, o.buf, o.clock, gain*o.gain*t.orphanFade)

	o.clock += step * t.speed * o.speed * t.syncSpeed()
	t.groupPos += step
	if t.params.FadeOut > 0 {
		t.orphanFade -= step / t.params.FadeOut
	} else {
		t.orphanFade = 0
	}

	if t.orphanFade <= 0 || o.clock >= o.buf.Duration() {
		t.orphan.reset()
		t.orphaned = false
		t.started = false
	}
}

// play renders one frame of the current clip, handling the crossfade
// window and the clip boundary.
func (t *Track) play(out []float32, step, gain float64, buf *pcmcache.Buffer) {
	t.audible = true

	dur := buf.Duration()
	cf := t.params.Crossfade
	env := t.envelope(dur)

	w := 1.0
	if t.crossfading {
		w = utils.Clamp01((dur - t.cur.clock) / cf)
	}

	mix(out, buf, t.cur.clock, gain*t.cur.gain*w*env)

	if t.crossfading {
		if nb := t.next.buf; nb != nil && nb.Usable() {
			mix(out, nb, t.next.clock, gain*t.next.gain*(1-w))
		}
		t.next.clock += step * t.speed * t.next.speed * t.syncSpeed()
	}

	t.cur.clock += step * t.speed * t.cur.speed * t.syncSpeed()
	t.groupPos += step
	if t.fadingIn {
		t.fadeInElapsed += step
		if t.fadeInElapsed >= t.params.DelayFade {
			t.fadingIn = false
		}
	}

	if !t.crossfading && t.canCrossfade(dur) && t.cur.clock >= dur-cf {
		t.crossfading = true
		t.next.clock = t.cur.clock - (dur - cf)
	}

	if t.cur.clock >= dur {
		t.advance(t.cur.clock - dur)
	}
}

// envelope is the delay fade: the last DelayFade seconds before a rolled
// delay fade out, the first DelayFade seconds after one fade in.
func (t *Track) envelope(dur float64) float64 {
	df := t.params.DelayFade
	if df <= 0 {
		return 1
	}

	env := 1.0
	if t.delayPending > 0 {
		env = utils.Clamp01((dur - t.cur.clock) / df)
	}
	if t.fadingIn {
		env *= utils.Clamp01(t.fadeInElapsed / df)
	}
	return env
}

func (t *Track) canCrossfade(dur float64) bool {
	cf := t.params.Crossfade
	switch {
	case cf <= 0 || cf >= dur:
		return false
	case t.oneShot || t.delayPending > 0 || t.passEnding && t.syncLength() > 0:
		return false
	case t.next.slot < 0 || t.next.buf == nil || !t.next.buf.Usable():
		return false
	}
	return true
}

func mix(out []float32, buf *pcmcache.Buffer, clock, gain float64) {
	if gain == 0 {
		return
	}
	// the tail between the last sample and the clip end holds the last sample
	pos := min(clock*float64(buf.SampleRate()), float64(buf.Frames()-1))
	g := float32(gain)
	for c := range out {
		out[c] += utils.SampleCubic(buf.Channel(c), pos) * g
	}
}

// start begins the first clip, rolling an initial delay for one-shots.
func (t *Track) start() bool {
	if len(t.clips) == 0 {
		return false
	}

	t.started = true
	t.refill()
	t.begin(t.take(), 0)

	if t.oneShot {
		if d := t.rollDelay(); d > 0 {
			t.delaying = true
			t.delayLeft = d
			t.delayPending = 0
		}
	}
	return true
}

// advance moves to the scheduled next clip at a clip boundary.
func (t *Track) advance(carry float64) {
	if t.oneShot {
		t.finished = true
		return
	}

	if t.crossfading {
		t.crossfading = false
		next := t.next
		t.cur = next
		t.next.reset()
		t.afterBegin()
		return
	}

	var pause float64
	padding := false
	if t.delayPending > 0 {
		pause = t.delayPending
	} else if t.passEnding {
		if pad := t.syncPad(); pad > 0 {
			pause, padding = pad, true
		}
	}

	slot := t.next.slot
	if slot < 0 {
		if len(t.pool) == 0 {
			t.refill()
		}
		slot = t.take()
	}

	if pause > 0 {
		carry = 0
	}
	t.begin(slot, carry)

	if pause > 0 {
		t.delaying = true
		t.delayLeft = pause
		t.padding = padding
	}
}

// begin makes slot the current clip at clock carry and schedules the next.
func (t *Track) begin(slot int, carry float64) {
	if slot < 0 || slot >= len(t.clips) {
		t.cur.reset()
		return
	}
	t.cur = t.voiceFor(slot)
	t.cur.clock = carry
	t.next.reset()
	t.afterBegin()
}

func (t *Track) afterBegin() {
	t.passEnding = len(t.pool) == 0
	t.scheduleNext()
	t.delayPending = t.rollDelay()
}

func (t *Track) scheduleNext() {
	if t.oneShot || len(t.clips) == 0 {
		t.next.reset()
		return
	}
	if len(t.pool) == 0 {
		t.refill()
	}
	t.next = t.voiceFor(t.take())
}

func (t *Track) voiceFor(slot int) voice {
	if slot < 0 || slot >= len(t.clips) {
		return voice{slot: -1}
	}
	c := t.clips[slot]
	return voice{
		slot:  slot,
		buf:   c.buf,
		gain:  c.ref.Gain * t.roll(t.params.RandomizeVolume, t.params.VolumeRandom.Min, t.params.VolumeRandom.Max),
		speed: t.roll(t.params.RandomizeSpeed, t.params.SpeedRandom.Min, t.params.SpeedRandom.Max),
	}
}

func (t *Track) roll(enabled bool, lo, hi float64) float64 {
	if !enabled || (lo == 0 && hi == 0) {
		return 1
	}
	f := lo + t.rng.Float64()*(hi-lo)
	if f <= 0 {
		return 1
	}
	return f
}

func (t *Track) rollDelay() float64 {
	p := t.params
	if p.DelayChance <= 0 || p.DelayMax <= 0 {
		return 0
	}
	if t.rng.Float64()*100 >= p.DelayChance {
		return 0
	}
	return p.DelayMin + t.rng.Float64()*(p.DelayMax-p.DelayMin)
}

// refill starts a new pass with every clip.
func (t *Track) refill() {
	t.pool = t.pool[:0]
	for i := range t.clips {
		t.pool = append(t.pool, i)
	}
}

// take draws the next clip of the pass. Randomised order is a weighted draw
// without replacement that avoids repeating the clip just played.
func (t *Track) take() int {
	if len(t.pool) == 0 {
		return -1
	}

	idx := 0
	if t.params.RandomizeOrder && len(t.pool) > 1 {
		idx = t.weightedPick()
	}

	slot := t.pool[idx]
	copy(t.pool[idx:], t.pool[idx+1:])
	t.pool = t.pool[:len(t.pool)-1]
	return slot
}

func (t *Track) weightedPick() int {
	avoid := t.cur.slot

	var total float64
	for _, s := range t.pool {
		if s != avoid {
			total += t.clips[s].ref.EffectiveWeight()
		}
	}
	if total <= 0 {
		return 0
	}

	r := t.rng.Float64() * total
	last := 0
	for i, s := range t.pool {
		if s == avoid {
			continue
		}
		last = i
		r -= t.clips[s].ref.EffectiveWeight()
		if r < 0 {
			return i
		}
	}
	return last
}

func (t *Track) syncLength() float64 {
	if st := t.sync.Load(); st != nil {
		return st.Length
	}
	return 0
}

// syncPad is the silence needed at the end of a pass to land on the next
// group boundary. Repeating members only pad when another pass would not fit
// before the boundary.
func (t *Track) syncPad() float64 {
	st := t.sync.Load()
	if st == nil || st.Length <= 0 {
		return 0
	}

	eps := 2.0 / 48000
	pos := math.Mod(t.groupPos, st.Length)
	remaining := st.Length - pos
	if remaining < eps || pos < eps {
		return 0
	}

	if st.Mode.Has(syncgroup.Repeat) {
		pass := t.params.Duration / t.syncSpeed()
		if pass > 0 && pass <= remaining+eps {
			return 0
		}
	}
	return remaining
}

// alignSync fast-forwards the track the first time it sees a group, so it
// lands in phase with members already playing.
func (t *Track) alignSync(now float64) {
	st := t.sync.Load()
	if st == nil {
		t.aligned = false
		return
	}
	if t.aligned && t.alignedStart == st.Start {
		return
	}
	if t.seek(now-st.Start, st) {
		t.aligned = true
		t.alignedStart = st.Start
	}
}

// seek positions the track g seconds into its group period. It fails while
// clip durations are still unknown.
func (t *Track) seek(g float64, st *syncgroup.State) bool {
	if g < 0 || len(t.clips) == 0 {
		return false
	}
	if st.Length > 0 {
		g = math.Mod(g, st.Length)
	}
	t.groupPos = g

	pass := t.params.Duration / st.Speed
	if pass <= 0 {
		return false
	}

	t.orphan.reset()
	t.orphaned = false
	t.crossfading = false
	t.delaying = false
	t.started = true

	if g >= pass {
		if !st.Mode.Has(syncgroup.Repeat) {
			t.refill()
			t.begin(t.take(), 0)
			if st.Length > g {
				t.delaying = true
				t.delayLeft = st.Length - g
				t.padding = true
			}
			return true
		}
		g = math.Mod(g, pass)
	}

	// clip time into the pass
	pos := g * t.params.Speed * st.Speed
	cf := t.params.Crossfade

	t.refill()
	if t.params.RandomizeOrder {
		t.begin(t.take(), 0)
		if d := duration(t.cur.buf); d > 0 {
			t.cur.clock = math.Mod(pos, d)
		}
		return true
	}

	for len(t.pool) > 0 {
		slot := t.take()
		d := duration(t.clips[slot].buf)
		if pos < d || len(t.pool) == 0 {
			t.begin(slot, min(pos, d))
			return true
		}
		if d > cf {
			pos -= d - cf
		} else {
			pos -= d
		}
	}
	return true
}

func duration(b *pcmcache.Buffer) float64 {
	if b == nil {
		return 0
	}
	return b.Duration()
}
