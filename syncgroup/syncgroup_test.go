// SPDX-License-Identifier: EPL-2.0

package syncgroup

import (
	"errors"
	"math"
	"testing"
)

type fakeMember struct {
	d     float64
	mode  Mode
	state *State
	calls int
}

func (f *fakeMember) NaturalDuration() float64 { return f.d }
func (f *fakeMember) SyncMode() Mode           { return f.mode }

func (f *fakeMember) SetSync(st *State) {
	f.state = st
	f.calls++
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSpeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d, l float64
		mode Mode
		want float64
	}{
		{"repeat squeeze rounds loops up", 5, 7, Repeat | Squeeze, 10.0 / 7},
		{"repeat stretch rounds loops down", 5, 7, Repeat | Stretch, 5.0 / 7},
		{"repeat fit rounds to nearest", 5, 7, Repeat | Fit, 5.0 / 7},
		{"repeat fit rounds up past half", 4, 7, Repeat | Fit, 8.0 / 7},
		{"repeat only keeps speed", 5, 7, Repeat, 1},
		{"repeat exact fit", 3.5, 7, Repeat | Fit, 1},
		{"repeat stretch longer than group keeps speed", 9, 7, Repeat | Stretch, 1},
		{"repeat squeeze longer than group plays one loop", 9, 7, Repeat | Squeeze, 9.0 / 7},
		{"once stretch", 5, 7, Stretch, 5.0 / 7},
		{"once squeeze wrong direction", 5, 7, Squeeze, 1},
		{"once squeeze", 9, 7, Squeeze, 9.0 / 7},
		{"once no fit", 5, 7, 0, 1},
		{"zero duration", 0, 7, Fit, 1},
		{"zero length", 5, 0, Fit, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Speed(tt.d, tt.l, tt.mode); !near(got, tt.want) {
				t.Errorf("Speed(%v, %v, %v) = %v, want %v", tt.d, tt.l, tt.mode, got, tt.want)
			}
		})
	}
}

func TestLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		d     []float64
		modes []Mode
		want  float64
	}{
		{"fixed beats longer stretchable", []float64{5, 9}, []Mode{Repeat, Repeat | Stretch}, 5},
		{"longest fixed", []float64{5, 7}, []Mode{Repeat | Squeeze, Repeat}, 7},
		{"all stretchable", []float64{5, 9}, []Mode{Stretch, Fit}, 9},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		if got := Length(tt.d, tt.modes); got != tt.want {
			t.Errorf("%s: Length = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCoordinator_FiveAndSeven(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(nil)
	short := &fakeMember{d: 5, mode: Repeat | Squeeze}
	long := &fakeMember{d: 7, mode: Repeat}

	c.Join("drums", short)
	c.Join("drums", long)

	g, ok := c.Group("drums")
	if !ok {
		t.Fatal("group not created")
	}
	if g.Length() != 7 {
		t.Fatalf("Length = %v, want 7", g.Length())
	}

	loop := short.d / short.state.Speed
	if n := 7 / loop; !near(n, math.Round(n)) {
		t.Errorf("5s member loops %v times per period, want a whole number", n)
	}
	if long.state.Speed != 1 {
		t.Errorf("7s member speed = %v, want 1", long.state.Speed)
	}
	if short.state.Length != 7 || short.state.Group != "drums" {
		t.Errorf("state = %+v", short.state)
	}
}

func TestCoordinator_SharedStartAndTeardown(t *testing.T) {
	t.Parallel()

	now := 10.0
	c := NewCoordinator(func() float64 { return now })

	a := &fakeMember{d: 4, mode: Repeat}
	b := &fakeMember{d: 2, mode: Repeat | Fit}

	c.Join("g", a)
	now = 13
	c.Join("g", b)

	if a.state.Start != 10 || b.state.Start != 10 {
		t.Errorf("starts = %v, %v; want shared 10", a.state.Start, b.state.Start)
	}

	c.Join("g", b)
	if g, _ := c.Group("g"); g.Len() != 2 {
		t.Errorf("duplicate join changed membership to %d", g.Len())
	}

	c.Leave("g", a)
	if a.state != nil {
		t.Error("leaving member kept its sync state")
	}
	c.Leave("g", b)
	if _, ok := c.Group("g"); ok {
		t.Error("empty group not torn down")
	}
	if len(c.Names()) != 0 {
		t.Errorf("Names = %v, want none", c.Names())
	}

	now = 20
	c.Join("g", a)
	if a.state.Start != 20 {
		t.Errorf("recreated group start = %v, want 20", a.state.Start)
	}
}

func TestCoordinator_ResyncOnDurationChange(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(nil)
	a := &fakeMember{d: 6, mode: Repeat}
	b := &fakeMember{d: 4, mode: Repeat | Fit}
	c.Join("g", a)
	c.Join("g", b)

	a.d = 8
	c.Resync("g")

	if g, _ := c.Group("g"); g.Length() != 8 {
		t.Fatalf("Length after resync = %v, want 8", g.Length())
	}
	if !near(b.state.Speed, 1) {
		t.Errorf("4s member in 8s group speed = %v, want 1", b.state.Speed)
	}

	c.Resync("missing")
	c.Leave("missing", a)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Mode
	}{
		{"", 0},
		{"once", 0},
		{"repeat|fit", Repeat | Fit},
		{"Repeat, squeeze", Repeat | Squeeze},
		{"stretch", Stretch},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if tt.want != 0 {
			back, _ := ParseMode(got.String())
			if back != got {
				t.Errorf("ParseMode(%q.String()) = %v", got, back)
			}
		}
	}

	if _, err := ParseMode("wobble"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ParseMode(wobble) err = %v", err)
	}
}
