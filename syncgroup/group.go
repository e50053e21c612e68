// SPDX-License-Identifier: EPL-2.0

package syncgroup

import (
	"slices"
	"sort"
)

// Member is a playing instance taking part in a group.
type Member interface {
	// NaturalDuration is one pass at the member's own effective speed.
	NaturalDuration() float64
	SyncMode() Mode
	// SetSync installs the member's share of the group, or clears it when
	// st is nil.
	SetSync(st *State)
}

// State is what a member needs to follow its group.
type State struct {
	Group  string
	Mode   Mode
	Speed  float64
	Length float64
	// Start is the shared clock reading when the group was created. A
	// member that has not aligned to this Start yet fast-forwards to
	// (now - Start) * Speed.
	Start float64
}

// Clock reads the shared timeline in seconds.
type Clock func() float64

// Group is a named set of members sharing one loop length.
type Group struct {
	name    string
	start   float64
	length  float64
	members []Member
	speeds  []float64
}

func (g *Group) Name() string    { return g.name }
func (g *Group) Start() float64  { return g.start }
func (g *Group) Length() float64 { return g.length }
func (g *Group) Len() int        { return len(g.members) }

// Speed returns the factor assigned to m, or 1 when m is not a member.
func (g *Group) Speed(m Member) float64 {
	if i := slices.Index(g.members, m); i >= 0 {
		return g.speeds[i]
	}
	return 1
}

func (g *Group) recompute() {
	durations := make([]float64, len(g.members))
	modes := make([]Mode, len(g.members))
	for i, m := range g.members {
		durations[i] = m.NaturalDuration()
		modes[i] = m.SyncMode()
	}

	g.length = Length(durations, modes)
	g.speeds = g.speeds[:0]
	for i, m := range g.members {
		s := Speed(durations[i], g.length, modes[i])
		g.speeds = append(g.speeds, s)
		m.SetSync(&State{
			Group:  g.name,
			Mode:   modes[i],
			Speed:  s,
			Length: g.length,
			Start:  g.start,
		})
	}
}

// Coordinator owns every group of one Manager. It is driven from the control
// loop only and is not safe for concurrent use.
type Coordinator struct {
	clock  Clock
	groups map[string]*Group
}

func NewCoordinator(clock Clock) *Coordinator {
	if clock == nil {
		clock = func() float64 { return 0 }
	}
	return &Coordinator{clock: clock, groups: make(map[string]*Group)}
}

// Join adds m to the named group, creating the group on first use, and
// re-derives the length and speeds of every member.
func (c *Coordinator) Join(name string, m Member) {
	if name == "" || m == nil {
		return
	}

	g, ok := c.groups[name]
	if !ok {
		g = &Group{name: name, start: c.clock()}
		c.groups[name] = g
	}
	if slices.Contains(g.members, m) {
		return
	}

	g.members = append(g.members, m)
	g.recompute()
}

// Leave removes m and tears the group down once it is empty.
func (c *Coordinator) Leave(name string, m Member) {
	g, ok := c.groups[name]
	if !ok {
		return
	}

	i := slices.Index(g.members, m)
	if i < 0 {
		return
	}
	g.members = slices.Delete(g.members, i, i+1)
	m.SetSync(nil)

	if len(g.members) == 0 {
		delete(c.groups, name)
		return
	}
	g.recompute()
}

// Resync re-derives the named group after a member's duration changed.
func (c *Coordinator) Resync(name string) {
	if g, ok := c.groups[name]; ok {
		g.recompute()
	}
}

func (c *Coordinator) Group(name string) (*Group, bool) {
	g, ok := c.groups[name]
	return g, ok
}

// Names lists live groups in sorted order.
func (c *Coordinator) Names() []string {
	names := make([]string, 0, len(c.groups))
	for n := range c.groups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
