// SPDX-License-Identifier: EPL-2.0

package scene

import (
	"fmt"
	"time"

	"github.com/ik5/ambience/utils"
	"github.com/ik5/ambience/zone"
)

// Waypoint is where the listener is at a point in time.
type Waypoint struct {
	At  time.Duration
	Pos zone.Vec3
}

// Path moves the listener linearly between waypoints. Before the first
// waypoint the listener waits there, after the last it stays put.
type Path []Waypoint

func buildPath(docs []waypointDoc) (Path, error) {
	p := make(Path, len(docs))
	for i, d := range docs {
		p[i] = Waypoint{
			At:  time.Duration(d.At * float64(time.Second)),
			Pos: zone.Vec3(d.Pos),
		}
		if i > 0 && p[i].At < p[i-1].At {
			return nil, fmt.Errorf("%w: waypoint %d at %v", ErrPathOrder, i, p[i].At)
		}
	}
	return p, nil
}

// Duration is the time of the last waypoint.
func (p Path) Duration() time.Duration {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1].At
}

// At returns the listener position at t. An empty path stays at the origin.
func (p Path) At(t time.Duration) zone.Vec3 {
	switch {
	case len(p) == 0:
		return zone.Vec3{}
	case t <= p[0].At:
		return p[0].Pos
	case t >= p[len(p)-1].At:
		return p[len(p)-1].Pos
	}

	i := 1
	for p[i].At < t {
		i++
	}
	a, b := p[i-1], p[i]

	f := utils.InverseLerp(a.At.Seconds(), b.At.Seconds(), t.Seconds())
	return zone.Vec3{
		X: utils.Lerp(a.Pos.X, b.Pos.X, f),
		Y: utils.Lerp(a.Pos.Y, b.Pos.Y, f),
		Z: utils.Lerp(a.Pos.Z, b.Pos.Z, f),
	}
}
