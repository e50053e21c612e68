// SPDX-License-Identifier: EPL-2.0

package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ik5/ambience/sequence"
	"github.com/ik5/ambience/zone"
)

type document struct {
	Sequences []sequenceDoc      `yaml:"sequences"`
	Zones     []zoneDoc          `yaml:"zones"`
	Globals   []string           `yaml:"globals"`
	Values    map[string]float64 `yaml:"values"`
	Events    []string           `yaml:"events"`
	Listener  []waypointDoc      `yaml:"listener"`
}

type sequenceDoc struct {
	Name   string    `yaml:"name"`
	Clips  []clipDoc `yaml:"clips"`
	Volume *float64  `yaml:"volume"`
	Speed  *float64  `yaml:"speed"`

	RandomizeOrder  bool `yaml:"randomize_order"`
	RandomizeVolume bool `yaml:"randomize_volume"`
	VolumeRandom    span `yaml:"volume_random"`
	RandomizeSpeed  bool `yaml:"randomize_speed"`
	SpeedRandom     span `yaml:"speed_random"`

	Crossfade  float64   `yaml:"crossfade"`
	FadeIn     float64   `yaml:"fade_in"`
	FadeOut    float64   `yaml:"fade_out"`
	VolumeFade float64   `yaml:"volume_fade"`
	SpeedFade  float64   `yaml:"speed_fade"`
	Delay      *delayDoc `yaml:"delay"`
	OneShot    bool      `yaml:"one_shot"`

	Output    string        `yaml:"output"`
	Placement *placementDoc `yaml:"placement"`

	SyncGroup string `yaml:"sync_group"`
	SyncMode  string `yaml:"sync_mode"`

	Requires           requirementDoc     `yaml:"requires"`
	EventsWhilePlaying []string           `yaml:"events_while_playing"`
	ValuesWhilePlaying map[string]float64 `yaml:"values_while_playing"`
	Modifiers          []modifierDoc      `yaml:"modifiers"`
}

type delayDoc struct {
	// Chance is a percentage.
	Chance float64 `yaml:"chance"`
	Range  span    `yaml:"range"`
	Fade   float64 `yaml:"fade"`
}

type placementDoc struct {
	Angle    span `yaml:"angle"`
	Distance span `yaml:"distance"`
	Attached bool `yaml:"attached"`
}

type requirementDoc struct {
	Values    []rangeDoc `yaml:"values"`
	ValueMode string     `yaml:"value_mode"`
	Events    []string   `yaml:"events"`
	EventMode string     `yaml:"event_mode"`
}

type rangeDoc struct {
	Name       string   `yaml:"name"`
	Min        *float64 `yaml:"min"`
	Max        *float64 `yaml:"max"`
	MinFalloff float64  `yaml:"min_falloff"`
	MaxFalloff float64  `yaml:"max_falloff"`
	Invert     bool     `yaml:"invert"`
}

type modifierDoc struct {
	Name     string         `yaml:"name"`
	Requires requirementDoc `yaml:"requires"`

	Volume *float64 `yaml:"volume"`
	Speed  *float64 `yaml:"speed"`

	RandomizeOrder  *bool `yaml:"randomize_order"`
	RandomizeVolume *bool `yaml:"randomize_volume"`
	RandomizeSpeed  *bool `yaml:"randomize_speed"`

	Edit  string    `yaml:"edit"`
	Clips []clipDoc `yaml:"clips"`
}

type zoneDoc struct {
	Name      string        `yaml:"name"`
	Center    vector        `yaml:"center"`
	Shape     string        `yaml:"shape"`
	HalfSize  vector        `yaml:"half_size"`
	Radius    float64       `yaml:"radius"`
	Falloff   vector        `yaml:"falloff"`
	Axes      string        `yaml:"axes"`
	Sequences []string      `yaml:"sequences"`
	Placement *placementDoc `yaml:"placement"`
}

type waypointDoc struct {
	// At is in seconds from the start of the scene.
	At  float64 `yaml:"at"`
	Pos vector  `yaml:"pos"`
}

// clipDoc is either a bare clip id or a mapping with gain and weight.
type clipDoc sequence.ClipRef

func (c *clipDoc) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*c = clipDoc{ID: n.Value, Gain: 1}
		return nil
	}

	var raw struct {
		ID     string   `yaml:"id"`
		Gain   *float64 `yaml:"gain"`
		Weight float64  `yaml:"weight"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}

	*c = clipDoc{ID: raw.ID, Gain: 1, Weight: raw.Weight}
	if raw.Gain != nil {
		c.Gain = *raw.Gain
	}
	return nil
}

// vector is [x, y, z], [x, z] on the ground plane, or one number for all
// three axes.
type vector zone.Vec3

func (v *vector) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		*v = vector{X: f, Y: f, Z: f}
		return nil
	}

	var nums []float64
	if err := n.Decode(&nums); err != nil {
		return err
	}

	switch len(nums) {
	case 2:
		*v = vector{X: nums[0], Z: nums[1]}
	case 3:
		*v = vector{X: nums[0], Y: nums[1], Z: nums[2]}
	default:
		return fmt.Errorf("line %d: %w, got %d", n.Line, ErrBadVector, len(nums))
	}
	return nil
}

// span is [min, max] or one number for both.
type span sequence.Span

func (s *span) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		*s = span{Min: f, Max: f}
		return nil
	}

	var nums []float64
	if err := n.Decode(&nums); err != nil {
		return err
	}

	switch len(nums) {
	case 1:
		*s = span{Min: nums[0], Max: nums[0]}
	case 2:
		*s = span{Min: nums[0], Max: nums[1]}
	default:
		return fmt.Errorf("line %d: %w, got %d", n.Line, ErrBadSpan, len(nums))
	}
	return nil
}
