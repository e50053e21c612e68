// SPDX-License-Identifier: EPL-2.0

package scene

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ik5/ambience"
	"github.com/ik5/ambience/requirement"
	"github.com/ik5/ambience/sequence"
	"github.com/ik5/ambience/syncgroup"
	"github.com/ik5/ambience/zone"
)

// Scene is a loaded scene, ready to hand to a Manager.
type Scene struct {
	// Sequences in file order.
	Sequences []*sequence.Sequence
	Zones     []*zone.Zone
	// Globals play everywhere.
	Globals []*sequence.Sequence
	Values  map[string]float64
	Events  []string

	Listener Path

	byName map[string]*sequence.Sequence
}

// LoadFile reads a scene from a YAML file.
func LoadFile(name string) (*Scene, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening scene: %w", err)
	}
	defer f.Close()

	sc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return sc, nil
}

// Load decodes a scene. Unknown keys are errors, so typos do not go
// unnoticed. An empty document is an empty scene.
func Load(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}

	return build(&doc)
}

// Sequence looks a sequence up by name.
func (s *Scene) Sequence(name string) *sequence.Sequence {
	return s.byName[name]
}

// Clips lists every clip id the scene may play, sorted.
func (s *Scene) Clips() []string {
	seen := make(map[string]bool)
	for _, seq := range s.Sequences {
		for _, c := range seq.Clips {
			seen[c.ID] = true
		}
		for _, m := range seq.Modifiers {
			for _, c := range m.Clips {
				seen[c.ID] = true
			}
		}
	}
	delete(seen, "")

	return slices.Sorted(maps.Keys(seen))
}

// Apply registers the scene's zones and global sequences with m and sets its
// initial values and events.
func (s *Scene) Apply(m *ambience.Manager) {
	for _, z := range s.Zones {
		m.RegisterZone(z)
	}
	for _, seq := range s.Globals {
		m.AddSequence(seq)
	}
	for _, name := range slices.Sorted(maps.Keys(s.Values)) {
		m.SetValue(name, s.Values[name])
	}
	for _, e := range s.Events {
		m.ActivateEvent(e)
	}
}

func build(doc *document) (*Scene, error) {
	sc := &Scene{
		Values: maps.Clone(doc.Values),
		Events: slices.Clone(doc.Events),
		byName: make(map[string]*sequence.Sequence, len(doc.Sequences)),
	}

	for i := range doc.Sequences {
		seq, err := buildSequence(&doc.Sequences[i])
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		if _, dup := sc.byName[seq.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSequence, seq.Name)
		}
		sc.byName[seq.Name] = seq
		sc.Sequences = append(sc.Sequences, seq)
	}

	for i := range doc.Zones {
		z, err := buildZone(&doc.Zones[i], sc.byName)
		if err != nil {
			return nil, fmt.Errorf("zone %d: %w", i, err)
		}
		sc.Zones = append(sc.Zones, z)
	}

	for _, name := range doc.Globals {
		seq, ok := sc.byName[name]
		if !ok {
			return nil, fmt.Errorf("globals: %w: %q", ErrUnknownSequence, name)
		}
		sc.Globals = append(sc.Globals, seq)
	}

	path, err := buildPath(doc.Listener)
	if err != nil {
		return nil, err
	}
	sc.Listener = path

	return sc, nil
}

func buildSequence(d *sequenceDoc) (*sequence.Sequence, error) {
	if d.Name == "" {
		return nil, ErrUnnamed
	}

	s := sequence.New(d.Name, clipRefs(d.Clips)...)
	if d.Volume != nil {
		s.Volume = *d.Volume
	}
	if d.Speed != nil {
		s.Speed = *d.Speed
	}

	s.RandomizeOrder = d.RandomizeOrder
	s.RandomizeVolume = d.RandomizeVolume
	s.VolumeRandom = sequence.Span(d.VolumeRandom)
	s.RandomizeSpeed = d.RandomizeSpeed
	s.SpeedRandom = sequence.Span(d.SpeedRandom)

	s.Timing = sequence.Timing{
		Crossfade:  d.Crossfade,
		FadeIn:     d.FadeIn,
		FadeOut:    d.FadeOut,
		VolumeFade: d.VolumeFade,
		SpeedFade:  d.SpeedFade,
		OneShot:    d.OneShot,
	}
	if d.Delay != nil {
		s.DelayChance = d.Delay.Chance
		s.DelayMin = d.Delay.Range.Min
		s.DelayMax = d.Delay.Range.Max
		s.DelayFade = d.Delay.Fade
	}

	switch strings.ToLower(d.Output) {
	case "", "integrated":
		s.Output = sequence.Integrated
	case "spatial":
		s.Output = sequence.Spatial
	default:
		return nil, fmt.Errorf("%s: %w: %q", d.Name, ErrUnknownOutput, d.Output)
	}
	if d.Placement != nil {
		s.Placement = placement(d.Placement)
	}

	s.SyncGroup = d.SyncGroup
	mode, err := syncgroup.ParseMode(d.SyncMode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}
	s.SyncMode = mode

	if s.Requirement, err = buildRequirement(&d.Requires); err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}
	s.EventsWhilePlaying = slices.Clone(d.EventsWhilePlaying)
	s.ValuesWhilePlaying = maps.Clone(d.ValuesWhilePlaying)

	for i := range d.Modifiers {
		mod, err := buildModifier(&d.Modifiers[i])
		if err != nil {
			return nil, fmt.Errorf("%s: modifier %d: %w", d.Name, i, err)
		}
		s.Modifiers = append(s.Modifiers, mod)
	}

	return s, nil
}

func buildModifier(d *modifierDoc) (sequence.Modifier, error) {
	edit, err := sequence.ParseClipEdit(d.Edit)
	if err != nil {
		return sequence.Modifier{}, err
	}
	req, err := buildRequirement(&d.Requires)
	if err != nil {
		return sequence.Modifier{}, err
	}

	return sequence.Modifier{
		Name:            d.Name,
		Requirement:     req,
		Volume:          d.Volume,
		Speed:           d.Speed,
		RandomizeOrder:  d.RandomizeOrder,
		RandomizeVolume: d.RandomizeVolume,
		RandomizeSpeed:  d.RandomizeSpeed,
		Edit:            edit,
		Clips:           clipRefs(d.Clips),
	}, nil
}

func buildRequirement(d *requirementDoc) (requirement.Requirement, error) {
	var r requirement.Requirement

	var err error
	if r.ValueMode, err = requirement.ParseMode(d.ValueMode); err != nil {
		return r, err
	}
	if r.EventMode, err = requirement.ParseMode(d.EventMode); err != nil {
		return r, err
	}

	for _, v := range d.Values {
		rg := requirement.Range{
			Name:       v.Name,
			Max:        1,
			MinFalloff: v.MinFalloff,
			MaxFalloff: v.MaxFalloff,
			Invert:     v.Invert,
		}
		if v.Min != nil {
			rg.Min = *v.Min
		}
		if v.Max != nil {
			rg.Max = *v.Max
		}
		r.Values = append(r.Values, rg)
	}
	r.Events = slices.Clone(d.Events)

	return r, nil
}

func buildZone(d *zoneDoc, byName map[string]*sequence.Sequence) (*zone.Zone, error) {
	if d.Name == "" {
		return nil, ErrUnnamed
	}

	z := &zone.Zone{
		Name:     d.Name,
		Center:   zone.Vec3(d.Center),
		HalfSize: zone.Vec3(d.HalfSize),
		Falloff:  zone.Vec3(d.Falloff),
	}

	switch strings.ToLower(d.Shape) {
	case "", "box":
		z.Shape = zone.Box
	case "sphere":
		z.Shape = zone.Sphere
		if d.Radius > 0 {
			z.HalfSize.X = d.Radius
		}
	default:
		return nil, fmt.Errorf("%s: %w: %q", d.Name, ErrUnknownShape, d.Shape)
	}

	switch strings.ToLower(d.Axes) {
	case "", "xyz":
		z.Axes = zone.AxisXYZ
	case "xz":
		z.Axes = zone.AxisXZ
	case "x":
		z.Axes = zone.AxisX
	default:
		return nil, fmt.Errorf("%s: %w: %q", d.Name, ErrUnknownAxes, d.Axes)
	}

	if d.Placement != nil {
		z.Placement = placement(d.Placement)
	}

	for _, name := range d.Sequences {
		seq, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w: %q", d.Name, ErrUnknownSequence, name)
		}
		z.Sequences = append(z.Sequences, seq)
	}

	return z, nil
}

func clipRefs(docs []clipDoc) []sequence.ClipRef {
	refs := make([]sequence.ClipRef, len(docs))
	for i, c := range docs {
		refs[i] = sequence.ClipRef(c)
	}
	return refs
}

func placement(d *placementDoc) sequence.Placement {
	return sequence.Placement{
		AngleMin:    d.Angle.Min,
		AngleMax:    d.Angle.Max,
		DistanceMin: d.Distance.Min,
		DistanceMax: d.Distance.Max,
		Attached:    d.Attached,
	}
}
