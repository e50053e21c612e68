// SPDX-License-Identifier: EPL-2.0

package requirement

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ik5/ambience/utils"
)

// State holds the named Values and Events requirements are evaluated against.
//
// A State is owned by one Manager; it is safe for concurrent use so gameplay
// code may set values from any goroutine.
type State struct {
	mu      sync.RWMutex
	values  map[string]float64
	overlay map[string]float64
	events  map[string]struct{}
	held    map[string]int

	version atomic.Uint64
}

func NewState() *State {
	return &State{
		values:  make(map[string]float64),
		overlay: make(map[string]float64),
		events:  make(map[string]struct{}),
		held:    make(map[string]int),
	}
}

// Version changes whenever anything that can affect an evaluation changes.
func (s *State) Version() uint64 { return s.version.Load() }

func (s *State) bump() { s.version.Add(1) }

// SetValue stores v clamped to [0, 1] and returns the stored value.
func (s *State) SetValue(name string, v float64) float64 {
	v = utils.Clamp01(v)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.values[name]; !ok || old != v {
		s.values[name] = v
		s.bump()
	}
	return v
}

// RemoveValue forgets name; it then reads as 0.
func (s *State) RemoveValue(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[name]; ok {
		delete(s.values, name)
		s.bump()
	}
}

// Value returns the effective value of name: the explicit value or the
// values-while-playing overlay, whichever is larger.
func (s *State) Value(name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.valueLocked(name)
}

func (s *State) valueLocked(name string) (float64, bool) {
	v, ok := s.values[name]
	if o, held := s.overlay[name]; held {
		if !ok || o > v {
			v = o
		}
		ok = true
	}
	return v, ok
}

// Values returns a copy of the explicit values.
func (s *State) Values() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.values)
}

// SetOverlay replaces the values contributed by playing tracks.
func (s *State) SetOverlay(overlay map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clamped := make(map[string]float64, len(overlay))
	for k, v := range overlay {
		clamped[k] = utils.Clamp01(v)
	}
	if maps.Equal(clamped, s.overlay) {
		return
	}
	s.overlay = clamped
	s.bump()
}

// ActivateEvent marks name active. Activating twice is a no-op.
func (s *State) ActivateEvent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[name]; !ok {
		s.events[name] = struct{}{}
		s.bump()
	}
}

func (s *State) DeactivateEvent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[name]; ok {
		delete(s.events, name)
		s.bump()
	}
}

// EventActive reports whether name is active, either explicitly or because
// a playing track holds it.
func (s *State) EventActive(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.eventLocked(name)
}

func (s *State) eventLocked(name string) bool {
	if _, ok := s.events[name]; ok {
		return true
	}
	return s.held[name] > 0
}

// Events lists explicitly active events in sorted order.
func (s *State) Events() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.events))
}

// HoldEvent records that a playing track asserts name. Holds are counted.
func (s *State) HoldEvent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.held[name]++
	if s.held[name] == 1 {
		s.bump()
	}
}

// ReleaseEvent drops one hold on name.
func (s *State) ReleaseEvent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.held[name]
	if !ok {
		return
	}
	if n <= 1 {
		delete(s.held, name)
		s.bump()
		return
	}
	s.held[name] = n - 1
}

// EvaluateValues combines ranges under mode. An empty list yields 1.
func (s *State) EvaluateValues(ranges []Range, mode Mode) float64 {
	if len(ranges) == 0 {
		return 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.evaluateValuesLocked(ranges, mode)
}

func (s *State) evaluateValuesLocked(ranges []Range, mode Mode) float64 {
	if len(ranges) == 0 {
		return 1
	}

	if mode == All {
		result := 1.0
		for _, r := range ranges {
			v, _ := s.valueLocked(r.Name)
			result = min(result, r.Evaluate(v))
		}
		return result
	}

	result := 0.0
	for _, r := range ranges {
		v, _ := s.valueLocked(r.Name)
		result = max(result, r.Evaluate(v))
	}
	if mode == None {
		return 1 - result
	}
	return result
}

// EvaluateEvents combines event names under mode. An empty list yields true.
func (s *State) EvaluateEvents(names []string, mode Mode) bool {
	if len(names) == 0 {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.evaluateEventsLocked(names, mode)
}

func (s *State) evaluateEventsLocked(names []string, mode Mode) bool {
	if len(names) == 0 {
		return true
	}

	switch mode {
	case Any:
		for _, n := range names {
			if s.eventLocked(n) {
				return true
			}
		}
		return false
	case None:
		for _, n := range names {
			if s.eventLocked(n) {
				return false
			}
		}
		return true
	default:
		for _, n := range names {
			if !s.eventLocked(n) {
				return false
			}
		}
		return true
	}
}

// Evaluate returns the activation fade of req: 0 when its events are not
// satisfied, otherwise the value fade.
func (s *State) Evaluate(req Requirement) float64 {
	if req.Empty() {
		return 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.evaluateEventsLocked(req.Events, req.EventMode) {
		return 0
	}
	return s.evaluateValuesLocked(req.Values, req.ValueMode)
}

// Explain describes why req is not fully satisfied, or returns "" if it is.
func (s *State) Explain(req Requirement) string {
	if req.Empty() {
		return ""
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var parts []string

	if !s.evaluateEventsLocked(req.Events, req.EventMode) {
		var active, inactive []string
		for _, n := range req.Events {
			if s.eventLocked(n) {
				active = append(active, n)
			} else {
				inactive = append(inactive, n)
			}
		}
		switch req.EventMode {
		case None:
			parts = append(parts, fmt.Sprintf("events must be inactive: %s", strings.Join(active, ", ")))
		case Any:
			parts = append(parts, fmt.Sprintf("none of the events active: %s", strings.Join(inactive, ", ")))
		default:
			parts = append(parts, fmt.Sprintf("events inactive: %s", strings.Join(inactive, ", ")))
		}
	}

	if f := s.evaluateValuesLocked(req.Values, req.ValueMode); f < 1 {
		var detail []string
		for _, r := range req.Values {
			v, _ := s.valueLocked(r.Name)
			c := r.Evaluate(v)
			if (req.ValueMode == None && c > 0) || (req.ValueMode != None && c < 1) {
				detail = append(detail, fmt.Sprintf("%s=%.2f gives %.2f", r.Name, v, c))
			}
		}
		parts = append(parts, fmt.Sprintf("values fade %.2f (%s): %s", f, req.ValueMode, strings.Join(detail, ", ")))
	}

	return strings.Join(parts, "; ")
}
