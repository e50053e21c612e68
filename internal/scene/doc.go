// SPDX-License-Identifier: EPL-2.0

// Package scene loads ambience scenes from YAML: sequences with their
// modifiers, zones, a listener path and the initial values and events.
//
// A minimal scene:
//
//	sequences:
//	  - name: rain
//	    clips: [rain-light.ogg, rain-heavy.ogg]
//	    fade_in: 2
//	    fade_out: 4
//	zones:
//	  - name: courtyard
//	    half_size: [10, 5, 10]
//	    falloff: [5, 5, 5]
//	    sequences: [rain]
//	listener:
//	  - {at: 0, pos: [0, 0, 0]}
//	  - {at: 30, pos: [40, 0, 0]}
package scene
