// SPDX-License-Identifier: EPL-2.0

// Package requirement evaluates the conditions that gate Sequences and
// Modifiers.
//
// A Requirement combines value Ranges and Event names, each under a Mode.
// Ranges yield a continuous fade in [0, 1]; events yield a boolean that,
// when false, forces the whole requirement to 0.
//
// State stores the named inputs. Values written through SetValue are
// clamped to [0, 1]; a missing value reads as 0. Playing tracks may hold
// events and overlay values on top of the explicit ones.
package requirement
