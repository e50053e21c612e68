// SPDX-License-Identifier: EPL-2.0

// Package sequence holds authored Sequences and resolves their effective
// parameters.
//
// A Sequence is edited as plain data. Recompute folds in the Modifiers
// attached to it: continuous overrides such as volume and speed blend
// linearly by each modifier's activation, while clip-list edits and
// randomisation toggles switch as a step once activation reaches
// StepThreshold. The result is published as an immutable Params snapshot
// that tracks read without locking.
package sequence
