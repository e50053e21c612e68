// SPDX-License-Identifier: EPL-2.0

package sequence

import "errors"

var (
	ErrNoClips          = errors.New("sequence has no clips")
	ErrEmptyClipID      = errors.New("clip reference has no id")
	ErrUnknownClipEdit  = errors.New("unknown clip edit")
	ErrBadDelayChance   = errors.New("delay chance outside 0..100")
	ErrBadDelayRange    = errors.New("delay min exceeds max")
	ErrNegativeDuration = errors.New("negative duration")
	ErrBadRandomRange   = errors.New("random range min exceeds max")
	ErrUnnamedSequence  = errors.New("sequence has no name")
)
