// SPDX-License-Identifier: EPL-2.0

package scene

import "errors"

var (
	ErrUnnamed           = errors.New("missing name")
	ErrDuplicateSequence = errors.New("duplicate sequence name")
	ErrUnknownSequence   = errors.New("unknown sequence")
	ErrBadVector         = errors.New("vector needs 2 or 3 numbers")
	ErrBadSpan           = errors.New("span needs 1 or 2 numbers")
	ErrUnknownShape      = errors.New("unknown zone shape")
	ErrUnknownAxes       = errors.New("unknown zone axes")
	ErrUnknownOutput     = errors.New("unknown output")
	ErrPathOrder         = errors.New("listener path is not in time order")
)
