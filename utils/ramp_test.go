// SPDX-License-Identifier: EPL-2.0

package utils

import "testing"

func TestMoveToward(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		cur, target, delta float64
		want               float64
	}{
		{"step up", 0, 1, 0.25, 0.25},
		{"step down", 1, 0, 0.25, 0.75},
		{"no overshoot up", 0.9, 1, 0.25, 1},
		{"no overshoot down", 0.1, 0, 0.25, 0},
		{"instant when delta is zero", 0.2, 0.8, 0, 0.8},
		{"already there", 0.5, 0.5, 0.1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := MoveToward(tt.cur, tt.target, tt.delta); got != tt.want {
				t.Errorf("MoveToward(%v, %v, %v) = %v, want %v", tt.cur, tt.target, tt.delta, got, tt.want)
			}
		})
	}
}

func TestInverseLerp(t *testing.T) {
	t.Parallel()

	if got := InverseLerp(2, 4, 3); got != 0.5 {
		t.Errorf("InverseLerp(2, 4, 3) = %v, want 0.5", got)
	}
	if got := InverseLerp(2, 4, 10); got != 1 {
		t.Errorf("InverseLerp(2, 4, 10) = %v, want 1", got)
	}
	if got := InverseLerp(3, 3, 3); got != 1 {
		t.Errorf("InverseLerp(3, 3, 3) = %v, want 1", got)
	}
	if got := Clamp01(-2); got != 0 {
		t.Errorf("Clamp01(-2) = %v, want 0", got)
	}
}
