// Package floatutils provides small floating-point helpers shared across
// the planning core.
package floatutils

import "math"

// Clip constrains value to the closed interval [min, max].
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}
