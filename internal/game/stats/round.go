package stats

import "math"

// RoundHalfUp rounds x to the nearest integer with exact halves going toward
// positive infinity: floor(x + 0.5). All derived stats and damage use it.
//
// Postcondition: RoundHalfUp(2.5) == 3, RoundHalfUp(-2.5) == -2.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
