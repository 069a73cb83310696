package domain

import "math"

// Round4 rounds half-up at the 4th decimal place. All money amounts leave
// the pricing and distribution paths through this.
func Round4(value float64) float64 {
	return math.Floor(value*10000+0.5) / 10000
}
