// Package physics provides the geometry the game needs: spawn spans and
// baseline crossing.
package physics

import "math"

// Float64er is the subset of *rand.Rand used for placement.
type Float64er interface {
	Float64() float64
}

// RandomInSpan returns a rounded position uniformly distributed in
// [lo, width-hi], where lo and hi are the margins kept free on each side.
// When the margins leave no room, the position collapses to lo.
func RandomInSpan(r Float64er, width, lo, hi float64) float64 {
	span := width - lo - hi
	if span <= 0 {
		return lo
	}
	return math.Round(r.Float64()*span) + lo
}

// CrossesBaseline reports whether an object whose top edge is at y and whose
// height is h has its bottom edge strictly below the baseline.
func CrossesBaseline(y, h, baseline float64) bool {
	return y+h > baseline
}
