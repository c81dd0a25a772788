// Package cleaning removes invalid samples from a light curve and normalizes
// its amplitude. Every function returns a new light curve and leaves its input
// untouched.
package cleaning

import (
	"math"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// FilterFinite keeps the observations whose flux is a finite number.
// Relative order is preserved across all three channels.
func FilterFinite(lc *models.LightCurve) *models.LightCurve {
	return filterBy(lc, func(i int) bool {
		return isFinite(lc.Flux[i])
	})
}

// FilterTime keeps the observations whose timestamp is a finite number.
func FilterTime(lc *models.LightCurve) *models.LightCurve {
	return filterBy(lc, func(i int) bool {
		return isFinite(lc.Time[i])
	})
}

// FilterErrors keeps the observations whose flux error is finite and positive.
// The periodogram weights each sample by 1/err², so anything else is unusable.
func FilterErrors(lc *models.LightCurve) *models.LightCurve {
	return filterBy(lc, func(i int) bool {
		return isFinite(lc.FluxErr[i]) && lc.FluxErr[i] > 0
	})
}

func filterBy(lc *models.LightCurve, keep func(i int) bool) *models.LightCurve {
	idx := make([]int, 0, lc.Len())
	for i := 0; i < lc.Len(); i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return lc.Select(idx)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
