package cleaning

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// Normalize divides the flux and flux error channels by the flux maximum.
// Both channels use the same divisor so amplitude ratios stay comparable.
func Normalize(lc *models.LightCurve) (*models.LightCurve, error) {
	if lc.Empty() {
		return nil, ErrEmptySeries
	}

	max := floats.Max(lc.Flux)
	if !isFinite(max) || max <= 0 {
		return nil, fmt.Errorf("normalize %d samples by %g: %w", lc.Len(), max, ErrZeroMaximum)
	}

	// Divide rather than scale by 1/max so the maximum maps to exactly 1.
	out := lc.Clone()
	for i := range out.Flux {
		out.Flux[i] /= max
		out.FluxErr[i] /= max
	}
	return out, nil
}
