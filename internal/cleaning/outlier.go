package cleaning

import (
	"math"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// DefaultOutlierThreshold is the SAP flux (e-/s) below which samples of the
// TESS sector 11 light curve of HD 74423 (TIC 355151781) are instrumental
// dropouts. It was chosen by inspecting that light curve and is not derived
// from the data at runtime.
const DefaultOutlierThreshold = 61500.0

// RemoveOutliers drops every observation whose flux is strictly below
// threshold. Below-threshold samples are marked invalid on a private copy of
// the flux channel and then removed with FilterFinite, so lc is never modified.
// If every sample is below threshold the result is empty.
func RemoveOutliers(lc *models.LightCurve, threshold float64) *models.LightCurve {
	marked := &models.LightCurve{
		Time:    lc.Time,
		Flux:    make([]float64, lc.Len()),
		FluxErr: lc.FluxErr,
	}
	for i, f := range lc.Flux {
		if f < threshold {
			marked.Flux[i] = math.NaN()
			continue
		}
		marked.Flux[i] = f
	}
	return FilterFinite(marked)
}
