package periodogram

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// ErrInvalidSelection is returned for a non-positive peak count or a
// negative exclusion width.
var ErrInvalidSelection = errors.New("invalid peak selection options")

// tieResolution is the power difference below which two grid samples are
// ranked by frequency instead. Evenly sampled data has exact aliases whose
// powers differ only by rounding.
const tieResolution = 1e-9

// SelectOptions controls peak selection.
type SelectOptions struct {
	Count          int     // number of peaks to return
	ExclusionWidth float64 // 1/day; a peak closer than this to an accepted one is skipped
}

// DefaultSelectOptions returns the selection used by the analysis: three
// peaks at least 0.1 1/day apart.
func DefaultSelectOptions() SelectOptions {
	return SelectOptions{Count: 3, ExclusionWidth: 0.1}
}

// SelectPeaks returns up to opts.Count peaks in descending power order.
// Equal powers are ordered by ascending frequency. A grid sample is rejected
// when its frequency lies within opts.ExclusionWidth of an accepted peak, so
// one broad spectral line yields a single peak.
func SelectPeaks(pg *models.Periodogram, opts SelectOptions) ([]models.Peak, error) {
	if opts.Count <= 0 || opts.ExclusionWidth < 0 || math.IsNaN(opts.ExclusionWidth) {
		return nil, fmt.Errorf("%w: count=%d exclusion_width=%g", ErrInvalidSelection, opts.Count, opts.ExclusionWidth)
	}

	order := make([]int, pg.Len())
	for i := range order {
		order[i] = i
	}
	// Powers equal to within tieResolution count as ties; the stable sort
	// then keeps them in ascending frequency order.
	sort.SliceStable(order, func(a, b int) bool {
		return quantize(pg.Power[order[a]]) > quantize(pg.Power[order[b]])
	})

	peaks := make([]models.Peak, 0, opts.Count)
	for _, k := range order {
		if len(peaks) == opts.Count {
			break
		}
		if excluded(peaks, pg.Frequency[k], opts.ExclusionWidth) {
			continue
		}
		peaks = append(peaks, models.Peak{
			Index:     k,
			Frequency: pg.Frequency[k],
			Refined:   refine(pg, k),
			Power:     pg.Power[k],
		})
	}
	return peaks, nil
}

func quantize(p float64) float64 {
	return math.Round(p / tieResolution)
}

func excluded(peaks []models.Peak, f, width float64) bool {
	for _, p := range peaks {
		if math.Abs(f-p.Frequency) <= width {
			return true
		}
	}
	return false
}

// refine fits a parabola through the peak sample and its neighbours and
// returns the frequency of its vertex, limited to half a grid step.
func refine(pg *models.Periodogram, k int) float64 {
	if k == 0 || k == pg.Len()-1 {
		return pg.Frequency[k]
	}

	a, b, c := pg.Power[k-1], pg.Power[k], pg.Power[k+1]
	denom := a - 2*b + c
	if denom >= 0 {
		return pg.Frequency[k]
	}

	delta := 0.5 * (a - c) / denom
	delta = math.Max(-0.5, math.Min(0.5, delta))
	step := pg.Frequency[k+1] - pg.Frequency[k]
	if delta < 0 {
		step = pg.Frequency[k] - pg.Frequency[k-1]
	}
	return pg.Frequency[k] + delta*step
}
