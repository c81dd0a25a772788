package models

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when the time, flux and error channels of a
// light curve do not have the same length.
var ErrLengthMismatch = errors.New("light curve channels differ in length")

// LightCurve holds one star's brightness record as three aligned channels.
// Index i of Time, Flux and FluxErr always refers to the same observation.
type LightCurve struct {
	Time    []float64 `json:"time"`     // days
	Flux    []float64 `json:"flux"`     // e-/s, or dimensionless once normalized
	FluxErr []float64 `json:"flux_err"` // same unit as Flux
}

// NewLightCurve builds a light curve from three channels of equal length.
func NewLightCurve(time, flux, fluxErr []float64) (*LightCurve, error) {
	if len(time) != len(flux) || len(time) != len(fluxErr) {
		return nil, fmt.Errorf("%w: time=%d flux=%d flux_err=%d",
			ErrLengthMismatch, len(time), len(flux), len(fluxErr))
	}
	return &LightCurve{Time: time, Flux: flux, FluxErr: fluxErr}, nil
}

// Len returns the number of observations.
func (lc *LightCurve) Len() int {
	if lc == nil {
		return 0
	}
	return len(lc.Time)
}

// Empty reports whether the light curve has no observations.
func (lc *LightCurve) Empty() bool {
	return lc.Len() == 0
}

// Clone returns a deep copy.
func (lc *LightCurve) Clone() *LightCurve {
	return &LightCurve{
		Time:    append([]float64(nil), lc.Time...),
		Flux:    append([]float64(nil), lc.Flux...),
		FluxErr: append([]float64(nil), lc.FluxErr...),
	}
}

// Select returns a new light curve holding the observations at idx, in order.
func (lc *LightCurve) Select(idx []int) *LightCurve {
	out := &LightCurve{
		Time:    make([]float64, len(idx)),
		Flux:    make([]float64, len(idx)),
		FluxErr: make([]float64, len(idx)),
	}
	for j, i := range idx {
		out.Time[j] = lc.Time[i]
		out.Flux[j] = lc.Flux[i]
		out.FluxErr[j] = lc.FluxErr[i]
	}
	return out
}

// Rows returns the channels in snapshot order: time, flux, flux error.
func (lc *LightCurve) Rows() [][]float64 {
	return [][]float64{lc.Time, lc.Flux, lc.FluxErr}
}
