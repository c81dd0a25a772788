package models

// Periodogram is a power spectrum sampled on a strictly increasing frequency grid.
type Periodogram struct {
	Frequency []float64 // 1/day
	Power     []float64 // dimensionless, standard normalization
}

// Len returns the number of grid points.
func (p *Periodogram) Len() int {
	return len(p.Frequency)
}

// Peak is a selected spectral line.
type Peak struct {
	Index     int     `json:"index" doc:"Grid index of the peak sample"`
	Frequency float64 `json:"frequency" doc:"Grid frequency in 1/day"`
	Refined   float64 `json:"refined_frequency" doc:"Interpolated peak frequency in 1/day"`
	Power     float64 `json:"power" doc:"Lomb-Scargle power at the grid sample"`
}

// Period returns the candidate period in days.
func (p Peak) Period() float64 {
	return 1 / p.Refined
}

// Candidate is the stored summary of a peak.
type Candidate struct {
	Rank      int      `json:"rank" doc:"1-based rank by power"`
	Frequency float64  `json:"frequency" doc:"Peak frequency in 1/day"`
	Period    float64  `json:"period" doc:"Candidate period in days"`
	Power     float64  `json:"power" doc:"Lomb-Scargle power"`
	Amplitude *float64 `json:"amplitude,omitempty" doc:"Fitted sine amplitude on the folded curve"`
}

// FoldedCurve is a light curve folded on a period and ordered by phase.
type FoldedCurve struct {
	Period  float64
	Phase   []float64 // [0, Period), non-decreasing
	Flux    []float64
	FluxErr []float64 // nil when folded without errors
}

// Len returns the number of folded points.
func (f *FoldedCurve) Len() int {
	return len(f.Phase)
}

// SineParams are the parameters of amplitude*sin(2*pi*x/period) + offset.
type SineParams struct {
	Amplitude float64 `json:"amplitude"`
	Period    float64 `json:"period"`
	Offset    float64 `json:"offset"`
}
