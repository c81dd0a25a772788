// Package periodogram computes Lomb-Scargle power spectra of irregularly
// sampled, error-weighted light curves and selects candidate peaks.
//
// The estimator is the generalized Lomb-Scargle periodogram (Zechmeister &
// Kürster 2009): a sinusoid plus a floating offset is fitted at every trial
// frequency with weights 1/σ², and the power is reported with the standard
// normalization
//
//	P(f) = 1 - χ²(f) / χ²₀
//
// where χ²₀ is the weighted residual of a constant model. Power is therefore
// dimensionless and lies in [0, 1].
//
// The automatic frequency grid oversamples the natural resolution 1/T of an
// observation baseline T:
//
//	df   = 1 / (T * SamplesPerPeak)
//	fmin = df / 2
//	fmax = NyquistFactor * N / (2T)
//
// Compute evaluates every sample at every grid frequency, so a run costs
// O(N * Nf). With the default grid Nf grows as N * SamplesPerPeak *
// NyquistFactor / 2, making the whole periodogram quadratic in N: a full TESS
// sector (N near 18000, Nf near 225000) takes tens of seconds. The
// extirpolation approximation of Press & Rybicki is not implemented.
package periodogram
