// Package ema implements a single-value exponential moving average used to
// smooth per-venue fair-value sizes, grounded on the Ema usage in
// original_source/src/remote_venue_aggregator.rs (Ema::new(alpha),
// add_value, get_value() -> Option<f64>).
package ema

// EMA smooths a stream of values. The zero value is not ready to use; call
// New. GetValue returns (0, false) until the first AddValue call.
type EMA struct {
	alpha  float64
	value  float64
	primed bool
}

// New builds an EMA with the given smoothing factor in (0, 1]. Smaller alpha
// weights history more heavily; alpha == 1 makes GetValue track the latest
// value exactly.
func New(alpha float64) *EMA {
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	return &EMA{alpha: alpha}
}

// AddValue feeds one observation into the average.
func (e *EMA) AddValue(v float64) {
	if !e.primed {
		e.value = v
		e.primed = true
		return
	}
	e.value = e.alpha*v + (1-e.alpha)*e.value
}

// GetValue returns the current smoothed value, or (0, false) if no
// observation has been fed yet.
func (e *EMA) GetValue() (float64, bool) {
	if !e.primed {
		return 0, false
	}
	return e.value, true
}
