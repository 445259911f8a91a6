package tracer

// accumulator tracks how many samples the converged image averages. Reset is an edge back to
// sample zero, not a separate state.
type accumulator struct {
	sampleIndex uint32
	resets      int
	pending     string
}

// reset discards the converged history before the next dispatch. Only the first reason per frame
// is kept for logging.
func (a *accumulator) reset(reason string) {
	if a.pending == "" {
		a.pending = reason
	}
	if a.sampleIndex != 0 {
		a.resets++
	}
	a.sampleIndex = 0
}

// takeReset returns and clears the reason for a reset requested since the last call.
func (a *accumulator) takeReset() string {
	r := a.pending
	a.pending = ""
	return r
}

// weights returns the blend weights for the sample about to be produced.
func (a *accumulator) weights() (prior, sample float32) {
	return BlendWeights(a.sampleIndex)
}

// advance records one more sample in the converged image.
func (a *accumulator) advance() {
	a.sampleIndex++
}

// BlendWeights returns the running-mean weights for a new sample when n samples are already
// averaged: n/(n+1) for the prior value and 1/(n+1) for the new one. With n == 0 the prior
// weight is zero, so the converged target's stale contents never leak into the image.
//
// Parameters:
//   - n: the number of samples already averaged
//
// Returns:
//   - float32: the prior weight
//   - float32: the new sample weight
func BlendWeights(n uint32) (prior, sample float32) {
	d := float64(n) + 1
	return float32(float64(n) / d), float32(1 / d)
}
