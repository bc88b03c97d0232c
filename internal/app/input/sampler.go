// Package input provides edge-triggered sampling of the trigger key.
package input

// Probe reports whether the trigger key is physically held right now.
// Implementations must be callable from the engine loop at the polling
// cadence without blocking.
type Probe interface {
	Held() bool
	Close()
}

// Sampler turns a held-state probe into one rising edge per continuous
// press. Holding the key does not auto-repeat: the latch stays set until a
// release is observed. A press released and re-pressed within one polling
// interval reads as a single press; the cadence is far finer than human
// press timing, so that is accepted.
type Sampler struct {
	probe Probe
	held  bool
}

// NewSampler creates a sampler over the given probe.
func NewSampler(probe Probe) *Sampler {
	return &Sampler{probe: probe}
}

// PollEdge samples the probe once and reports whether a rising edge
// occurred since the previous call.
func (s *Sampler) PollEdge() bool {
	held := s.probe.Held()
	edge := held && !s.held
	s.held = held
	return edge
}
