package runtime

import (
	"github.com/edgeplug/runtime/src/core/actuation"
	"github.com/edgeplug/runtime/src/core/inference"
	"github.com/edgeplug/runtime/src/core/lifecycle"
)

// Stats aggregates the counters each composed subsystem keeps, plus the
// façade's own sensor-sample and safety-trip counters.
type Stats struct {
	Inference     inference.Stats
	Actuation     actuation.Stats
	Lifecycle     lifecycle.State
	SensorSamples uint32
	SafetyTrips   uint32
}

// Stats returns a snapshot of every subsystem's counters.
func (r *Runtime) Stats() Stats {
	return Stats{
		Inference:     r.infer.Stats(),
		Actuation:     r.dispatcher.Stats(),
		Lifecycle:     r.lifecycle.State(),
		SensorSamples: r.sensorSamples,
		SafetyTrips:   r.safetyTrips,
	}
}

// ResetStats zeroes the inference and actuation counters, along with the
// façade's own sensor-sample and safety-trip counters. Lifecycle counters
// (attempts/successes/failures) are not reset — they describe the image
// store's history, not a measurement window a caller restarts.
func (r *Runtime) ResetStats() {
	r.infer.ResetStats()
	r.dispatcher.ResetStats()
	r.sensorSamples = 0
	r.safetyTrips = 0
}
