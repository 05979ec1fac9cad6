// Package preprocess ingests raw sensor samples, low-pass filters the
// voltage channel, forms a fixed-width window, and emits a normalized int8
// vector suitable as network input.
package preprocess

import "github.com/edgeplug/runtime/src/core/status"

// Sample is one ingested reading. Consumed once by AddSample; not retained
// past window insertion.
type Sample struct {
	Voltage   float32
	Current   float32
	Timestamp uint64
	Quality   uint8
}

// Stats summarizes a filled window.
type Stats struct {
	Mean float32
	Std  float32
	Min  float32
	Max  float32
}

// QuantizeScale is the design constant both normalize and the inference
// engine's requantization agree on.
const QuantizeScale = 64.0

// stdFloor is the minimum standard deviation normalize divides by, avoiding
// division by (near-)zero on a flat window without collapsing every flat
// window to the reference's hardcoded 1.0 — a window of values near 1.0 in
// magnitude would otherwise be normalized as if its spread were huge.
const stdFloor = 1e-6

func newNotReady(op string) error {
	return status.New(status.InvalidParam, op, "window is not ready")
}

func newInvalidConfig(op, reason string) error {
	return status.New(status.InvalidParam, op, reason)
}
