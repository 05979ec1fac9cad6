package inference

import (
	"sync"
	"time"
)

// Stats summarizes inference engine activity since construction or the
// last ResetStats.
type Stats struct {
	Count          uint32
	AvgMicros      uint32
	MaxMicros      uint32
}

// Engine runs a loaded Model over int8 vectors, enforcing a per-call
// latency budget measured with the wall clock.
type Engine struct {
	budgetMicros int

	mu          sync.Mutex
	model       *Model
	scratchA    []int8
	scratchB    []int8
	count       uint32
	totalMicros uint64
	maxMicros   uint32
}

// NewEngine constructs an Engine with the given per-call latency budget, in
// microseconds.
func NewEngine(budgetMicros int) *Engine {
	return &Engine{budgetMicros: budgetMicros}
}

// LoadModel parses and installs a model, replacing any previously loaded
// model and resetting scratch buffer sizing. It does not reset stats.
func (e *Engine) LoadModel(bytes []byte) error {
	model, err := ParseModel(bytes)
	if err != nil {
		return err
	}

	scratch := int(model.Header.InputSize)
	for _, l := range model.Layers {
		if int(l.OutputSize) > scratch {
			scratch = int(l.OutputSize)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.model = model
	e.scratchA = make([]int8, scratch)
	e.scratchB = make([]int8, scratch)
	return nil
}

// IsModelLoaded reports whether a model has been installed.
func (e *Engine) IsModelLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model != nil
}

// InputSize returns the loaded model's input_size, or 0 if no model is loaded.
func (e *Engine) InputSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return 0
	}
	return int(e.model.Header.InputSize)
}

// OutputSize returns the loaded model's output_size, or 0 if no model is loaded.
func (e *Engine) OutputSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return 0
	}
	return int(e.model.Header.OutputSize)
}

// Run executes the loaded model over input, writing output.
//
// Preconditions: a model is loaded, len(input) == header.InputSize, and
// len(output) >= header.OutputSize. Per-call wall time exceeding the
// configured budget aborts with an Inference error instead of returning
// partial output; the stats counters are left untouched on that path.
func (e *Engine) Run(input []int8, output []int8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model == nil {
		return newInferenceError("run", "no model loaded")
	}
	h := e.model.Header
	if len(input) != int(h.InputSize) {
		return newInferenceError("run", "input length does not match model input_size")
	}
	if len(output) < int(h.OutputSize) {
		return newInferenceError("run", "output capacity smaller than model output_size")
	}

	start := time.Now()

	cur, next := e.scratchA, e.scratchB
	copy(cur, input)
	curLen := len(input)

	var runErr error
	for _, layer := range e.model.Layers {
		switch layer.Type {
		case LayerDense:
			curLen, runErr = runDense(e.model, layer, cur[:curLen], next)
		case LayerActivation:
			curLen, runErr = runActivation(layer, cur[:curLen], next)
		default:
			runErr = newInferenceError("run", "unsupported layer type: "+layer.Type.String())
		}
		if runErr != nil {
			return runErr
		}
		cur, next = next, cur

		elapsed := time.Since(start)
		if elapsed > budgetDuration(e.budgetMicros) {
			return newInferenceError("run", "latency budget exceeded")
		}
	}

	elapsed := time.Since(start)
	if elapsed > budgetDuration(e.budgetMicros) {
		return newInferenceError("run", "latency budget exceeded")
	}

	copy(output, cur[:curLen])

	micros := uint32(elapsed.Microseconds())
	e.count++
	e.totalMicros += uint64(micros)
	if micros > e.maxMicros {
		e.maxMicros = micros
	}

	return nil
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var avg uint32
	if e.count > 0 {
		avg = uint32(e.totalMicros / uint64(e.count))
	}
	return Stats{Count: e.count, AvgMicros: avg, MaxMicros: e.maxMicros}
}

// ResetStats zeroes the engine's counters without touching the loaded model.
func (e *Engine) ResetStats() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.count = 0
	e.totalMicros = 0
	e.maxMicros = 0
}

func budgetDuration(micros int) time.Duration {
	return time.Duration(micros) * time.Microsecond
}

func runDense(m *Model, layer LayerDescriptor, input []int8, output []int8) (int, error) {
	weights := m.weights(layer)
	bias := m.bias(layer)
	out := int(layer.OutputSize)
	in := int(layer.InputSize)
	if len(input) != in {
		return 0, newInferenceError("run", "dense layer input size mismatch")
	}

	for j := 0; j < out; j++ {
		acc := bias[j]
		for i := 0; i < in; i++ {
			acc += int32(input[i]) * int32(weights[i*out+j])
		}
		acc = applyActivation(ActivationType(layer.ActivationType), acc)
		acc /= RequantizeShift
		output[j] = int8(clampInt32(acc, -128, 127))
	}
	return out, nil
}

func runActivation(layer LayerDescriptor, input []int8, output []int8) (int, error) {
	for i, v := range input {
		acc := applyActivation(layer.ActivationType, int32(v))
		output[i] = int8(clampInt32(acc, -128, 127))
	}
	return len(input), nil
}

func applyActivation(kind ActivationType, v int32) int32 {
	switch kind {
	case ActivationReLU:
		if v < 0 {
			return 0
		}
		return v
	case ActivationSigmoid:
		if v > 0 {
			return 127
		}
		return -128
	default:
		return v
	}
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
