package inference_test

import (
	"testing"

	"github.com/edgeplug/runtime/src/core/config"
	"github.com/edgeplug/runtime/src/core/inference"
)

func TestQuantize_ClampsToInt8Range(t *testing.T) {
	cfg := config.QuantConfig{InScale: 1.0 / 64.0, InZero: 0}
	in := []float32{100.0, -100.0}
	out := make([]int8, 2)
	if err := inference.Quantize(cfg, in, out); err != nil {
		t.Fatalf("Quantize() failed: %v", err)
	}
	if out[0] != 127 {
		t.Errorf("out[0] = %d, want 127 (clamped)", out[0])
	}
	if out[1] != -128 {
		t.Errorf("out[1] = %d, want -128 (clamped)", out[1])
	}
}

func TestQuantize_LengthMismatch(t *testing.T) {
	cfg := config.QuantConfig{InScale: 1.0 / 64.0}
	if err := inference.Quantize(cfg, []float32{1, 2}, make([]int8, 1)); err == nil {
		t.Error("Quantize() with mismatched lengths should fail")
	}
}

func TestDequantize_LengthMismatch(t *testing.T) {
	cfg := config.QuantConfig{OutScale: 1.0 / 64.0}
	if err := inference.Dequantize(cfg, []int8{1, 2}, make([]float32, 1)); err == nil {
		t.Error("Dequantize() with mismatched lengths should fail")
	}
}

// TestRoundTrip_DequantizeOfQuantizeWithinScale checks the testable law:
// dequantize(quantize(x)) ≈ x within |err| <= scale, for values that do
// not saturate the int8 range.
func TestRoundTrip_DequantizeOfQuantizeWithinScale(t *testing.T) {
	cfg := config.QuantConfig{InScale: 1.0 / 64.0, InZero: 0, OutScale: 1.0 / 64.0, OutZero: 0}
	inputs := []float32{0, 0.4, -0.4, 1.0, -1.0, 1.3}

	quantized := make([]int8, len(inputs))
	if err := inference.Quantize(cfg, inputs, quantized); err != nil {
		t.Fatalf("Quantize() failed: %v", err)
	}
	dequantized := make([]float32, len(inputs))
	if err := inference.Dequantize(cfg, quantized, dequantized); err != nil {
		t.Fatalf("Dequantize() failed: %v", err)
	}

	for i, x := range inputs {
		err := dequantized[i] - x
		if err < 0 {
			err = -err
		}
		if err > cfg.InScale+1e-6 {
			t.Errorf("round trip of %v: |%v - %v| = %v, want <= %v", x, dequantized[i], x, err, cfg.InScale)
		}
	}
}
