package inference

import (
	"math"

	"github.com/edgeplug/runtime/src/core/config"
)

// Quantize maps a float32 vector to int8 using cfg's affine scale/zero-point
// pair: round(x/scale) + zero, clamped to the int8 range. Grounded on the
// original engine's infer_quantize_fp32.
func Quantize(cfg config.QuantConfig, in []float32, out []int8) error {
	if len(in) != len(out) {
		return newInferenceError("quantize", "input and output lengths differ")
	}
	for i, x := range in {
		scaled := x/cfg.InScale + float32(cfg.InZero)
		q := int32(math.Round(float64(scaled)))
		out[i] = int8(clampInt32(q, -128, 127))
	}
	return nil
}

// Dequantize maps an int8 vector back to float32 using cfg's output
// scale/zero-point pair: (q - zero) * scale. Grounded on the original
// engine's infer_dequantize_int8.
func Dequantize(cfg config.QuantConfig, in []int8, out []float32) error {
	if len(in) != len(out) {
		return newInferenceError("dequantize", "input and output lengths differ")
	}
	for i, q := range in {
		out[i] = float32(int32(q)-int32(cfg.OutZero)) * cfg.OutScale
	}
	return nil
}

