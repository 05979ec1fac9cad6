package inference

import "encoding/binary"

// Model is a parsed header plus its layer descriptors, holding a borrow of
// the original bytes the weights and biases are read from.
type Model struct {
	Header  Header
	Layers  []LayerDescriptor
	raw     []byte
}

// ParseModel validates the header magic, that input_size and output_size
// are non-zero, that the declared layer descriptors fit within bytes, and
// that every declared weights_offset/bias_offset range lies within bytes.
// It borrows bytes rather than copying it.
func ParseModel(bytes []byte) (*Model, error) {
	if len(bytes) < HeaderSize {
		return nil, newAgentLoadError("parse_model", "model shorter than header")
	}
	h := decodeHeader(bytes)
	if h.Magic != ModelMagic {
		return nil, newAgentLoadError("parse_model", "bad model magic")
	}
	if h.InputSize == 0 || h.OutputSize == 0 {
		return nil, newAgentLoadError("parse_model", "input_size and output_size must be non-zero")
	}

	layersEnd := HeaderSize + int(h.LayerCount)*LayerDescriptorSize
	if layersEnd < HeaderSize || layersEnd > len(bytes) {
		return nil, newAgentLoadError("parse_model", "layer descriptors do not fit in model")
	}

	layers := make([]LayerDescriptor, 0, h.LayerCount)
	for i := 0; i < int(h.LayerCount); i++ {
		start := HeaderSize + i*LayerDescriptorSize
		layer := decodeLayerDescriptor(bytes[start : start+LayerDescriptorSize])

		switch layer.Type {
		case LayerDense:
			weightsLen := int(layer.InputSize) * int(layer.OutputSize)
			if err := checkRange(bytes, layer.WeightsOffset, weightsLen); err != nil {
				return nil, err
			}
			if err := checkRange(bytes, layer.BiasOffset, 4*int(layer.OutputSize)); err != nil {
				return nil, err
			}
		case LayerActivation:
			// No weights/bias to range-check.
		case LayerConv, LayerPool:
			// Reserved: descriptor is parsed but never executed.
		default:
			return nil, newAgentLoadError("parse_model", "unrecognized layer type")
		}

		layers = append(layers, layer)
	}

	return &Model{Header: h, Layers: layers, raw: bytes}, nil
}

func checkRange(bytes []byte, offset uint32, length int) error {
	if length < 0 {
		return newAgentLoadError("parse_model", "negative weights/bias length")
	}
	end := int(offset) + length
	if end < int(offset) || end > len(bytes) {
		return newAgentLoadError("parse_model", "weights/bias range exceeds model bounds")
	}
	return nil
}

func (m *Model) weights(l LayerDescriptor) []int8 {
	n := int(l.InputSize) * int(l.OutputSize)
	return asInt8(m.raw[l.WeightsOffset : int(l.WeightsOffset)+n])
}

// bias decodes the layer's bias vector, stored as little-endian int32 per
// element (4 bytes/output), matching the original C inference engine's
// `(const int32_t*)` cast over the bias region.
func (m *Model) bias(l LayerDescriptor) []int32 {
	n := int(l.OutputSize)
	start := int(l.BiasOffset)
	out := make([]int32, n)
	for j := 0; j < n; j++ {
		out[j] = int32(binary.LittleEndian.Uint32(m.raw[start+4*j : start+4*j+4]))
	}
	return out
}

func asInt8(b []byte) []int8 {
	out := make([]int8, len(b))
	for i, v := range b {
		out[i] = int8(v)
	}
	return out
}
