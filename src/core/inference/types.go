// Package inference executes an int8 dense/activation network over a
// model-header/layer-descriptor byte format, subject to a hard per-call
// latency budget.
package inference

import (
	"encoding/binary"

	"github.com/edgeplug/runtime/src/core/status"
)

// ModelMagic identifies the model header.
const ModelMagic uint32 = 0x4E4E5343

// HeaderSize is the fixed size of the model header, in bytes.
const HeaderSize = 32

// LayerDescriptorSize is the fixed size of one layer descriptor, in bytes.
const LayerDescriptorSize = 36

// RequantizeShift is the integer divisor applied to a dense layer's
// accumulator before clamping to int8, matching preprocess.QuantizeScale.
const RequantizeShift = 64

// LayerType enumerates the layer kinds a model may declare. This ordering
// is the spec's data model, not the C reference's (which numbers
// CONV=1, DENSE=2, ACTIVATION=3, POOL=4) — this runtime's wire contract is
// its own, not bound to interoperate with the reference's encoding.
type LayerType uint32

const (
	LayerDense LayerType = iota
	LayerActivation
	LayerConv
	LayerPool
)

func (t LayerType) String() string {
	switch t {
	case LayerDense:
		return "Dense"
	case LayerActivation:
		return "Activation"
	case LayerConv:
		return "Conv"
	case LayerPool:
		return "Pool"
	default:
		return "Unknown"
	}
}

// ActivationType enumerates the activation functions a Dense or Activation
// layer may declare.
type ActivationType uint32

const (
	ActivationNone ActivationType = iota
	ActivationReLU
	ActivationSigmoid
)

// Header is the model's fixed 32-byte preamble.
type Header struct {
	Magic            uint32
	Version          uint32
	InputSize        uint32
	OutputSize       uint32
	LayerCount       uint32
	WeightsOffset    uint32
	BiasOffset       uint32
	ActivationOffset uint32
}

// LayerDescriptor describes one layer in declaration order.
type LayerDescriptor struct {
	Type             LayerType
	InputSize        uint32
	OutputSize       uint32
	WeightsOffset    uint32
	BiasOffset       uint32
	ActivationType   ActivationType
	Padding          uint32
	Stride           uint32
	KernelSize       uint32
}

func decodeHeader(b []byte) Header {
	return Header{
		Magic:            binary.LittleEndian.Uint32(b[0:4]),
		Version:          binary.LittleEndian.Uint32(b[4:8]),
		InputSize:        binary.LittleEndian.Uint32(b[8:12]),
		OutputSize:       binary.LittleEndian.Uint32(b[12:16]),
		LayerCount:       binary.LittleEndian.Uint32(b[16:20]),
		WeightsOffset:    binary.LittleEndian.Uint32(b[20:24]),
		BiasOffset:       binary.LittleEndian.Uint32(b[24:28]),
		ActivationOffset: binary.LittleEndian.Uint32(b[28:32]),
	}
}

func decodeLayerDescriptor(b []byte) LayerDescriptor {
	return LayerDescriptor{
		Type:           LayerType(binary.LittleEndian.Uint32(b[0:4])),
		InputSize:      binary.LittleEndian.Uint32(b[4:8]),
		OutputSize:     binary.LittleEndian.Uint32(b[8:12]),
		WeightsOffset:  binary.LittleEndian.Uint32(b[12:16]),
		BiasOffset:     binary.LittleEndian.Uint32(b[16:20]),
		ActivationType: ActivationType(binary.LittleEndian.Uint32(b[20:24])),
		Padding:        binary.LittleEndian.Uint32(b[24:28]),
		Stride:         binary.LittleEndian.Uint32(b[28:32]),
		KernelSize:     binary.LittleEndian.Uint32(b[32:36]),
	}
}

func newAgentLoadError(op, reason string) error {
	return status.New(status.AgentLoad, op, reason)
}

func newInferenceError(op, reason string) error {
	return status.New(status.Inference, op, reason)
}
