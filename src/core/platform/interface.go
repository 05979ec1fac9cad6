// Package platform defines the capability traits the runtime's core
// depends on instead of inline per-OS branching: a monotonic Clock, a
// discrete-line Gpio, a SerialFrameSink for Modbus-style frames, a
// NetworkNodeSink for OPC-UA-like node writes, and an EntropySource for
// key generation and provisioning. Each is injected at runtime.Init; the
// core itself has zero platform-specific code.
package platform

import "io"

// Clock reports monotonic milliseconds since an arbitrary epoch, used by
// the lifecycle engine for slot timestamps and watchdog deadlines.
type Clock interface {
	NowMillis() uint32
}

// Gpio performs a single discrete line write.
type Gpio interface {
	// WriteLine sets pin to state (0 or 1). Implementations reject any
	// other state value.
	WriteLine(pin uint8, state uint8) error
}

// SerialFrameSink delivers a framed byte sequence to an industrial serial
// transport (e.g. a Modbus-style register write).
type SerialFrameSink interface {
	WriteFrame(frame []byte) error
}

// NetworkNodeSink delivers an OPC-UA-like tagged node write.
type NetworkNodeSink interface {
	WriteNode(nodeID uint32, value float32) error
}

// EntropySource supplies cryptographically secure random bytes. It is an
// io.Reader so crypto.RandomBytes can use it directly.
type EntropySource interface {
	io.Reader
}

// Capabilities bundles the traits the runtime façade needs at construction.
type Capabilities struct {
	Clock    Clock
	Gpio     Gpio
	Serial   SerialFrameSink
	Network  NetworkNodeSink
	Entropy  EntropySource
}
