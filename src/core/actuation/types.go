// Package actuation converts a decision into zero or more framed writes
// delivered to transport collaborators: an industrial serial register
// write, an OPC-UA-like network node write, and a discrete GPIO line
// write. Each sub-operation is skipped when its target identifier is the
// zero sentinel ("not addressed"); the first sub-operation to fail aborts
// the command and returns that error, with no rollback of whatever already
// dispatched.
package actuation

import "github.com/edgeplug/runtime/src/core/status"

// Command is the runtime's actuation decision, addressed across up to
// three transports at once.
type Command struct {
	OpcuaNode  uint32
	ModbusAddr uint16
	GpioPin    uint8
	GpioState  uint8
	Value      float32
}

func newActuationError(op, reason string) error {
	return status.New(status.Actuation, op, reason)
}
