package actuation

import (
	"math"
	"sync"
	"time"

	"github.com/edgeplug/runtime/src/core/platform"
)

// Stats summarizes dispatcher activity since construction or the last
// ResetStats.
type Stats struct {
	Count     uint32
	AvgMicros uint32
	MaxMicros uint32
}

// Dispatcher delivers an actuation Command across the serial, network, and
// GPIO transports it was constructed with.
type Dispatcher struct {
	serial       platform.SerialFrameSink
	network      platform.NetworkNodeSink
	gpio         platform.Gpio
	slaveID      uint8
	budgetMillis int

	mu          sync.Mutex
	count       uint32
	totalMicros uint64
	maxMicros   uint32
}

// NewDispatcher constructs a Dispatcher over the given transport
// collaborators, Modbus slave identifier, and per-call latency budget in
// milliseconds. Any collaborator may be nil; a nil collaborator whose
// corresponding target identifier is non-zero causes Dispatch to fail when
// that sub-operation would otherwise fire.
func NewDispatcher(serial platform.SerialFrameSink, network platform.NetworkNodeSink, gpio platform.Gpio, slaveID uint8, budgetMillis int) *Dispatcher {
	return &Dispatcher{serial: serial, network: network, gpio: gpio, slaveID: slaveID, budgetMillis: budgetMillis}
}

// Dispatch converts cmd into framed writes across the addressed transports,
// in order: serial register write, network node write, discrete GPIO
// write. Each sub-operation is skipped when its target identifier is zero.
// The first sub-operation to fail aborts the command and returns that
// error; sub-operations already dispatched are not rolled back. Wall time
// exceeding the configured budget, checked after each sub-operation and
// once more at the end, also aborts with an Actuation error; stats are not
// updated on that path.
func (d *Dispatcher) Dispatch(cmd Command) error {
	start := time.Now()
	budget := time.Duration(d.budgetMillis) * time.Millisecond

	if cmd.ModbusAddr != 0 {
		if d.serial == nil {
			return newActuationError("dispatch", "modbus_addr addressed but no serial transport configured")
		}
		frame := buildModbusFrame(d.slaveID, cmd.ModbusAddr, valueToRegister(cmd.Value))
		if err := d.serial.WriteFrame(frame); err != nil {
			return newActuationError("dispatch", "serial write failed")
		}
		if time.Since(start) > budget {
			return newActuationError("dispatch", "latency budget exceeded")
		}
	}

	if cmd.OpcuaNode != 0 {
		if d.network == nil {
			return newActuationError("dispatch", "opcua_node addressed but no network transport configured")
		}
		if err := d.network.WriteNode(cmd.OpcuaNode, cmd.Value); err != nil {
			return newActuationError("dispatch", "network node write failed")
		}
		if time.Since(start) > budget {
			return newActuationError("dispatch", "latency budget exceeded")
		}
	}

	if cmd.GpioPin != 0 {
		if cmd.GpioState > 1 {
			return newActuationError("dispatch", "gpio_state must be 0 or 1")
		}
		if d.gpio == nil {
			return newActuationError("dispatch", "gpio_pin addressed but no GPIO transport configured")
		}
		if err := d.gpio.WriteLine(cmd.GpioPin, cmd.GpioState); err != nil {
			return newActuationError("dispatch", "gpio write failed")
		}
	}

	elapsed := time.Since(start)
	if elapsed > budget {
		return newActuationError("dispatch", "latency budget exceeded")
	}
	micros := uint32(elapsed.Microseconds())

	d.mu.Lock()
	d.count++
	d.totalMicros += uint64(micros)
	if micros > d.maxMicros {
		d.maxMicros = micros
	}
	d.mu.Unlock()

	return nil
}

// Stats returns a snapshot of the dispatcher's counters.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	var avg uint32
	if d.count > 0 {
		avg = uint32(d.totalMicros / uint64(d.count))
	}
	return Stats{Count: d.count, AvgMicros: avg, MaxMicros: d.maxMicros}
}

// ResetStats zeroes the dispatcher's counters.
func (d *Dispatcher) ResetStats() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count = 0
	d.totalMicros = 0
	d.maxMicros = 0
}

// valueToRegister rounds and clamps a decision value into the 16-bit
// register domain the Modbus frame carries.
func valueToRegister(value float32) uint16 {
	rounded := math.Round(float64(value))
	if rounded < 0 {
		return 0
	}
	if rounded > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(rounded)
}
