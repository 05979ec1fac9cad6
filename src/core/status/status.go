// Package status carries the runtime's error taxonomy.
package status

import (
	"errors"
	"fmt"
)

// Kind is one of the eight error categories the runtime surfaces to callers.
// It never carries caller identity, only the shape of the failure.
type Kind int

const (
	// Ok indicates no error. Zero value so an unset Kind reads as success.
	Ok Kind = iota
	// InvalidParam is a caller contract violation: never retried, surfaced immediately.
	InvalidParam
	// Memory means a request exceeds slot or scratch capacity.
	Memory
	// AgentLoad is an envelope parse or verification failure.
	AgentLoad
	// Inference covers time budget breaches, malformed models, and unsupported layers.
	Inference
	// Actuation covers transport refusal or actuation time budget breach.
	Actuation
	// Safety marks an agent output that would violate a configured bound.
	Safety
	// HotSwap covers any failure path of the image lifecycle engine.
	HotSwap
)

func (k Kind) String() string {
	switch k {
	case Ok:
		return "Ok"
	case InvalidParam:
		return "InvalidParam"
	case Memory:
		return "Memory"
	case AgentLoad:
		return "AgentLoad"
	case Inference:
		return "Inference"
	case Actuation:
		return "Actuation"
	case Safety:
		return "Safety"
	case HotSwap:
		return "HotSwap"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with the operation name and, optionally, an underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error whose cause is a plain error carrying msg.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf("%s", msg)}
}

// Wrap builds a Status error around an existing cause.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind carried by err, or Ok if err is nil, or InvalidParam
// if err does not carry a Status (defensive default for unexpected causes).
func KindOf(err error) Kind {
	if err == nil {
		return Ok
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return InvalidParam
}
