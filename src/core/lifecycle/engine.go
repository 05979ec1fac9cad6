// Package lifecycle implements the dual-slot agent image store: integrity
// checks, signature-anchored activation, atomic switch, and watchdog-driven
// rollback. It owns the one piece of mutable process-wide state the runtime
// has — which slot is active — as a single value with explicit Init, never
// a package-level global.
package lifecycle

import (
	"crypto/ed25519"
	"sync"

	"github.com/edgeplug/runtime/src/core/crypto"
	"github.com/edgeplug/runtime/src/core/platform"
	"github.com/edgeplug/runtime/src/core/status"
	"github.com/edgeplug/runtime/src/core/storage"
)

// Engine is the Image Lifecycle Engine. The runtime's own entry points are
// single-threaded (SPEC_FULL.md §5), but Engine serializes callers with a
// mutex anyway,
// since nothing prevents a host from driving it from more than one
// goroutine and a torn activation is the one failure mode this package
// exists to prevent.
type Engine struct {
	store    storage.SlotStore
	clock    platform.Clock
	pubKey   ed25519.PublicKey
	slotSize int

	mu    sync.Mutex
	state State
}

// NewEngine constructs an Engine. slotSize is S_slot; pubKey is the single
// pinned public key installed at provisioning time (SPEC_FULL.md's
// resolution of the public-key Open Question).
func NewEngine(store storage.SlotStore, clock platform.Clock, pubKey ed25519.PublicKey, slotSize int) *Engine {
	return &Engine{store: store, clock: clock, pubKey: pubKey, slotSize: slotSize}
}

// payloadCap is the maximum payload size a slot of this engine's size can
// hold once its trailing metadata record is reserved.
func (e *Engine) payloadCap() int {
	return e.slotSize - SlotMetadataSize
}

// Init reads both slots' metadata and deterministically selects the active
// one: the slot that validates, or — if both do — the one with the larger
// timestamp, ties broken toward slot A.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = State{}

	validA := e.isValidLocked(storage.SlotA)
	validB := e.isValidLocked(storage.SlotB)

	switch {
	case validA && validB:
		metaA, _ := e.readMetadataLocked(storage.SlotA)
		metaB, _ := e.readMetadataLocked(storage.SlotB)
		if metaB.Timestamp > metaA.Timestamp {
			e.state.ActiveSlot = storage.SlotB
		} else {
			e.state.ActiveSlot = storage.SlotA
		}
	case validA:
		e.state.ActiveSlot = storage.SlotA
	case validB:
		e.state.ActiveSlot = storage.SlotB
	default:
		return status.New(status.HotSwap, "init", "no valid slot")
	}

	e.state.HasActiveSlot = true
	return nil
}

// Active returns the active slot's payload, truncated to its recorded size.
func (e *Engine) Active() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.HasActiveSlot {
		return nil, status.New(status.HotSwap, "active", "no active slot")
	}

	meta, ok := e.readMetadataLocked(e.state.ActiveSlot)
	if !ok {
		return nil, status.New(status.HotSwap, "active", "active slot metadata unreadable")
	}

	raw, err := e.store.ReadSlot(e.state.ActiveSlot)
	if err != nil {
		return nil, status.Wrap(status.HotSwap, "active", err)
	}
	if int(meta.Size) > len(raw) {
		return nil, status.New(status.HotSwap, "active", "recorded size exceeds stored payload")
	}
	return raw[:meta.Size], nil
}

// Stage verifies payload against manifest, writes it into the inactive
// slot, re-validates the persisted copy, and — only on full success —
// commits by flipping the active slot. Any failure before commit leaves
// active() unchanged, per SPEC_FULL.md's single linearization point.
func (e *Engine) Stage(payload []byte, manifest Manifest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.UpdateInProgress {
		return status.New(status.HotSwap, "stage", "update already in progress")
	}
	if len(payload) > e.payloadCap() {
		return status.New(status.Memory, "stage", "payload exceeds slot capacity")
	}
	if int(manifest.FlashSize) != len(payload) {
		return status.New(status.InvalidParam, "stage", "manifest.flash_size does not match payload length")
	}

	e.state.UpdateInProgress = true
	e.state.UpdateStartedAt = e.clock.NowMillis()
	e.state.Attempts++

	hash := crypto.SHA512(payload)
	if hash != manifest.Hash {
		e.state.UpdateInProgress = false
		e.state.Failures++
		return status.New(status.HotSwap, "stage", "payload hash does not match manifest")
	}

	if !crypto.VerifyEd25519(hash[:], manifest.Signature[:], e.pubKey) {
		e.state.UpdateInProgress = false
		e.state.Failures++
		return status.New(status.HotSwap, "stage", "manifest signature verification failed")
	}

	target := e.inactiveSlotLocked()
	meta := SlotMetadata{
		Magic:     SlotMagic,
		Version:   manifest.Version,
		Size:      uint32(len(payload)),
		CRC32:     crypto.CRC32(payload),
		Timestamp: e.clock.NowMillis(),
		Signature: manifest.Signature,
	}

	if err := e.writeSlotLocked(target, payload, meta); err != nil {
		e.state.UpdateInProgress = false
		e.state.Failures++
		return status.Wrap(status.HotSwap, "stage", err)
	}

	if !e.isValidLocked(target) {
		e.state.UpdateInProgress = false
		e.state.Failures++
		return status.New(status.HotSwap, "stage", "persisted slot failed re-validation")
	}

	e.state.ActiveSlot = target
	e.state.HasActiveSlot = true
	e.state.UpdateInProgress = false
	e.state.Successes++
	e.state.LastSuccessAt = e.clock.NowMillis()
	return nil
}

// Rollback validates the inactive slot and, if valid, switches to it.
func (e *Engine) Rollback() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rollbackLocked()
}

func (e *Engine) rollbackLocked() error {
	previous := e.inactiveSlotLocked()
	if !e.isValidLocked(previous) {
		return status.New(status.HotSwap, "rollback", "no valid rollback target")
	}
	e.state.ActiveSlot = previous
	e.state.HasActiveSlot = true
	return nil
}

// WatchdogTick forces a rollback if an update has been in progress for
// longer than WatchdogTimeoutMillis. Must be invoked periodically by the
// host; the engine never schedules it internally.
func (e *Engine) WatchdogTick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.UpdateInProgress {
		return
	}
	elapsed := e.clock.NowMillis() - e.state.UpdateStartedAt
	if elapsed <= WatchdogTimeoutMillis {
		return
	}

	e.rollbackLocked()
	e.state.UpdateInProgress = false
	e.state.Failures++
}

// ClearSlot overwrites which with zero-length content, leaving it invalid.
func (e *Engine) ClearSlot(which storage.Slot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return status.Wrap(status.HotSwap, "clear_slot", e.writeSlotLocked(which, nil, SlotMetadata{}))
}

// SlotInfo returns the raw metadata record stored for which, regardless of
// validity.
func (e *Engine) SlotInfo(which storage.Slot) (SlotMetadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	meta, ok := e.readMetadataLocked(which)
	if !ok {
		return SlotMetadata{}, status.New(status.HotSwap, "slot_info", "slot metadata unreadable")
	}
	return meta, nil
}

// IsValid reports whether which currently holds a validated payload.
func (e *Engine) IsValid(which storage.Slot) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isValidLocked(which)
}

// State returns a copy of the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) inactiveSlotLocked() storage.Slot {
	if e.state.ActiveSlot == storage.SlotA {
		return storage.SlotB
	}
	return storage.SlotA
}

func (e *Engine) writeSlotLocked(which storage.Slot, payload []byte, meta SlotMetadata) error {
	encoded := EncodeSlotMetadata(meta)
	buf := make([]byte, len(payload)+SlotMetadataSize)
	copy(buf, payload)
	copy(buf[len(payload):], encoded[:])
	return e.store.WriteSlot(which, buf)
}

func (e *Engine) readMetadataLocked(which storage.Slot) (SlotMetadata, bool) {
	raw, err := e.store.ReadSlot(which)
	if err != nil || len(raw) < SlotMetadataSize {
		return SlotMetadata{}, false
	}
	return DecodeSlotMetadata(raw[len(raw)-SlotMetadataSize:])
}

func (e *Engine) isValidLocked(which storage.Slot) bool {
	meta, ok := e.readMetadataLocked(which)
	if !ok || meta.Magic != SlotMagic {
		return false
	}
	if int(meta.Size) > e.payloadCap() {
		return false
	}

	raw, err := e.store.ReadSlot(which)
	if err != nil || int(meta.Size) > len(raw)-SlotMetadataSize {
		return false
	}
	payload := raw[:meta.Size]
	return crypto.CRC32(payload) == meta.CRC32
}
