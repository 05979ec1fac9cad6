package lifecycle

import (
	"encoding/binary"

	"github.com/edgeplug/runtime/src/core/storage"
)

// SlotMagic identifies a valid slot metadata record. The reference's
// "0xEDGEPLUG" is not representable as hex (G is not a hex digit); this
// module fixes the ASCII bytes "EDGP" read as a little-endian u32 instead.
const SlotMagic uint32 = 0x50474445

// SlotMetadataSize is the trailing, fixed-layout record every slot carries
// after its payload (§6): magic, version, size, crc32, timestamp (4 bytes
// each), a 64-byte signature, and 32 reserved bytes.
const SlotMetadataSize = 4 + 4 + 4 + 4 + 4 + 64 + 32

// SlotMetadata is the trailing record validated before a slot is trusted.
type SlotMetadata struct {
	Magic     uint32
	Version   uint32
	Size      uint32
	CRC32     uint32
	Timestamp uint32
	Signature [64]byte
	Reserved  [32]byte
}

// EncodeSlotMetadata writes m to its 116-byte little-endian wire layout.
func EncodeSlotMetadata(m SlotMetadata) [SlotMetadataSize]byte {
	var out [SlotMetadataSize]byte
	binary.LittleEndian.PutUint32(out[0:4], m.Magic)
	binary.LittleEndian.PutUint32(out[4:8], m.Version)
	binary.LittleEndian.PutUint32(out[8:12], m.Size)
	binary.LittleEndian.PutUint32(out[12:16], m.CRC32)
	binary.LittleEndian.PutUint32(out[16:20], m.Timestamp)
	copy(out[20:84], m.Signature[:])
	copy(out[84:116], m.Reserved[:])
	return out
}

// DecodeSlotMetadata parses a 116-byte record. It does not validate the
// result — callers check Magic/Size/CRC32 themselves.
func DecodeSlotMetadata(raw []byte) (SlotMetadata, bool) {
	if len(raw) != SlotMetadataSize {
		return SlotMetadata{}, false
	}
	var m SlotMetadata
	m.Magic = binary.LittleEndian.Uint32(raw[0:4])
	m.Version = binary.LittleEndian.Uint32(raw[4:8])
	m.Size = binary.LittleEndian.Uint32(raw[8:12])
	m.CRC32 = binary.LittleEndian.Uint32(raw[12:16])
	m.Timestamp = binary.LittleEndian.Uint32(raw[16:20])
	copy(m.Signature[:], raw[20:84])
	copy(m.Reserved[:], raw[84:116])
	return m, true
}

// ManifestSize is the fixed 144-byte wire layout of an in-flight update
// request (§6): four u32 fields, a 64-byte signature, a 64-byte hash.
const ManifestSize = 4 + 4 + 4 + 4 + 64 + 64

// Manifest accompanies a staged image, binding it to a hash and signature
// produced by the provisioning authority.
type Manifest struct {
	Version   uint32
	AgentID   uint32
	FlashSize uint32
	SRAMSize  uint32
	Signature [64]byte
	Hash      [64]byte
}

// EncodeManifest writes m to its 144-byte little-endian wire layout.
func EncodeManifest(m Manifest) [ManifestSize]byte {
	var out [ManifestSize]byte
	binary.LittleEndian.PutUint32(out[0:4], m.Version)
	binary.LittleEndian.PutUint32(out[4:8], m.AgentID)
	binary.LittleEndian.PutUint32(out[8:12], m.FlashSize)
	binary.LittleEndian.PutUint32(out[12:16], m.SRAMSize)
	copy(out[16:80], m.Signature[:])
	copy(out[80:144], m.Hash[:])
	return out
}

// DecodeManifest parses a 144-byte record.
func DecodeManifest(raw []byte) (Manifest, bool) {
	if len(raw) != ManifestSize {
		return Manifest{}, false
	}
	var m Manifest
	m.Version = binary.LittleEndian.Uint32(raw[0:4])
	m.AgentID = binary.LittleEndian.Uint32(raw[4:8])
	m.FlashSize = binary.LittleEndian.Uint32(raw[8:12])
	m.SRAMSize = binary.LittleEndian.Uint32(raw[12:16])
	copy(m.Signature[:], raw[16:80])
	copy(m.Hash[:], raw[80:144])
	return m, true
}

// State is the lifecycle engine's entire mutable record — one owned value,
// no hidden globals, matching the reference's process-wide state collected
// into a single struct per SPEC_FULL.md's re-architecture notes.
type State struct {
	ActiveSlot       storage.Slot
	HasActiveSlot    bool
	UpdateInProgress bool
	UpdateStartedAt  uint32
	Attempts         uint32
	Successes        uint32
	Failures         uint32
	LastSuccessAt    uint32
}

// WatchdogTimeoutMillis is the maximum time an update may remain in
// progress before watchdog_tick forces a rollback.
const WatchdogTimeoutMillis = 30_000
