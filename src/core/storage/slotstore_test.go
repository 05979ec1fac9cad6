package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/edgeplug/runtime/src/core/storage"
)

func TestMemStore_WriteRead(t *testing.T) {
	store := storage.NewMemStore()
	data := []byte{0x01, 0x02, 0x03}

	if err := store.WriteSlot(storage.SlotA, data); err != nil {
		t.Fatalf("WriteSlot() failed: %v", err)
	}

	got, err := store.ReadSlot(storage.SlotA)
	if err != nil {
		t.Fatalf("ReadSlot() failed: %v", err)
	}
	if len(got) != len(data) {
		t.Fatalf("ReadSlot() returned %d bytes, want %d", len(got), len(data))
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("byte %d = %#x, want %#x", i, got[i], data[i])
		}
	}
}

func TestMemStore_SlotsAreIndependent(t *testing.T) {
	store := storage.NewMemStore()
	if err := store.WriteSlot(storage.SlotA, []byte{0xAA}); err != nil {
		t.Fatalf("WriteSlot(A) failed: %v", err)
	}
	if err := store.WriteSlot(storage.SlotB, []byte{0xBB}); err != nil {
		t.Fatalf("WriteSlot(B) failed: %v", err)
	}

	a, err := store.ReadSlot(storage.SlotA)
	if err != nil || a[0] != 0xAA {
		t.Errorf("slot A = %v, err %v; want [0xAA], nil", a, err)
	}
	b, err := store.ReadSlot(storage.SlotB)
	if err != nil || b[0] != 0xBB {
		t.Errorf("slot B = %v, err %v; want [0xBB], nil", b, err)
	}
}

func TestMemStore_ReadBeforeWrite(t *testing.T) {
	store := storage.NewMemStore()
	if _, err := store.ReadSlot(storage.SlotA); err == nil {
		t.Error("ReadSlot() on an unwritten slot should fail")
	}
}

func TestMemStore_ReadReturnsCopy(t *testing.T) {
	store := storage.NewMemStore()
	data := []byte{0x01, 0x02}
	if err := store.WriteSlot(storage.SlotA, data); err != nil {
		t.Fatalf("WriteSlot() failed: %v", err)
	}

	got, err := store.ReadSlot(storage.SlotA)
	if err != nil {
		t.Fatalf("ReadSlot() failed: %v", err)
	}
	got[0] = 0xFF

	again, err := store.ReadSlot(storage.SlotA)
	if err != nil {
		t.Fatalf("second ReadSlot() failed: %v", err)
	}
	if again[0] != 0x01 {
		t.Error("mutating a returned slice leaked into stored state")
	}
}

func TestMemStore_SlotSize(t *testing.T) {
	store := storage.NewMemStore()
	if err := store.WriteSlot(storage.SlotA, make([]byte, 42)); err != nil {
		t.Fatalf("WriteSlot() failed: %v", err)
	}
	size, err := store.SlotSize(storage.SlotA)
	if err != nil {
		t.Fatalf("SlotSize() failed: %v", err)
	}
	if size != 42 {
		t.Errorf("SlotSize() = %d, want 42", size)
	}
}

func TestFileStore_WriteRead(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewFileStore(dir)
	data := []byte{0x10, 0x20, 0x30}

	if err := store.WriteSlot(storage.SlotB, data); err != nil {
		t.Fatalf("WriteSlot() failed: %v", err)
	}

	got, err := store.ReadSlot(storage.SlotB)
	if err != nil {
		t.Fatalf("ReadSlot() failed: %v", err)
	}
	if len(got) != len(data) {
		t.Fatalf("ReadSlot() returned %d bytes, want %d", len(got), len(data))
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewFileStore(dir)

	if err := store.WriteSlot(storage.SlotA, []byte("first")); err != nil {
		t.Fatalf("first WriteSlot() failed: %v", err)
	}
	if err := store.WriteSlot(storage.SlotA, []byte("second-version")); err != nil {
		t.Fatalf("second WriteSlot() failed: %v", err)
	}

	got, err := store.ReadSlot(storage.SlotA)
	if err != nil {
		t.Fatalf("ReadSlot() failed: %v", err)
	}
	if string(got) != "second-version" {
		t.Errorf("ReadSlot() = %q, want %q", got, "second-version")
	}
}

func TestFileStore_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewFileStore(dir)
	if err := store.WriteSlot(storage.SlotA, []byte("data")); err != nil {
		t.Fatalf("WriteSlot() failed: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp*"))
	if err != nil {
		t.Fatalf("Glob() failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("found leftover temp files: %v", matches)
	}
}

func TestFileStore_ReadBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewFileStore(dir)
	if _, err := store.ReadSlot(storage.SlotA); err == nil {
		t.Error("ReadSlot() on an unwritten slot should fail")
	}
}

func TestFileStore_SlotSize(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewFileStore(dir)
	if err := store.WriteSlot(storage.SlotA, make([]byte, 128)); err != nil {
		t.Fatalf("WriteSlot() failed: %v", err)
	}
	size, err := store.SlotSize(storage.SlotA)
	if err != nil {
		t.Fatalf("SlotSize() failed: %v", err)
	}
	if size != 128 {
		t.Errorf("SlotSize() = %d, want 128", size)
	}
}

func TestSlot_String(t *testing.T) {
	if storage.SlotA.String() != "A" {
		t.Errorf("SlotA.String() = %q, want %q", storage.SlotA.String(), "A")
	}
	if storage.SlotB.String() != "B" {
		t.Errorf("SlotB.String() = %q, want %q", storage.SlotB.String(), "B")
	}
}
