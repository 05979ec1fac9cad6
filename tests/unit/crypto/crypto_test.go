package crypto_test

import (
	"bytes"
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"

	"github.com/edgeplug/runtime/src/core/crypto"
)

func TestGenerateKeyPair(t *testing.T) {
	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() failed: %v", err)
	}
	if keyPair == nil {
		t.Fatal("GenerateKeyPair() returned nil")
	}
	if len(keyPair.PublicKey) != crypto.PublicKeySize {
		t.Errorf("PublicKey size = %d, want %d", len(keyPair.PublicKey), crypto.PublicKeySize)
	}
	if len(keyPair.PrivateKey) != crypto.PrivateKeySize {
		t.Errorf("PrivateKey size = %d, want %d", len(keyPair.PrivateKey), crypto.PrivateKeySize)
	}
}

func TestSaveLoadPrivateKey(t *testing.T) {
	tmpDir := t.TempDir()
	keyPath := filepath.Join(tmpDir, "test.key")

	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() failed: %v", err)
	}
	if err := crypto.SavePrivateKey(keyPair.PrivateKey, keyPath); err != nil {
		t.Fatalf("SavePrivateKey() failed: %v", err)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("Key file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Key permissions = %o, want 0600", info.Mode().Perm())
	}

	loadedKey, err := crypto.LoadPrivateKey(keyPath)
	if err != nil {
		t.Fatalf("LoadPrivateKey() failed: %v", err)
	}
	if !ed25519.PrivateKey(keyPair.PrivateKey).Equal(loadedKey) {
		t.Error("Loaded key does not match original")
	}
}

func TestSaveLoadPublicKey(t *testing.T) {
	tmpDir := t.TempDir()
	keyPath := filepath.Join(tmpDir, "test.pub")

	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() failed: %v", err)
	}
	if err := crypto.SavePublicKey(keyPair.PublicKey, keyPath); err != nil {
		t.Fatalf("SavePublicKey() failed: %v", err)
	}

	loadedKey, err := crypto.LoadPublicKey(keyPath)
	if err != nil {
		t.Fatalf("LoadPublicKey() failed: %v", err)
	}
	if !ed25519.PublicKey(keyPair.PublicKey).Equal(loadedKey) {
		t.Error("Loaded key does not match original")
	}
}

func TestSignVerify(t *testing.T) {
	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() failed: %v", err)
	}

	signer := crypto.NewSigner(keyPair)
	testData := []byte("Hello, EdgePlug!")

	signature, err := signer.Sign(testData)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	if len(signature) != crypto.SignatureSize {
		t.Errorf("Signature size = %d, want %d", len(signature), crypto.SignatureSize)
	}
	if !crypto.Verify(keyPair.PublicKey, testData, signature) {
		t.Error("Verify() failed for valid signature")
	}
}

func TestVerify_InvalidSignature(t *testing.T) {
	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() failed: %v", err)
	}

	testData := []byte("Hello, EdgePlug!")
	invalidSig := make([]byte, crypto.SignatureSize)

	if crypto.Verify(keyPair.PublicKey, testData, invalidSig) {
		t.Error("Verify() accepted invalid signature")
	}
}

func TestVerify_ModifiedData(t *testing.T) {
	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() failed: %v", err)
	}

	signer := crypto.NewSigner(keyPair)
	originalData := []byte("Hello, EdgePlug!")
	modifiedData := []byte("Hello, EdgePlug?")

	signature, err := signer.Sign(originalData)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	if crypto.Verify(keyPair.PublicKey, modifiedData, signature) {
		t.Error("Verify() accepted signature for modified data")
	}
}

func TestSignFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	testData := []byte("Test file content")
	if err := os.WriteFile(testFile, testData, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() failed: %v", err)
	}

	signer := crypto.NewSigner(keyPair)
	signature, err := signer.SignFile(testFile)
	if err != nil {
		t.Fatalf("SignFile() failed: %v", err)
	}
	if !crypto.Verify(keyPair.PublicKey, testData, signature) {
		t.Error("File signature verification failed")
	}
}

func TestVerifyFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	testData := []byte("Test file content")
	if err := os.WriteFile(testFile, testData, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() failed: %v", err)
	}

	signer := crypto.NewSigner(keyPair)
	signature, err := signer.SignFile(testFile)
	if err != nil {
		t.Fatalf("SignFile() failed: %v", err)
	}

	valid, err := crypto.VerifyFile(keyPair.PublicKey, testFile, signature)
	if err != nil {
		t.Fatalf("VerifyFile() failed: %v", err)
	}
	if !valid {
		t.Error("VerifyFile() returned false for valid signature")
	}
}

func TestSaveLoadSignature(t *testing.T) {
	tmpDir := t.TempDir()
	sigPath := filepath.Join(tmpDir, "test.sig")

	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() failed: %v", err)
	}

	signer := crypto.NewSigner(keyPair)
	testData := []byte("Test data")
	signature, err := signer.Sign(testData)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	if err := crypto.SaveSignature(signature, sigPath); err != nil {
		t.Fatalf("SaveSignature() failed: %v", err)
	}

	loadedSig, err := crypto.LoadSignature(sigPath)
	if err != nil {
		t.Fatalf("LoadSignature() failed: %v", err)
	}
	if !bytes.Equal(signature, loadedSig) {
		t.Error("Loaded signature does not match original")
	}
	if !crypto.Verify(keyPair.PublicKey, testData, loadedSig) {
		t.Error("Loaded signature failed verification")
	}
}

func TestSign_NoPrivateKey(t *testing.T) {
	signer := crypto.NewSigner(&crypto.KeyPair{})
	_, err := signer.Sign([]byte("test"))
	if err == nil {
		t.Error("Sign() should fail without private key")
	}
}

func TestLoadPrivateKey_InvalidFile(t *testing.T) {
	_, err := crypto.LoadPrivateKey("/nonexistent/key")
	if err == nil {
		t.Error("LoadPrivateKey() should fail for nonexistent file")
	}
}

func TestLoadPrivateKey_InvalidPEM(t *testing.T) {
	tmpDir := t.TempDir()
	keyPath := filepath.Join(tmpDir, "invalid.key")

	if err := os.WriteFile(keyPath, []byte("not a PEM file"), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	_, err := crypto.LoadPrivateKey(keyPath)
	if err == nil {
		t.Error("LoadPrivateKey() should fail for invalid PEM")
	}
}

func TestSaveSignature_InvalidSize(t *testing.T) {
	tmpDir := t.TempDir()
	sigPath := filepath.Join(tmpDir, "invalid.sig")

	invalidSig := crypto.Signature([]byte("too short"))
	err := crypto.SaveSignature(invalidSig, sigPath)
	if err == nil {
		t.Error("SaveSignature() should fail for invalid signature size")
	}
}

// --- primitives added beyond the teacher's signing/verification surface ---

func TestSHA512KnownVector(t *testing.T) {
	// RFC 8032 / NIST test vector for the empty message.
	want := "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"
	digest := crypto.SHA512(nil)
	got := hexEncode(digest[:])
	if got != want {
		t.Errorf("SHA512(nil) = %s, want %s", got, want)
	}
}

func TestHMACSHA512Deterministic(t *testing.T) {
	key := []byte("key")
	data := []byte("The quick brown fox jumps over the lazy dog")

	a := crypto.HMACSHA512(key, data)
	b := crypto.HMACSHA512(key, data)
	if a != b {
		t.Error("HMACSHA512 is not deterministic for identical inputs")
	}
}

func TestCRC32EmptyPayload(t *testing.T) {
	if got := crypto.CRC32(nil); got != 0x00000000 {
		t.Errorf("CRC32(nil) = 0x%08X, want 0x00000000", got)
	}
}

func TestCRC32KnownVector(t *testing.T) {
	// Standard zlib-compatible CRC-32 ("123456789") reference value.
	if got := crypto.CRC32([]byte("123456789")); got != 0xCBF43926 {
		t.Errorf("CRC32(\"123456789\") = 0x%08X, want 0xCBF43926", got)
	}
}

func TestRandomBytesFillsBuffer(t *testing.T) {
	out := make([]byte, 32)
	if err := crypto.RandomBytes(nil, out); err != nil {
		t.Fatalf("RandomBytes() failed: %v", err)
	}
	allZero := true
	for _, b := range out {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Error("RandomBytes() left the buffer all-zero (32 bytes, astronomically unlikely if real)")
	}
}

func TestVerifyEd25519RejectsMalformed(t *testing.T) {
	if crypto.VerifyEd25519([]byte("msg"), []byte("short-sig"), make([]byte, crypto.PublicKeySize)) {
		t.Error("VerifyEd25519 should reject a malformed signature rather than panic")
	}
}

func hexEncode(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0x0F]
	}
	return string(out)
}
