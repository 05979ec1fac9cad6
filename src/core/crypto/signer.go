package crypto

import (
	"crypto/ed25519"
	"fmt"
	"os"
)

// Signer signs the SHA-512 hash of data with an Ed25519 private key — the
// same scheme §4.3's stage() uses to verify a manifest's signature against
// its hash.
type Signer struct {
	keyPair *KeyPair
}

// NewSigner creates a Signer bound to keyPair.
func NewSigner(keyPair *KeyPair) *Signer {
	return &Signer{keyPair: keyPair}
}

// Sign computes h = SHA-512(data) and returns Ed25519.Sign(privateKey, h).
func (s *Signer) Sign(data []byte) (Signature, error) {
	if s.keyPair == nil || s.keyPair.PrivateKey == nil {
		return nil, fmt.Errorf("no private key available")
	}

	hash := SHA512(data)
	signature := ed25519.Sign(s.keyPair.PrivateKey, hash[:])
	return Signature(signature), nil
}

// SignFile signs the SHA-512 hash of a file's contents.
func (s *Signer) SignFile(filePath string) (Signature, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return s.Sign(data)
}

// Verify checks signature against SHA-512(data) using publicKey.
func Verify(publicKey ed25519.PublicKey, data []byte, signature Signature) bool {
	if len(signature) != SignatureSize {
		return false
	}
	hash := SHA512(data)
	return VerifyEd25519(hash[:], signature, publicKey)
}

// VerifyFile verifies signature against the SHA-512 hash of a file's contents.
func VerifyFile(publicKey ed25519.PublicKey, filePath string, signature Signature) (bool, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	return Verify(publicKey, data, signature), nil
}

// SaveSignature writes a detached signature to a binary file.
func SaveSignature(signature Signature, path string) error {
	if len(signature) != SignatureSize {
		return fmt.Errorf("invalid signature size: %d bytes", len(signature))
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, signature, 0644); err != nil {
		return fmt.Errorf("failed to write temp signature: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename signature: %w", err)
	}
	return nil
}

// LoadSignature reads a detached signature from a binary file.
func LoadSignature(path string) (Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signature file: %w", err)
	}
	if len(data) != SignatureSize {
		return nil, fmt.Errorf("invalid signature size: %d bytes", len(data))
	}
	return Signature(data), nil
}
