// Package crypto provides the runtime's audited cryptographic primitives:
// SHA-512, HMAC-SHA512, Ed25519 verification, CRC-32, and CSPRNG-backed
// random bytes. All of it is a thin wrapper over the Go standard library —
// the core must not ship hand-rolled variants for production use.
package crypto

import "crypto/ed25519"

// KeyPair is an Ed25519 key pair used by provisioning-adjacent tooling to
// read and persist a pinned signing identity.
type KeyPair struct {
	PublicKey  ed25519.PublicKey  // 32 bytes
	PrivateKey ed25519.PrivateKey // 64 bytes (seed + public key)
}

// Signature is a 64-byte Ed25519 signature.
type Signature []byte

const (
	// SignatureSize is the byte length of an Ed25519 signature.
	SignatureSize = ed25519.SignatureSize
	// PublicKeySize is the byte length of an Ed25519 public key.
	PublicKeySize = ed25519.PublicKeySize
	// PrivateKeySize is the byte length of an Ed25519 private key.
	PrivateKeySize = ed25519.PrivateKeySize
	// HashSize is the byte length of a SHA-512 digest.
	HashSize = 64
)
