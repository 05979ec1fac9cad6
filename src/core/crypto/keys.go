// Offline key lifecycle for the provisioning workflow: the root key pair
// an operator generates once, signs agent images with (via Signer), and
// pins the public half of into every device's config.ProvisioningConfig.
// None of this runs on the device itself — runtime.Init only ever calls
// LoadPublicKey, against the file path it is pinned to.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
)

// GenerateKeyPair generates a new Ed25519 key pair from the system CSPRNG.
// This is the provisioning step that produces the root key signed agent
// images are verified against.
func GenerateKeyPair() (*KeyPair, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	return &KeyPair{
		PublicKey:  publicKey,
		PrivateKey: privateKey,
	}, nil
}

// SavePrivateKey writes a PEM-encoded private key to path with 0600
// permissions, using a write-then-rename pattern so the file is never
// observed half-written.
func SavePrivateKey(key ed25519.PrivateKey, path string) error {
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: key}
	pemData := pem.EncodeToMemory(block)

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, pemData, 0600); err != nil {
		return fmt.Errorf("failed to write temp key: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename key: %w", err)
	}
	return nil
}

// LoadPrivateKey reads a PEM-encoded private key from path.
func LoadPrivateKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("invalid PEM block type: %s", block.Type)
	}
	if len(block.Bytes) != PrivateKeySize {
		return nil, fmt.Errorf("invalid private key size: %d bytes", len(block.Bytes))
	}

	return ed25519.PrivateKey(block.Bytes), nil
}

// SavePublicKey writes a PEM-encoded public key to path. This is the
// provisioning-record counterpart config.ProvisioningConfig.PublicKeyPath
// points at.
func SavePublicKey(key ed25519.PublicKey, path string) error {
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: key}
	pemData := pem.EncodeToMemory(block)

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, pemData, 0644); err != nil {
		return fmt.Errorf("failed to write temp public key: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename public key: %w", err)
	}
	return nil
}

// LoadPublicKey reads a PEM-encoded public key from path.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	if block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("invalid PEM block type: %s", block.Type)
	}
	if len(block.Bytes) != PublicKeySize {
		return nil, fmt.Errorf("invalid public key size: %d bytes", len(block.Bytes))
	}

	return ed25519.PublicKey(block.Bytes), nil
}
