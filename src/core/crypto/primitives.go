package crypto

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"hash/crc32"
	"io"
)

// SHA512 returns the FIPS 180-4 SHA-512 digest of data.
func SHA512(data []byte) [HashSize]byte {
	return sha512.Sum512(data)
}

// HMACSHA512 returns the FIPS 198-1 HMAC over data keyed by key, using SHA-512.
func HMACSHA512(key, data []byte) [HashSize]byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	var out [HashSize]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// VerifyEd25519 checks an Ed25519 signature over msg per RFC 8032. It is
// total: malformed public keys or signatures yield false, never a panic.
func VerifyEd25519(msg, sig, pubKey []byte) bool {
	if len(pubKey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), msg, sig)
}

// CRC32 computes the standard zlib-compatible CRC-32: polynomial 0x04C11DB7
// reflected, initial value 0xFFFFFFFF, final XOR 0xFFFFFFFF. This is exactly
// hash/crc32's IEEE table, so no custom table is maintained here. The CRC of
// an empty payload is 0x00000000.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// RandomBytes fills out from src, an injected entropy source (typically
// crypto/rand.Reader). It fails rather than falling back to a weaker
// generator if src returns an error or short read.
func RandomBytes(src io.Reader, out []byte) error {
	if src == nil {
		src = rand.Reader
	}
	_, err := io.ReadFull(src, out)
	return err
}
