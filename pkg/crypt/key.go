package crypt

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// KDFVersion selects the key-derivation algorithm. Backups written by old
// releases derived keys with HMAC-SHA1; the tag is stored alongside the salt
// and selected at read time, never re-inferred.
type KDFVersion int

const (
	// KDFv1 is PBKDF2-HMAC-SHA1, kept for reading old data.
	KDFv1 KDFVersion = 1
	// KDFv2 is PBKDF2-HMAC-SHA256, used for all new material.
	KDFv2 KDFVersion = 2

	// CurrentKDF is the version applied when new salts/hashes are created.
	CurrentKDF = KDFv2
)

const (
	keySize       = 32 // AES-256
	saltSize      = 16
	keyIterations = 10_000
)

// Key is a scoped handle on derived key material. It lives for the duration
// of the single operation that needs it; callers must Forget it afterwards.
type Key struct {
	bytes   []byte
	version KDFVersion
}

// DeriveKey derives an encryption key from password and salt under the given
// KDF version. Derivation is deterministic: same inputs, same key.
func DeriveKey(password string, salt []byte, version KDFVersion) (*Key, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("derive key: empty salt")
	}
	var raw []byte
	switch version {
	case KDFv1:
		raw = pbkdf2.Key([]byte(password), salt, keyIterations, keySize, sha1.New)
	case KDFv2:
		raw = pbkdf2.Key([]byte(password), salt, keyIterations, keySize, sha256.New)
	default:
		return nil, fmt.Errorf("derive key: unknown KDF version %d", version)
	}
	return &Key{bytes: raw, version: version}, nil
}

// Version reports which KDF produced this key.
func (k *Key) Version() KDFVersion {
	return k.version
}

// Forget zeroes the key material. The handle is unusable afterwards.
func (k *Key) Forget() {
	if k == nil {
		return
	}
	for i := range k.bytes {
		k.bytes[i] = 0
	}
	k.bytes = nil
}

// NewSalt returns a fresh random salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
