package crypt

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

// The verification hash is deliberately independent of the encryption key:
// a different salt and iteration count, so a password can be checked
// without touching any ciphertext.
const (
	verifySize       = 32
	verifyIterations = 4_096
)

// ComputeVerificationHash hashes password under a fresh salt with the
// current KDF. Store all three values; Verify needs them back.
func ComputeVerificationHash(password string) (hash, salt []byte, version KDFVersion, err error) {
	salt, err = NewSalt()
	if err != nil {
		return nil, nil, 0, err
	}
	hash = verificationHash(password, salt, CurrentKDF)
	return hash, salt, CurrentKDF, nil
}

// Verify checks password against a stored hash/salt pair under the stored
// KDF version. Comparison is constant time.
func Verify(password string, storedHash, storedSalt []byte, version KDFVersion) bool {
	if len(storedHash) == 0 || len(storedSalt) == 0 {
		return false
	}
	computed := verificationHash(password, storedSalt, version)
	if computed == nil {
		return false
	}
	return subtle.ConstantTimeCompare(computed, storedHash) == 1
}

func verificationHash(password string, salt []byte, version KDFVersion) []byte {
	switch version {
	case KDFv1:
		return pbkdf2.Key([]byte(password), salt, verifyIterations, verifySize, sha1.New)
	case KDFv2:
		return pbkdf2.Key([]byte(password), salt, verifyIterations, verifySize, sha256.New)
	default:
		return nil
	}
}
