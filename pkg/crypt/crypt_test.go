package crypt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")

	k1, err := DeriveKey("hunter2", salt, KDFv2)
	require.NoError(t, err)
	k2, err := DeriveKey("hunter2", salt, KDFv2)
	require.NoError(t, err)
	assert.Equal(t, k1.bytes, k2.bytes)

	// Different version, different key material for the same inputs.
	legacy, err := DeriveKey("hunter2", salt, KDFv1)
	require.NoError(t, err)
	assert.NotEqual(t, k1.bytes, legacy.bytes)

	_, err = DeriveKey("hunter2", nil, KDFv2)
	assert.Error(t, err)

	_, err = DeriveKey("hunter2", salt, KDFVersion(9))
	assert.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	key, err := DeriveKey("secret", salt, KDFv2)
	require.NoError(t, err)

	plaintext := []byte("the quick brown fox")
	ciphertext, err := Encrypt(key, plaintext)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(ciphertext, plaintext))

	// Same plaintext never seals to the same bytes (random nonce).
	ciphertext2, err := Encrypt(key, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, ciphertext, ciphertext2)

	out, err := Decrypt(key, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, out)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	key, err := DeriveKey("secret", salt, KDFv2)
	require.NoError(t, err)
	other, err := DeriveKey("other", salt, KDFv2)
	require.NoError(t, err)

	ciphertext, err := Encrypt(key, []byte("payload"))
	require.NoError(t, err)

	_, err = Decrypt(other, ciphertext)
	assert.ErrorIs(t, err, ErrSecurity)

	// Corrupt ciphertext.
	ciphertext[len(ciphertext)-1] ^= 0xff
	_, err = Decrypt(key, ciphertext)
	assert.ErrorIs(t, err, ErrSecurity)

	// Truncated below nonce size.
	_, err = Decrypt(key, ciphertext[:4])
	assert.ErrorIs(t, err, ErrSecurity)
}

func TestForgetZeroesKey(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	key, err := DeriveKey("secret", salt, KDFv2)
	require.NoError(t, err)

	raw := key.bytes
	key.Forget()
	assert.Nil(t, key.bytes)
	for _, b := range raw {
		assert.Zero(t, b)
	}

	_, err = Encrypt(key, []byte("x"))
	assert.ErrorIs(t, err, ErrSecurity)

	// Forget on nil must not panic.
	var none *Key
	none.Forget()
}

func TestVerificationHash(t *testing.T) {
	hash, salt, version, err := ComputeVerificationHash("letmein")
	require.NoError(t, err)
	assert.Equal(t, CurrentKDF, version)

	assert.True(t, Verify("letmein", hash, salt, version))
	assert.False(t, Verify("letmeout", hash, salt, version))
	assert.False(t, Verify("letmein", hash, salt, KDFv1), "version tag must select the algorithm")
	assert.False(t, Verify("letmein", nil, salt, version))
	assert.False(t, Verify("letmein", hash, nil, version))
}

func TestVerificationIndependentOfEncryptionKey(t *testing.T) {
	hash, salt, version, err := ComputeVerificationHash("letmein")
	require.NoError(t, err)

	// Deriving the encryption key from the verification salt must not
	// reproduce the stored hash.
	key, err := DeriveKey("letmein", salt, version)
	require.NoError(t, err)
	assert.NotEqual(t, hash, key.bytes)
}
