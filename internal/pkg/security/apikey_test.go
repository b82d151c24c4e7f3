package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	require.NoError(t, err)
	b, err := GenerateKey()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestHashAndVerify(t *testing.T) {
	hash, err := HashKey("s3cret")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	v, err := NewKeyVerifier(hash)
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.True(t, v.Verify("s3cret"))
	assert.True(t, v.Verify("s3cret"), "cached key")
	assert.False(t, v.Verify("S3cret"))
	assert.False(t, v.Verify(""))
}

func TestHashKeyEmpty(t *testing.T) {
	_, err := HashKey("")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestNewKeyVerifier(t *testing.T) {
	v, err := NewKeyVerifier("")
	require.NoError(t, err)
	assert.Nil(t, v, "empty hash disables auth")

	_, err = NewKeyVerifier("not-a-bcrypt-hash")
	require.Error(t, err)
}
