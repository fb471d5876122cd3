package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	c, err := NewCipher("MySecretEncryptionKey!")
	require.NoError(t, err)

	enc, err := c.Encrypt("Finished the migration, see PR 42.")
	require.NoError(t, err)
	assert.NotContains(t, enc, "migration")

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "Finished the migration, see PR 42.", dec)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	c, err := NewCipher("k")
	require.NoError(t, err)

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptRejectsTamperedInput(t *testing.T) {
	c, err := NewCipher("key-one")
	require.NoError(t, err)
	other, err := NewCipher("key-two")
	require.NoError(t, err)

	enc, err := c.Encrypt("report")
	require.NoError(t, err)

	_, err = other.Decrypt(enc)
	assert.Error(t, err)

	_, err = c.Decrypt("AAAA")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = c.Decrypt("%%%not-base64")
	assert.Error(t, err)
}

func TestFixEncryptionKey(t *testing.T) {
	assert.Len(t, FixEncryptionKey("short"), 32)
	assert.Len(t, FixEncryptionKey("a-very-long-key-that-goes-past-thirty-two-bytes"), 32)
}
