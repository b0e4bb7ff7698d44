package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyring_RoundTrip(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvKey, "")
	k := NewKeyring()

	_, err := k.GetKey()
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, k.SetKey("hunter2"))
	key, err := k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", key)
	assert.True(t, k.IsAvailable())

	require.NoError(t, k.DeleteKey())
	assert.ErrorIs(t, k.DeleteKey(), ErrKeyNotFound)
}

func TestKeyring_EnvTakesPrecedence(t *testing.T) {
	keyring.MockInit()
	k := NewKeyring()
	require.NoError(t, k.SetKey("from-keyring"))
	t.Setenv(EnvKey, "from-env")

	key, err := k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestKeyring_RejectsEmptyPassword(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, NewKeyring().SetKey(""))
}
