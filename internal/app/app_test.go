package app

import (
	"testing"

	"github.com/andy/studioledger/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyring struct {
	key       string
	available bool
	deleted   int
}

func (k *fakeKeyring) GetKey() (string, error) {
	if k.key == "" {
		return "", crypto.ErrKeyNotFound
	}
	return k.key, nil
}

func (k *fakeKeyring) SetKey(password string) error {
	k.key = password
	return nil
}

func (k *fakeKeyring) DeleteKey() error {
	if k.key == "" {
		return crypto.ErrKeyNotFound
	}
	k.key = ""
	k.deleted++
	return nil
}

func (k *fakeKeyring) IsAvailable() bool { return k.available }

func TestDatabaseKey_Stored(t *testing.T) {
	k := &fakeKeyring{key: "hunter2", available: true}

	key, created, err := databaseKey(k)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", key)
	assert.False(t, created)
}

func TestDatabaseKey_NoKeyringDoesNotPrompt(t *testing.T) {
	k := &fakeKeyring{}

	_, created, err := databaseKey(k)
	require.Error(t, err)
	assert.Contains(t, err.Error(), crypto.EnvKey)
	assert.False(t, created)
}

func TestForgetNewKey(t *testing.T) {
	k := &fakeKeyring{key: "hunter2"}
	forgetNewKey(k, false)
	assert.Equal(t, "hunter2", k.key, "existing key is kept")

	forgetNewKey(k, true)
	assert.Empty(t, k.key)
	assert.Equal(t, 1, k.deleted)
}
