package kv_test

import (
	"testing"

	"github.com/nmdr-club/courtsync/internal/database"
	"github.com/nmdr-club/courtsync/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) kv.Store {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	return kv.New(db)
}

func TestSetAndGet(t *testing.T) {
	store := setupTestStore(t)

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("game_state", []byte("v1")))
	value, ok, err := store.Get("game_state")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), value)

	// Overwrite in place.
	require.NoError(t, store.Set("game_state", []byte("v2")))
	value, ok, err = store.Get("game_state")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), value)
}

func TestDelete(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.Set("device_id", []byte("device-1")))
	require.NoError(t, store.Delete("device_id"))

	_, ok, err := store.Get("device_id")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete("device_id"))
}
