package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"filevault/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := storage.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "u1/1_notes.txt", strings.NewReader("abc")))
	assert.Equal(t, 1, m.Len())

	body, err := m.Get(ctx, "u1/1_notes.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, []byte("abc"), data)

	assert.Equal(t, "memory://u1/1_notes.txt", m.Location("u1/1_notes.txt"))
}

func TestMemoryStoreMissingKey(t *testing.T) {
	m := storage.NewMemoryStore()

	_, err := m.Get(context.Background(), "nope")
	assert.Error(t, err)
}

func TestMemoryStoreOverwriteAndDelete(t *testing.T) {
	m := storage.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", strings.NewReader("v1")))
	require.NoError(t, m.Put(ctx, "k", strings.NewReader("v2")))
	assert.Equal(t, 1, m.Len())

	body, err := m.Get(ctx, "k")
	require.NoError(t, err)
	data, _ := io.ReadAll(body)
	body.Close()
	assert.Equal(t, []byte("v2"), data)

	m.Delete("k")
	assert.Zero(t, m.Len())
}
