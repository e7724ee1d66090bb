package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// El almacén en memoria respeta TTL: la clave expirada se comporta como ausente.
func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.SetInt64(ctx, "k", 7, time.Minute))

	v, ok, err := s.GetInt64(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 7, v)

	now = now.Add(2 * time.Minute)
	_, ok, err = s.GetInt64(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

// SetNX solo gana una vez mientras la clave viva; tras expirar vuelve a ganar.
func TestMemoryStore_SetNX(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "dedup", "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "dedup", "1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	ok, err = s.SetNX(ctx, "dedup", "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

// Incr cuenta desde 1 y reinicia al expirar la ventana.
func TestMemoryStore_Incr(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := s.Incr(ctx, "rate", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	now = now.Add(2 * time.Minute)
	n, err := s.Incr(ctx, "rate", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryStore_Del(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetInt64(ctx, "a", 1, time.Minute))
	require.NoError(t, s.SetInt64(ctx, "b", 2, time.Minute))
	require.NoError(t, s.Del(ctx, "a", "b"))

	_, ok, err := s.GetInt64(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
