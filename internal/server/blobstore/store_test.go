package blobstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	hash := cryptox.ContentHash([]byte("hello"))

	key, err := Key(hash)
	require.NoError(t, err)
	assert.Equal(t, hash[0:2]+"/"+hash[2:4]+"/"+hash, key)

	for _, bad := range []string{"", "abc", strings.Repeat("z", 40), strings.ToUpper(hash)} {
		_, err := Key(bad)
		assert.ErrorIs(t, err, ErrInvalidHash, bad)
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte("0123456789")
	hash := cryptox.ContentHash(data)

	ok, err := s.Exists(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, hash)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	require.NoError(t, s.Put(ctx, hash, data))
	require.NoError(t, s.Put(ctx, hash, data))
	assert.Equal(t, 1, s.Len())

	data[0] = 'X'
	got, err := s.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(got))

	ok, err = s.Exists(ctx, hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_InvalidHash(t *testing.T) {
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Put(context.Background(), "x", nil), ErrInvalidHash)
	_, err := s.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrInvalidHash)
	_, err = s.Exists(context.Background(), "x")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
