package redisx

import (
	"encoding/json"
	"testing"

	"github.com/anonto42/snapgram/backend/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DecodeSkipsOwnMessages(t *testing.T) {
	a := NewBus(nil, "")
	b := NewBus(nil, "")
	assert.Equal(t, DefaultChannel, a.channel)

	payload, err := json.Marshal(invalidation{
		Origin: a.origin,
		Keys:   [][]string{{"getPostById", "42"}, {"getCurrentUser"}},
	})
	require.NoError(t, err)

	_, ok := a.decode(string(payload))
	assert.False(t, ok)

	keys, ok := b.decode(string(payload))
	require.True(t, ok)
	assert.Equal(t, []cache.Key{cache.NewKey("getPostById", "42"), cache.NewKey("getCurrentUser")}, keys)
}

func TestBus_DecodeRejectsGarbage(t *testing.T) {
	b := NewBus(nil, "custom")
	_, ok := b.decode("not json")
	assert.False(t, ok)

	_, ok = b.decode(`{"origin":"x","keys":[]}`)
	assert.False(t, ok)
}
