package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	key string
	v   any
}

func (w *recordingWriter) WriteJSON(_ context.Context, key string, v any) error {
	w.key, w.v = key, v
	return nil
}

func TestKafkaPublisher_KeysByMutationName(t *testing.T) {
	w := &recordingWriter{}
	ev := MutationEvent{
		Name: "likePost",
		Keys: [][]string{{"getPostById", "42"}, {"getInfinitePosts"}},
		At:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, NewKafkaPublisher(w).PublishMutation(context.Background(), ev))
	assert.Equal(t, "likePost", w.key)
	assert.Equal(t, ev, w.v)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.PublishMutation(context.Background(), MutationEvent{Name: "createPost"}))
}
