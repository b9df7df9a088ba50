package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientStreamDeliversAllChunks(t *testing.T) {
	c := NewClient(0)
	var got []StreamChunk
	err := c.Stream(context.Background(), userRequest("x y z"), func(chunk StreamChunk) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.True(t, got[3].Done)
}

func TestClientStreamStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient(0)
	delivered := 0
	err := c.Stream(ctx, userRequest("one two three four"), func(StreamChunk) error {
		delivered++
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, delivered)
}

func TestClientStreamPropagatesHandlerError(t *testing.T) {
	boom := errors.New("write failed")
	err := NewClient(0).Stream(context.Background(), userRequest("a b"), func(StreamChunk) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestClientCompleteMatchesGenerate(t *testing.T) {
	req := userRequest("same")
	require.Equal(t, Generate(req), NewClient(DefaultChunkDelay).Complete(req))
}

func TestNewClientClampsNegativeDelay(t *testing.T) {
	require.Zero(t, NewClient(-5).ChunkDelay)
}
