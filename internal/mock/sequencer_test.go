package mock

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func userRequest(text string) ChatCompletionRequest {
	return ChatCompletionRequest{Messages: msgs("user", text), Model: "x"}
}

func drain(t *testing.T, s *Sequencer) []StreamChunk {
	t.Helper()
	var out []StreamChunk
	for {
		c, err := s.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, c)
	}
}

func decodePayload(t *testing.T, c StreamChunk) ChatCompletionResponse {
	t.Helper()
	var r ChatCompletionResponse
	require.NoError(t, json.Unmarshal([]byte(c.Answer), &r))
	return r
}

func TestSequencerTwoWords(t *testing.T) {
	chunks := drain(t, NewSequencer(userRequest("hello world"), 0))
	require.Len(t, chunks, 3)

	first := decodePayload(t, chunks[0])
	require.False(t, chunks[0].Done)
	require.Equal(t, "Echo: hello", first.Answer)
	require.Equal(t, ResponseTitle, *first.Title)
	require.Equal(t, []string{"Mock", "Echo"}, first.Pills)
	require.NotNil(t, first.Sources)
	require.Empty(t, first.Sources)

	second := decodePayload(t, chunks[1])
	require.False(t, chunks[1].Done)
	require.Equal(t, " world", second.Answer)

	last := decodePayload(t, chunks[2])
	require.True(t, chunks[2].Done)
	require.Equal(t, "Echo: hello world", last.Answer)
	require.Len(t, last.Sources, 1)
	require.Equal(t, PlaceholderSource(), last.Sources[0])
}

func TestSequencerChunkCountAndTerminal(t *testing.T) {
	for _, text := range []string{"one", "a b c d e f g", "tabs\tand\nnewlines  too"} {
		t.Run(text, func(t *testing.T) {
			s := NewSequencer(userRequest(text), 0)
			n := len(strings.Fields(text))
			require.Equal(t, n+1, s.Len())

			chunks := drain(t, s)
			require.Len(t, chunks, n+1)
			for i, c := range chunks {
				require.Equal(t, i == n, c.Done, "chunk %d", i)
			}
		})
	}
}

func TestSequencerFragmentsRebuildFullAnswer(t *testing.T) {
	req := userRequest("the quick brown fox jumps")
	chunks := drain(t, NewSequencer(req, 0))

	var b strings.Builder
	for _, c := range chunks[:len(chunks)-1] {
		b.WriteString(decodePayload(t, c).Answer)
	}
	require.Equal(t, Generate(req).Answer, b.String())
	require.Equal(t, Generate(req).Answer, decodePayload(t, chunks[len(chunks)-1]).Answer)
}

func TestSequencerFallbackText(t *testing.T) {
	chunks := drain(t, NewSequencer(ChatCompletionRequest{}, 0))
	require.Len(t, chunks, len(strings.Fields(FallbackText))+1)
	require.Equal(t, "Echo: No", decodePayload(t, chunks[0]).Answer)
	require.Equal(t, "Echo: No user message found", decodePayload(t, chunks[len(chunks)-1]).Answer)
}

func TestSequencerEmptyTokenListIsTerminalOnly(t *testing.T) {
	s := NewSequencer(userRequest("   "), time.Hour)
	require.Equal(t, StateIdle, s.State())

	c, err := s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, c.Done)
	require.Equal(t, StateClosed, s.State())

	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestSequencerStateTransitions(t *testing.T) {
	s := NewSequencer(userRequest("a b"), 0)
	ctx := context.Background()
	require.Equal(t, StateIdle, s.State())

	_, err := s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, StateEmittingWord, s.State())
	require.Equal(t, 1, s.Index())

	_, err = s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, StateEmittingTerminal, s.State())

	_, err = s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, StateClosed, s.State())
}

func TestSequencerWaitsBetweenWordChunks(t *testing.T) {
	delay := 20 * time.Millisecond
	s := NewSequencer(userRequest("a b"), delay)

	start := time.Now()
	drain(t, s)
	require.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestSequencerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSequencer(userRequest("a b"), 0)
	_, err := s.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StateClosed, s.State())

	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestSequencerCancelDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSequencer(userRequest("a b"), time.Hour)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := s.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)
}

func TestSequencerEncodeFailureClosesWithError(t *testing.T) {
	s := NewSequencer(userRequest("a b"), 0)
	boom := errors.New("boom")
	calls := 0
	s.encode = func(v any) ([]byte, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return json.Marshal(v)
	}

	_, err := s.Next(context.Background())
	require.NoError(t, err)

	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, StateClosed, s.State())

	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}
