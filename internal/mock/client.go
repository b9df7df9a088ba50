package mock

import (
	"context"
	"errors"
	"io"
	"time"
)

// Client is the mock model handle. It is an immutable value: copy it freely
// and share it across requests.
type Client struct {
	ChunkDelay time.Duration
}

func NewClient(chunkDelay time.Duration) Client {
	if chunkDelay < 0 {
		chunkDelay = 0
	}
	return Client{ChunkDelay: chunkDelay}
}

// Complete returns the whole answer for req.
func (c Client) Complete(req ChatCompletionRequest) ChatCompletionResponse {
	return Generate(req)
}

// Sequencer returns a fresh per-request chunk producer.
func (c Client) Sequencer(req ChatCompletionRequest) *Sequencer {
	return NewSequencer(req, c.ChunkDelay)
}

// Stream drives a sequencer to completion, handing each chunk to onChunk as
// soon as it is produced. It returns nil after the terminal chunk was
// delivered, ctx.Err() on cancellation, or the first encoding/handler error.
func (c Client) Stream(ctx context.Context, req ChatCompletionRequest, onChunk StreamHandler) error {
	seq := c.Sequencer(req)
	defer seq.Close()
	for {
		chunk, err := seq.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
}
