package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// DefaultChunkDelay is the pause before each word chunk.
const DefaultChunkDelay = 100 * time.Millisecond

type State int

const (
	StateIdle State = iota
	StateEmittingWord
	StateEmittingTerminal
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEmittingWord:
		return "emitting_word"
	case StateEmittingTerminal:
		return "emitting_terminal"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Sequencer turns one request into word_count+1 ordered chunks: one per
// whitespace-delimited word of the resolved user text, then exactly one
// terminal chunk. It only decides what comes next; delivery is the caller's
// business. A Sequencer is owned by a single request and is not safe for
// concurrent use.
type Sequencer struct {
	text   string
	words  []string
	delay  time.Duration
	encode func(v any) ([]byte, error)

	state State
	index int
}

func NewSequencer(req ChatCompletionRequest, delay time.Duration) *Sequencer {
	if delay < 0 {
		delay = 0
	}
	text := ResolveUserText(req.Messages)
	return &Sequencer{
		text:   text,
		words:  Words(text),
		delay:  delay,
		encode: json.Marshal,
		state:  StateIdle,
	}
}

func (s *Sequencer) State() State { return s.state }

// Index is the position of the next word chunk while in StateEmittingWord.
func (s *Sequencer) Index() int { return s.index }

// Len is the total number of chunks the sequence produces when run to the end.
func (s *Sequencer) Len() int { return len(s.words) + 1 }

// Next blocks for the chunk delay (word chunks only) and returns the next
// chunk. After the terminal chunk it returns io.EOF. If ctx is done before a
// chunk is produced the sequencer closes and returns ctx.Err(); nothing is
// generated after cancellation is observed. Encoding failures also close the
// sequencer and are returned, so a stream never ends silently.
func (s *Sequencer) Next(ctx context.Context) (StreamChunk, error) {
	if s.state == StateIdle {
		if len(s.words) > 0 {
			s.state = StateEmittingWord
		} else {
			s.state = StateEmittingTerminal
		}
	}

	switch s.state {
	case StateEmittingWord:
		if err := waitWithContext(ctx, s.delay); err != nil {
			s.state = StateClosed
			return StreamChunk{}, err
		}
		payload := answerFor("", []Source{})
		payload.Answer = fragment(s.index, s.words[s.index])
		b, err := s.encode(payload)
		if err != nil {
			s.state = StateClosed
			return StreamChunk{}, fmt.Errorf("encode chunk %d: %w", s.index, err)
		}
		s.index++
		if s.index >= len(s.words) {
			s.state = StateEmittingTerminal
		}
		return StreamChunk{Answer: string(b)}, nil

	case StateEmittingTerminal:
		if err := ctx.Err(); err != nil {
			s.state = StateClosed
			return StreamChunk{}, err
		}
		b, err := s.encode(answerFor(s.text, []Source{PlaceholderSource()}))
		s.state = StateClosed
		if err != nil {
			return StreamChunk{}, fmt.Errorf("encode terminal chunk: %w", err)
		}
		return StreamChunk{Answer: string(b), Done: true}, nil

	default:
		return StreamChunk{}, io.EOF
	}
}

// Close moves the sequencer to StateClosed; later Next calls return io.EOF.
func (s *Sequencer) Close() {
	s.state = StateClosed
}

// waitWithContext sleeps for d unless ctx ends first. It reports ctx.Err()
// even when the timer won the race so callers never emit after cancellation.
func waitWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	return ctx.Err()
}
