package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tmaxmax/go-sse"
	"go.uber.org/zap"

	"github.com/yungtweek/chat-mock/internal/metrics"
	"github.com/yungtweek/chat-mock/internal/mock"
)

var (
	doneEventType  = sse.Type("done")
	errorEventType = sse.Type("error")
)

// eventWriter frames stream chunks as server-sent events and flushes each
// frame as soon as it is written.
type eventWriter struct {
	w               io.Writer
	flusher         http.Flusher
	encode          func(v any) ([]byte, error)
	doneWithPayload bool
	log             *zap.SugaredLogger

	frames  int
	dropped int
}

func setupSSEHeaders(h http.Header) {
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// WriteChunk writes one chunk. Non-terminal chunks become data-only events
// carrying the serialized chunk; the terminal chunk becomes a "done" event.
// A chunk that cannot be serialized is dropped and replaced by an "error"
// event; the stream keeps going. Only write failures are returned.
func (ew *eventWriter) WriteChunk(chunk mock.StreamChunk) error {
	if chunk.Done {
		msg := sse.Message{Type: doneEventType}
		if ew.doneWithPayload {
			data, err := ew.encode(chunk)
			if err != nil {
				return ew.drop(err)
			}
			msg.AppendData(string(data))
		}
		return ew.write(&msg)
	}

	data, err := ew.encode(chunk)
	if err != nil {
		return ew.drop(err)
	}
	msg := sse.Message{}
	msg.AppendData(string(data))
	return ew.write(&msg)
}

// WriteError frames err as an "error" event carrying its display text.
func (ew *eventWriter) WriteError(err error) error {
	msg := sse.Message{Type: errorEventType}
	msg.AppendData(err.Error())
	return ew.write(&msg)
}

func (ew *eventWriter) drop(cause error) error {
	ew.dropped++
	metrics.DroppedFrames.WithLabelValues("http").Inc()
	ew.log.Warnw("[stream] dropped frame", "frame", ew.frames, "err", cause)
	return ew.WriteError(mock.InternalError("frame dropped: %v", cause))
}

func (ew *eventWriter) write(msg *sse.Message) error {
	if _, err := msg.WriteTo(ew.w); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	ew.flusher.Flush()
	ew.frames++
	return nil
}

func newEventWriter(w io.Writer, flusher http.Flusher, log *zap.SugaredLogger, doneWithPayload bool) *eventWriter {
	return &eventWriter{
		w:               w,
		flusher:         flusher,
		encode:          json.Marshal,
		doneWithPayload: doneWithPayload,
		log:             log,
	}
}
