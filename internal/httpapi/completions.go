package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yungtweek/chat-mock/internal/metrics"
	"github.com/yungtweek/chat-mock/internal/mock"
)

// CompletionsHandler serves POST /v1/chat/completions.
type CompletionsHandler struct {
	client mock.Client
	gate   mock.Gate

	// doneWithPayload puts the serialized terminal chunk in the "done" event
	// instead of leaving it empty.
	doneWithPayload bool
	// encode serializes stream chunks into frames.
	encode func(v any) ([]byte, error)
}

type HandlerOptions struct {
	Gate            mock.Gate
	DoneWithPayload bool
}

func NewCompletionsHandler(client mock.Client, opts HandlerOptions) *CompletionsHandler {
	return &CompletionsHandler{
		client:          client,
		gate:            opts.Gate,
		doneWithPayload: opts.DoneWithPayload,
		encode:          json.Marshal,
	}
}

func (h *CompletionsHandler) ChatCompletions(cc echo.Context) error {
	c := requestContext(cc)

	var req mock.ChatCompletionRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return h.writeError(c, metrics.ModeFull, mock.InvalidRequest("invalid request body: %v", err))
	}

	mode := metrics.ModeFull
	if req.Streaming() {
		mode = metrics.ModeStream
	}
	c.Log.Infow("[http][ChatCompletions] start", "model", req.Model, "mode", mode, "messages", len(req.Messages))

	// Checks that fail before any byte is written answer with JSON and a
	// status code, even for stream requests.
	if derr := h.gate.Admit(req); derr != nil {
		return h.writeError(c, mode, derr)
	}

	if req.Streaming() {
		return h.stream(c, req)
	}

	resp := h.client.Complete(req)
	metrics.RequestCount.WithLabelValues("http", mode, strconv.Itoa(http.StatusOK)).Inc()
	return c.JSON(http.StatusOK, resp)
}

func (h *CompletionsHandler) writeError(c *Context, mode string, derr *mock.ChatCompletionsError) error {
	derr = derr.WithRequestID(c.RequestID)
	status := StatusFor(derr.ErrorType)
	c.Log.Infow("[http][ChatCompletions] rejected", "status", status, "err", derr.Error())
	metrics.DomainErrors.WithLabelValues("http", string(derr.ErrorType)).Inc()
	metrics.RequestCount.WithLabelValues("http", mode, strconv.Itoa(status)).Inc()
	return c.JSON(status, derr)
}

func (h *CompletionsHandler) stream(c *Context, req mock.ChatCompletionRequest) error {
	res := c.Response()
	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return h.writeError(c, metrics.ModeStream, mock.InternalError("streaming unsupported"))
	}

	setupSSEHeaders(res.Header())
	res.WriteHeader(http.StatusOK)
	flusher.Flush()
	metrics.RequestCount.WithLabelValues("http", metrics.ModeStream, strconv.Itoa(http.StatusOK)).Inc()

	ctx := c.Request().Context()
	ew := newEventWriter(res, flusher, c.Log, h.doneWithPayload)
	ew.encode = h.encode

	start := time.Now()
	metrics.InflightStreams.WithLabelValues("http").Inc()

	var streamErr error
	defer func() {
		metrics.InflightStreams.WithLabelValues("http").Dec()

		// Log termination exactly once for all outcomes.
		outcome := metrics.OutcomeDone
		switch {
		case streamErr == nil:
			c.Log.Infow("[http][ChatCompletionsStream] done", "frames", ew.frames, "dropped", ew.dropped)
		case errors.Is(streamErr, context.Canceled) || errors.Is(streamErr, context.DeadlineExceeded) || ctx.Err() != nil:
			outcome = metrics.OutcomeCanceled
			c.Log.Infow("[http][ChatCompletionsStream] canceled", "frames", ew.frames, "err", streamErr)
		default:
			outcome = metrics.OutcomeError
			c.Log.Errorw("[http][ChatCompletionsStream] error", "frames", ew.frames, "err", streamErr)
		}
		metrics.StreamOutcomes.WithLabelValues("http", outcome).Inc()
		metrics.StreamDuration.WithLabelValues("http", outcome).Observe(time.Since(start).Seconds())
	}()

	streamErr = h.client.Stream(ctx, req, func(chunk mock.StreamChunk) error {
		if err := ew.WriteChunk(chunk); err != nil {
			return err
		}
		metrics.ChunksEmitted.WithLabelValues("http").Inc()
		return nil
	})

	// The client is gone: nobody is left to read an error event.
	if streamErr != nil && ctx.Err() == nil {
		derr := mock.AsDomainError(streamErr).WithRequestID(c.RequestID)
		if werr := ew.WriteError(derr); werr != nil {
			c.Log.Warnw("[http][ChatCompletionsStream] failed to write error event", "err", werr)
		}
	}
	return nil
}
