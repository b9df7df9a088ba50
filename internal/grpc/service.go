package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yungtweek/chat-mock/internal/logger"
	"github.com/yungtweek/chat-mock/internal/metrics"
	"github.com/yungtweek/chat-mock/internal/mock"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const headerRequestID = "x-request-id"

// ChatService serves chat completions over gRPC with the same generator,
// admission checks and chunk sequence as the HTTP endpoint. The request's
// "stream" field is ignored; the RPC called decides the delivery mode.
type ChatService struct {
	client mock.Client
	gate   mock.Gate
}

func NewChatService(client mock.Client, gate mock.Gate) *ChatService {
	return &ChatService{client: client, gate: gate}
}

func (s *ChatService) ChatCompletion(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	reqID := requestID(ctx)
	_ = grpc.SetHeader(ctx, metadata.Pairs(headerRequestID, reqID))
	log := logger.With("request_id", reqID, "peer", peerAddr(ctx))

	req, derr := decodeRequest(in)
	if derr == nil {
		derr = s.gate.Admit(req)
	}
	if derr != nil {
		return nil, reject(log, metrics.ModeFull, derr.WithRequestID(reqID))
	}
	log.Infow("[grpc][ChatCompletion] start", "model", req.Model, "messages", len(req.Messages))

	out, err := encodeStruct(s.client.Complete(req))
	if err != nil {
		return nil, reject(log, metrics.ModeFull, mock.InternalError("encode response: %v", err).WithRequestID(reqID))
	}
	metrics.RequestCount.WithLabelValues("grpc", metrics.ModeFull, codes.OK.String()).Inc()
	return out, nil
}

func (s *ChatService) ChatCompletionStream(in *structpb.Struct, stream ChatCompletionStreamServer) (err error) {
	ctx := stream.Context()
	reqID := requestID(ctx)
	_ = stream.SetHeader(metadata.Pairs(headerRequestID, reqID))
	log := logger.With("request_id", reqID, "peer", peerAddr(ctx))

	req, derr := decodeRequest(in)
	if derr == nil {
		derr = s.gate.Admit(req)
	}
	if derr != nil {
		return reject(log, metrics.ModeStream, derr.WithRequestID(reqID))
	}
	log.Infow("[grpc][ChatCompletionStream] start", "model", req.Model, "messages", len(req.Messages))
	metrics.RequestCount.WithLabelValues("grpc", metrics.ModeStream, codes.OK.String()).Inc()

	start := time.Now()
	frames := 0
	metrics.InflightStreams.WithLabelValues("grpc").Inc()

	defer func() {
		metrics.InflightStreams.WithLabelValues("grpc").Dec()

		// Log termination exactly once for all outcomes.
		outcome := metrics.OutcomeDone
		switch {
		case err == nil:
			log.Infow("[grpc][ChatCompletionStream] done", "frames", frames)
		case status.Code(err) == codes.Canceled:
			outcome = metrics.OutcomeCanceled
			log.Infow("[grpc][ChatCompletionStream] canceled", "frames", frames, "err", err)
		case status.Code(err) == codes.DeadlineExceeded:
			outcome = metrics.OutcomeCanceled
			log.Warnw("[grpc][ChatCompletionStream] deadline_exceeded", "frames", frames, "err", err)
		default:
			outcome = metrics.OutcomeError
			log.Errorw("[grpc][ChatCompletionStream] error", "frames", frames, "err", err)
		}
		metrics.StreamOutcomes.WithLabelValues("grpc", outcome).Inc()
		metrics.StreamDuration.WithLabelValues("grpc", outcome).Observe(time.Since(start).Seconds())
	}()

	streamErr := s.client.Stream(ctx, req, func(chunk mock.StreamChunk) error {
		msg, err := structpb.NewStruct(map[string]any{
			"answer": chunk.Answer,
			"done":   chunk.Done,
		})
		if err != nil {
			return mock.InternalError("encode chunk: %v", err)
		}
		if err := stream.Send(msg); err != nil {
			return err
		}
		frames++
		metrics.ChunksEmitted.WithLabelValues("grpc").Inc()
		return nil
	})
	return toStatus(streamErr, reqID)
}

// CodeFor maps a domain error kind to its gRPC status code. Unknown kinds are Internal.
func CodeFor(t mock.ErrorType) codes.Code {
	switch t {
	case mock.ErrInvalidRequest:
		return codes.InvalidArgument
	case mock.ErrModelNotFound:
		return codes.NotFound
	case mock.ErrUnauthorized:
		return codes.Unauthenticated
	case mock.ErrRateLimitExceeded:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

func reject(log *zap.SugaredLogger, mode string, derr *mock.ChatCompletionsError) error {
	code := CodeFor(derr.ErrorType)
	log.Infow("[grpc] rejected", "mode", mode, "code", code.String(), "err", derr.Error())
	metrics.DomainErrors.WithLabelValues("grpc", string(derr.ErrorType)).Inc()
	metrics.RequestCount.WithLabelValues("grpc", mode, code.String()).Inc()
	return status.Error(code, derr.Error())
}

// toStatus converts a stream failure into a gRPC status. Context errors keep
// their Canceled/DeadlineExceeded codes.
func toStatus(err error, reqID string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	derr := mock.AsDomainError(err).WithRequestID(reqID)
	metrics.DomainErrors.WithLabelValues("grpc", string(derr.ErrorType)).Inc()
	return status.Error(CodeFor(derr.ErrorType), derr.Error())
}

func decodeRequest(in *structpb.Struct) (mock.ChatCompletionRequest, *mock.ChatCompletionsError) {
	var req mock.ChatCompletionRequest
	b, err := protojson.Marshal(in)
	if err != nil {
		return req, mock.InvalidRequest("invalid request: %v", err)
	}
	if err := json.Unmarshal(b, &req); err != nil {
		return req, mock.InvalidRequest("invalid request: %v", err)
	}
	return req, nil
}

func encodeStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

// requestID returns the caller's x-request-id, or a fresh UUID.
func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(headerRequestID); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}

func peerAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}
