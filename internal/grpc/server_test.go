package grpc

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/yungtweek/chat-mock/internal/mock"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// startServer serves the chat service on an in-memory listener and returns a client connection to it.
func startServer(t *testing.T, gate mock.Gate) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", NewChatService(mock.NewClient(0), gate))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestServerUnary verifies the unary method is reachable over the wire and echoes the request id header.
func TestServerUnary(t *testing.T) {
	conn := startServer(t, mock.Gate{})
	ctx := metadata.AppendToOutgoingContext(testContext(t), headerRequestID, "wire-1")

	out := new(structpb.Struct)
	var header metadata.MD
	if err := conn.Invoke(ctx, ChatCompletionMethod, userRequest(t, "x", "over the wire"), out, grpc.Header(&header)); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := out.GetFields()["answer"].GetStringValue(); got != "Echo: over the wire" {
		t.Fatalf("answer mismatch: %q", got)
	}
	if got := header.Get(headerRequestID); len(got) != 1 || got[0] != "wire-1" {
		t.Fatalf("request id header mismatch: %v", got)
	}
}

// TestServerUnaryError verifies domain errors cross the wire as status codes.
func TestServerUnaryError(t *testing.T) {
	conn := startServer(t, mock.Gate{Faults: mock.Faults{Rate: 1, Mode: "429"}})

	err := conn.Invoke(testContext(t), ChatCompletionMethod, userRequest(t, "x", "hi"), new(structpb.Struct))
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", err)
	}
}

// TestServerStream verifies the server-streaming method delivers every chunk and then closes cleanly.
func TestServerStream(t *testing.T) {
	conn := startServer(t, mock.Gate{})

	cs, err := conn.NewStream(testContext(t), &chatServiceDesc.Streams[0], ChatCompletionStreamMethod)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	if err := cs.SendMsg(userRequest(t, "x", "one two three")); err != nil {
		t.Fatalf("SendMsg: %v", err)
	}
	if err := cs.CloseSend(); err != nil {
		t.Fatalf("CloseSend: %v", err)
	}

	var got []*structpb.Struct
	for {
		m := new(structpb.Struct)
		err := cs.RecvMsg(m)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("RecvMsg: %v", err)
		}
		got = append(got, m)
	}

	if len(got) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(got))
	}
	_, done, last := chunkAnswer(t, got[3])
	if !done || last.Answer != "Echo: one two three" {
		t.Fatalf("unexpected terminal chunk: done=%v answer=%q", done, last.Answer)
	}
}

func TestServerHealth(t *testing.T) {
	conn := startServer(t, mock.Gate{})

	resp, err := healthpb.NewHealthClient(conn).Check(testContext(t), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", resp.GetStatus())
	}
}
