package grpc

import (
	"net"

	"github.com/yungtweek/chat-mock/internal/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server wraps a gRPC server, its health service and its listen address.
type Server struct {
	addr       string
	grpcServer *grpc.Server
	health     *health.Server
}

// NewGRPCServer creates a gRPC server exposing the chat service at addr
// (e.g. ":50051"), plus the standard health and reflection services.
func NewGRPCServer(addr string, svc ChatServiceServer) *Server {
	s := &Server{
		addr:       addr,
		grpcServer: grpc.NewServer(),
		health:     health.NewServer(),
	}

	RegisterChatServiceServer(s.grpcServer, svc)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(s.grpcServer)

	return s
}

// Run listens on the configured address and serves until the server stops.
func (s *Server) Run() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		logger.Log.Errorw("[grpc] failed to listen", "addr", s.addr, "err", err)
		return err
	}
	return s.Serve(lis)
}

// Serve serves on an existing listener. This call blocks.
func (s *Server) Serve(lis net.Listener) error {
	logger.Log.Infow("[grpc] starting server", "addr", lis.Addr().String())
	if err := s.grpcServer.Serve(lis); err != nil {
		logger.Log.Errorw("[grpc] server stopped with error", "err", err)
		return err
	}

	logger.Log.Info("[grpc] server stopped gracefully")
	return nil
}

// GracefulStop marks the service NOT_SERVING, then waits for in-flight RPCs.
func (s *Server) GracefulStop() {
	logger.Log.Infow("[grpc] graceful stop", "addr", s.addr)
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func (s *Server) Stop() {
	logger.Log.Infow("[grpc] stop", "addr", s.addr)
	s.health.Shutdown()
	s.grpcServer.Stop()
}
