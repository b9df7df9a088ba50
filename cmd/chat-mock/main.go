package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/yungtweek/chat-mock/internal/config"
	"github.com/yungtweek/chat-mock/internal/grpc"
	"github.com/yungtweek/chat-mock/internal/httpapi"
	"github.com/yungtweek/chat-mock/internal/logger"
	"github.com/yungtweek/chat-mock/internal/mock"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init("", "")
		logger.Log.Fatalw("[chat-mock] failed to load config", "err", err)
	}

	logger.Init(cfg.Profile, cfg.LogLevel)
	defer logger.Sync()

	config.ApplyPresetOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatalw("[chat-mock] invalid config", "err", err)
	}

	logger.Log.Infow(
		"starting chat-mock",
		"httpAddr", cfg.HTTPAddr(),
		"grpcPort", cfg.GRPCPort,
		"profile", cfg.Profile,
		"preset", cfg.Preset,
		"chunkDelayMs", cfg.ChunkDelayMs,
		"donePayload", cfg.DonePayload,
		"models", cfg.Models,
		"errorRate", cfg.ErrorRate,
		"errorMode", cfg.ErrorMode,
		"metricsEnabled", cfg.MetricsEnabled,
	)

	client := mock.NewClient(cfg.ChunkDelay())
	gate := mock.Gate{
		Models: mock.ModelSet(cfg.Models),
		Faults: mock.Faults{Rate: cfg.ErrorRate, Mode: cfg.ErrorMode},
	}

	httpSrv := httpapi.NewServer(
		httpapi.ServerOptions{
			Addr:           cfg.HTTPAddr(),
			CORSOrigins:    cfg.CORSOrigins,
			MetricsEnabled: cfg.MetricsEnabled,
		},
		httpapi.NewCompletionsHandler(client, httpapi.HandlerOptions{
			Gate:            gate,
			DoneWithPayload: cfg.DonePayload,
		}),
	)

	var grpcSrv *grpc.Server
	if cfg.GRPCPort != 0 {
		grpcSrv = grpc.NewGRPCServer(cfg.GRPCAddr(), grpc.NewChatService(client, gate))
	}

	// Handle SIGINT/SIGTERM for a clean shutdown in local dev / docker.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.Run)
	if grpcSrv != nil {
		g.Go(grpcSrv.Run)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("[chat-mock] shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if grpcSrv != nil {
			stopped := make(chan struct{})
			go func() {
				grpcSrv.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
			case <-shutdownCtx.Done():
				grpcSrv.Stop()
			}
		}
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Log.Fatalw("[chat-mock] server error", "err", err)
	}
}
