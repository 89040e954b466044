// Package server runs the HTTP API, and optionally the gRPC health
// endpoint, until the process is told to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/inventory/config"
	"github.com/shashiranjanraj/inventory/internal/kernel"
	"github.com/shashiranjanraj/inventory/pkg/grpc"
	"github.com/shashiranjanraj/inventory/pkg/logger"
)

// ServiceName is reported by the gRPC health service.
const ServiceName = "inventory.Catalog"

const (
	shutdownTimeout = 15 * time.Second
	probeInterval   = 10 * time.Second
)

// Start boots the kernel, runs pending migrations and serves until SIGINT
// or SIGTERM.
func Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	k, err := kernel.Boot(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := k.Close(); err != nil {
			logger.Error("shutdown: close", "error", err)
		}
	}()

	n, err := k.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if n > 0 {
		logger.Info("migrations applied", "count", n)
	}

	httpLis, err := net.Listen("tcp", ":"+config.AppPort())
	if err != nil {
		return err
	}
	var grpcLis net.Listener
	if port := config.GRPCPort(); port != "" {
		if grpcLis, err = grpc.Listen(port); err != nil {
			httpLis.Close()
			return err
		}
	}
	return Serve(ctx, k, httpLis, grpcLis)
}

// Serve runs the HTTP API on httpLis, and the gRPC health endpoint on
// grpcLis when it is non-nil, until ctx is done. It then drains both.
func Serve(ctx context.Context, k *kernel.Kernel, httpLis, grpcLis net.Listener) error {
	handler, err := k.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		k.Feed.Run(ctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("http: serving", "addr", httpLis.Addr().String())
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	var rpc *grpc.Server
	if grpcLis != nil {
		rpc = grpc.New(ServiceName)
		g.Go(func() error { return rpc.Serve(grpcLis) })
		g.Go(func() error {
			rpc.Probe(ctx, probeInterval, pingDB(k))
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		rpc.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func pingDB(k *kernel.Kernel) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := k.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
