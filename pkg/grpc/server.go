// Package grpc runs the gRPC side listener: the standard health service
// (grpc.health.v1.Health) plus server reflection, wrapped in recovery,
// logging and metrics interceptors.
//
//	srv := grpc.New("inventory.Catalog")
//	go srv.Serve(lis)
//	go srv.Probe(ctx, 10*time.Second, db.PingContext)
//	defer srv.Stop()
package grpc

import (
	"context"
	"errors"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
)

// Server is a gRPC server whose health status tracks one named service.
type Server struct {
	srv     *grpc.Server
	health  *health.Server
	service string
}

// New builds a Server reporting SERVING for "" and service.
func New(service string) *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor,
			loggingInterceptor,
			metricsInterceptor,
		),
		grpc.MaxRecvMsgSize(4*1024*1024),
		grpc.MaxSendMsgSize(4*1024*1024),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(service, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)

	reflection.Register(srv)

	return &Server{srv: srv, health: hs, service: service}
}

// Listen opens a TCP listener on port.
func Listen(port string) (net.Listener, error) {
	return net.Listen("tcp", ":"+port)
}

// Serve blocks accepting connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	logger.Info("grpc: serving", "addr", lis.Addr().String())
	err := s.srv.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// SetServing flips the health status of the tracked service.
func (s *Server) SetServing(ok bool) {
	st := grpc_health_v1.HealthCheckResponse_SERVING
	if !ok {
		st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(s.service, st)
}

// Probe runs check every interval until ctx ends and mirrors the result
// into the health status.
func (s *Server) Probe(ctx context.Context, interval time.Duration, check func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cctx, cancel := context.WithTimeout(ctx, interval)
			err := check(cctx)
			cancel()
			if ok := err == nil; ok != healthy {
				healthy = ok
				logger.Warn("grpc: health changed", "service", s.service, "serving", ok, "error", err)
				s.SetServing(ok)
			}
		}
	}
}

// Stop marks every service NOT_SERVING and waits for in-flight RPCs.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	s.health.Shutdown()
	s.srv.GracefulStop()
}

func recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("grpc: panic recovered",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logger.WithCtx(ctx).Debug("grpc: request",
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"code", status.Code(err).String(),
	)
	return resp, err
}

func metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	metrics.GRPCHandled.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	metrics.GRPCDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	return resp, err
}
