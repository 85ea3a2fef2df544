package server

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func TestLoggingInterceptor(t *testing.T) {
	interceptor := LoggingInterceptor(zaptest.NewLogger(t))
	info := &grpc.UnaryServerInfo{FullMethod: "/competency.v1.DashboardService/GetHeatmap"}

	t.Run("successful request", func(t *testing.T) {
		resp, err := interceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
			return "success", nil
		})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if resp != "success" {
			t.Errorf("Expected 'success', got %v", resp)
		}
	})

	for _, code := range []codes.Code{codes.InvalidArgument, codes.NotFound, codes.Internal} {
		t.Run("error "+code.String(), func(t *testing.T) {
			_, err := interceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
				return nil, status.Error(code, "test error")
			})
			if status.Code(err) != code {
				t.Errorf("Expected %v, got %v", code, status.Code(err))
			}
		})
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zaptest.NewLogger(t))
	info := &grpc.UnaryServerInfo{FullMethod: "/competency.v1.DashboardService/Transform"}

	resp, err := interceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		panic("nil map")
	})
	if resp != nil {
		t.Errorf("Expected nil response, got %v", resp)
	}
	if status.Code(err) != codes.Internal {
		t.Errorf("Expected Internal, got %v", status.Code(err))
	}

	resp, err = interceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Errorf("Expected pass-through, got %v, %v", resp, err)
	}
}

func TestNewRejectsInvalidPort(t *testing.T) {
	if _, err := New(WithPort(70000)); err == nil {
		t.Error("Expected an error for port 70000")
	}
	if _, err := New(WithPort(-1)); err == nil {
		t.Error("Expected an error for port -1")
	}
}

func TestServerBuilderWithLogging(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server, err := New(
		WithPort(0),
		WithLogger(logger),
		WithLogging(true),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		if err := server.Shutdown(context.Background()); err != nil {
			t.Logf("Server shutdown error: %v", err)
		}
	}()

	if server.grpcServer == nil {
		t.Error("gRPC server should not be nil")
	}
	if server.healthServer == nil {
		t.Error("Health server should not be nil")
	}

	server.RegisterServiceWithHealth("competency.v1.DashboardService", func(s *grpc.Server) {})
	server.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Failed to dial server: %v", err)
	}
	defer conn.Close()

	healthClient := healthpb.NewHealthClient(conn)
	resp, err := healthClient.Check(ctx, &healthpb.HealthCheckRequest{Service: "competency.v1.DashboardService"})
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING status, got %v", resp.Status)
	}

	server.SetServiceHealth("competency.v1.DashboardService", healthpb.HealthCheckResponse_NOT_SERVING)
	resp, err = healthClient.Check(ctx, &healthpb.HealthCheckRequest{Service: "competency.v1.DashboardService"})
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("Expected NOT_SERVING status, got %v", resp.Status)
	}
}

func TestInterceptorChain(t *testing.T) {
	logger := zaptest.NewLogger(t)
	custom := func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(ctx, req)
	}

	if got := (&Options{}).interceptorChain(logger); len(got) != 0 {
		t.Errorf("Expected no interceptors, got %d", len(got))
	}
	if got := (&Options{recovery: true}).interceptorChain(logger); len(got) != 1 {
		t.Errorf("Expected recovery only, got %d", len(got))
	}
	opts := &Options{recovery: true, enableLogging: true}
	WithUnaryInterceptors(custom)(opts)
	if got := opts.interceptorChain(logger); len(got) != 3 {
		t.Errorf("Expected recovery, logging and custom, got %d", len(got))
	}
}
