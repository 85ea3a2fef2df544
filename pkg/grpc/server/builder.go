package server

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// DefaultPort is where the dashboard API listens unless configured otherwise.
const DefaultPort = 50051

type Option func(*Options)

// Options collects what New needs to stand up the dashboard gRPC endpoint.
type Options struct {
	port              int
	logger            *zap.Logger
	reflection        bool
	unaryInterceptors []grpc.UnaryServerInterceptor
	enableLogging     bool
	recovery          bool
}

func WithPort(port int) Option {
	return func(o *Options) { o.port = port }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.logger = logger }
}

// WithReflection exposes the service descriptors to grpcurl and similar tools.
func WithReflection(enabled bool) Option {
	return func(o *Options) { o.reflection = enabled }
}

// WithUnaryInterceptors appends interceptors after the built-in recovery and logging ones.
func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(o *Options) { o.unaryInterceptors = append(o.unaryInterceptors, interceptors...) }
}

// WithLogging logs every dashboard RPC with its duration and status code.
func WithLogging(enabled bool) Option {
	return func(o *Options) { o.enableLogging = enabled }
}

// WithRecovery turns a panicking view computation into codes.Internal. On by default.
func WithRecovery(enabled bool) Option {
	return func(o *Options) { o.recovery = enabled }
}

// interceptorChain orders the unary interceptors: recovery outermost so it also covers
// logging, then caller-supplied ones.
func (o *Options) interceptorChain(logger *zap.Logger) []grpc.UnaryServerInterceptor {
	var chain []grpc.UnaryServerInterceptor
	if o.recovery {
		chain = append(chain, RecoveryInterceptor(logger))
	}
	if o.enableLogging {
		chain = append(chain, LoggingInterceptor(logger))
	}
	return append(chain, o.unaryInterceptors...)
}

// Server hosts the dashboard API next to the standard health service.
type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	logger       *zap.Logger
	healthServer *health.Server
}

// New binds the listener and builds the server. Port 0 picks a free port, see Addr. The
// overall health status starts as SERVING; per-service status is set on registration.
func New(opts ...Option) (*Server, error) {
	options := &Options{port: DefaultPort, recovery: true}
	for _, opt := range opts {
		opt(options)
	}
	if options.port < 0 || options.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", options.port)
	}
	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", options.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
	}

	var serverOpts []grpc.ServerOption
	if chain := options.interceptorChain(logger); len(chain) > 0 {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(chain...))
	}
	grpcServer := grpc.NewServer(serverOpts...)
	if options.reflection {
		reflection.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer:   grpcServer,
		lis:          lis,
		logger:       logger.Named("grpc-server"),
		healthServer: healthServer,
	}, nil
}

// RegisterService hands the underlying grpc.Server to registerFunc.
func (s *Server) RegisterService(registerFunc func(s *grpc.Server)) {
	registerFunc(s.grpcServer)
}

// RegisterServiceWithHealth registers a service and reports it SERVING under serviceName.
func (s *Server) RegisterServiceWithHealth(serviceName string, registerFunc func(s *grpc.Server)) {
	s.RegisterService(registerFunc)
	if serviceName == "" {
		return
	}
	s.healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("service registered", zap.String("service", serviceName))
}

func (s *Server) SetServiceHealth(serviceName string, status healthpb.HealthCheckResponse_ServingStatus) {
	s.healthServer.SetServingStatus(serviceName, status)
	s.logger.Info("service health changed",
		zap.String("service", serviceName),
		zap.String("status", status.String()))
}

// Start serves in the background. Serve errors are logged, not returned.
func (s *Server) Start() {
	addr := s.lis.Addr().String()
	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil {
			s.logger.Error("gRPC server stopped serving", zap.Error(err))
		}
	}()
	s.logger.Info("gRPC server listening", zap.String("addr", addr))
}

// Shutdown reports NOT_SERVING, then lets in-flight view requests finish. When ctx expires
// first the remaining calls are cut off and ctx.Err is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")
	s.healthServer.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("gRPC shutdown deadline reached, stopping")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
