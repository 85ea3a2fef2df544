package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pb "github.com/godilite/competency-dashboard/api/v1"
	"github.com/godilite/competency-dashboard/internal/catalog"
	"github.com/godilite/competency-dashboard/internal/filter"
	"github.com/godilite/competency-dashboard/internal/service"
	"github.com/godilite/competency-dashboard/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

// CacheKeyPrefix is shared by every cached view so they can be dropped together.
const CacheKeyPrefix = "grpc:"

const (
	cacheKeyRegions      CacheKeyType = CacheKeyPrefix + "regions"
	cacheKeyCatalog      CacheKeyType = CacheKeyPrefix + "catalog"
	cacheKeyBarChart     CacheKeyType = CacheKeyPrefix + "bar_chart"
	cacheKeyHeatmap      CacheKeyType = CacheKeyPrefix + "heatmap"
	cacheKeyRadar        CacheKeyType = CacheKeyPrefix + "radar"
	cacheKeySubRadar     CacheKeyType = CacheKeyPrefix + "sub_competency_radar"
	cacheKeySubChart     CacheKeyType = CacheKeyPrefix + "sub_competency_chart"
	cacheKeyBubble       CacheKeyType = CacheKeyPrefix + "bubble_matrix"
	cacheKeyDistribution CacheKeyType = CacheKeyPrefix + "talent_distribution"
)

type GRPCHandlers struct {
	pb.UnimplementedDashboardServiceServer
	dashboard DashboardService
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers. A nil cache only collapses concurrent
// identical requests.
func NewGRPCHandlers(dashboard DashboardService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if dashboard == nil {
		panic("nil DashboardService provided to NewGRPCHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		dashboard: dashboard,
		cache:     cache,
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  ttl,
	}
}

func (s *GRPCHandlers) parseQuery(req *structpb.Struct) (service.Query, error) {
	var q service.Query
	if err := pb.DecodeRequest(req, &q); err != nil {
		return service.Query{}, status.Errorf(codes.InvalidArgument, "malformed query: %v", err)
	}
	return q, nil
}

// normalizeKey builds the cache key of a query. Unit order is significant, it decides row
// order.
func normalizeKey(prefix CacheKeyType, q service.Query) string {
	raw, _ := json.Marshal(q)
	return fmt.Sprintf("%s:%s", prefix, raw)
}

func (s *GRPCHandlers) store() cache.Store {
	if s.cache == nil {
		return nil
	}
	return s.cache
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrInvalidQuery):
		s.logger.Info("invalid query", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrUnknownCompetency):
		s.logger.Info("unknown competency", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) respond(ctx context.Context, op string, v any) (*structpb.Struct, error) {
	out, err := pb.ResponseStruct(service.Render(v))
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

// serveQuery runs a cached query view.
func serveQuery[T any](ctx context.Context, s *GRPCHandlers, req *structpb.Struct, op string, prefix CacheKeyType, fetch func(context.Context, service.Query) (T, error)) (*structpb.Struct, error) {
	q, err := s.parseQuery(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	v, err := cache.FindAndCache(ctx, s.store(), &s.sfGroup, normalizeKey(prefix, q), s.cacheTTL, s.logger, func(fetchCtx context.Context) (T, error) {
		return fetch(fetchCtx, q)
	})
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return s.respond(ctx, op, v)
}

func (s *GRPCHandlers) GetRegions(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	regions, err := cache.FindAndCache(ctx, s.store(), &s.sfGroup, string(cacheKeyRegions), s.cacheTTL, s.logger, func(fetchCtx context.Context) (*filter.RegionMap, error) {
		return s.dashboard.GetRegions(fetchCtx)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetRegions", err)
	}
	return s.respond(ctx, "GetRegions", regions)
}

func (s *GRPCHandlers) GetCatalog(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	comps, err := cache.FindAndCache(ctx, s.store(), &s.sfGroup, string(cacheKeyCatalog), s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]catalog.Competency, error) {
		return s.dashboard.GetCatalog(fetchCtx)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetCatalog", err)
	}
	return s.respond(ctx, "GetCatalog", comps)
}

func (s *GRPCHandlers) GetBarChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return serveQuery(ctx, s, req, "GetBarChart", cacheKeyBarChart, s.dashboard.GetBarChart)
}

func (s *GRPCHandlers) GetHeatmap(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return serveQuery(ctx, s, req, "GetHeatmap", cacheKeyHeatmap, s.dashboard.GetHeatmap)
}

func (s *GRPCHandlers) GetRadarChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return serveQuery(ctx, s, req, "GetRadarChart", cacheKeyRadar, s.dashboard.GetRadarChart)
}

func (s *GRPCHandlers) GetSubCompetencyRadar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return serveQuery(ctx, s, req, "GetSubCompetencyRadar", cacheKeySubRadar, s.dashboard.GetSubCompetencyRadar)
}

func (s *GRPCHandlers) GetSubCompetencyChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return serveQuery(ctx, s, req, "GetSubCompetencyChart", cacheKeySubChart, s.dashboard.GetSubCompetencyChart)
}

func (s *GRPCHandlers) GetBubbleMatrix(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return serveQuery(ctx, s, req, "GetBubbleMatrix", cacheKeyBubble, s.dashboard.GetBubbleMatrix)
}

func (s *GRPCHandlers) GetTalentDistribution(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return serveQuery(ctx, s, req, "GetTalentDistribution", cacheKeyDistribution, s.dashboard.GetTalentDistribution)
}

// InvalidateCatalog drops the cached catalog and every cached view built from it.
func (s *GRPCHandlers) InvalidateCatalog(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	if err := s.dashboard.InvalidateCatalog(ctx); err != nil {
		return nil, s.handleError(ctx, "InvalidateCatalog", err)
	}
	if s.cache != nil {
		if err := s.cache.DeletePrefix(ctx, CacheKeyPrefix); err != nil {
			s.logger.Warn("failed to drop cached views", zap.Error(err))
		}
	}
	return s.respond(ctx, "InvalidateCatalog", map[string]bool{"invalidated": true})
}

// transformRequest is the part of a Transform request beyond the query fields.
type transformRequest struct {
	View    string          `json:"view"`
	Payload json.RawMessage `json:"payload"`
}

// Transform normalizes the analytics payload carried in the request. The payload is either
// the enveloped JSON object or a string holding it.
func (s *GRPCHandlers) Transform(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := s.parseQuery(req)
	if err != nil {
		return nil, err
	}
	var tr transformRequest
	if err := pb.DecodeRequest(req, &tr); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed transform request: %v", err)
	}
	if tr.View == "" {
		return nil, status.Error(codes.InvalidArgument, "view is required")
	}
	payload := []byte(tr.Payload)
	var text string
	if json.Unmarshal(tr.Payload, &text) == nil {
		payload = []byte(text)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	v, err := s.dashboard.Transform(ctx, tr.View, payload, q)
	if err != nil {
		return nil, s.handleError(ctx, "Transform", err)
	}
	return s.respond(ctx, "Transform", v)
}
