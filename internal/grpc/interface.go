package grpc

import (
	"context"
	"time"

	"github.com/godilite/competency-dashboard/internal/analytics"
	"github.com/godilite/competency-dashboard/internal/catalog"
	"github.com/godilite/competency-dashboard/internal/filter"
	"github.com/godilite/competency-dashboard/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type DashboardService interface {
	GetRegions(ctx context.Context) (*filter.RegionMap, error)
	GetCatalog(ctx context.Context) ([]catalog.Competency, error)
	GetBarChart(ctx context.Context, q service.Query) (analytics.Chart, error)
	GetHeatmap(ctx context.Context, q service.Query) (analytics.Heatmap, error)
	GetRadarChart(ctx context.Context, q service.Query) (service.RadarView, error)
	GetSubCompetencyRadar(ctx context.Context, q service.Query) (service.RadarView, error)
	GetSubCompetencyChart(ctx context.Context, q service.Query) (analytics.Chart, error)
	GetBubbleMatrix(ctx context.Context, q service.Query) ([]analytics.BubblePoint, error)
	GetTalentDistribution(ctx context.Context, q service.Query) (analytics.Distribution, error)
	InvalidateCatalog(ctx context.Context) error
	Transform(ctx context.Context, view string, payload []byte, q service.Query) (any, error)
}
