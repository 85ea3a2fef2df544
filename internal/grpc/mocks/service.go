package mocks

import (
	"context"
	"errors"

	"github.com/godilite/competency-dashboard/internal/analytics"
	"github.com/godilite/competency-dashboard/internal/catalog"
	"github.com/godilite/competency-dashboard/internal/filter"
	"github.com/godilite/competency-dashboard/internal/service"
)

// MockDashboardService is a mock implementation of the DashboardService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockDashboardService struct {
	GetRegionsFunc            func(ctx context.Context) (*filter.RegionMap, error)
	GetCatalogFunc            func(ctx context.Context) ([]catalog.Competency, error)
	GetBarChartFunc           func(ctx context.Context, q service.Query) (analytics.Chart, error)
	GetHeatmapFunc            func(ctx context.Context, q service.Query) (analytics.Heatmap, error)
	GetRadarChartFunc         func(ctx context.Context, q service.Query) (service.RadarView, error)
	GetSubCompetencyRadarFunc func(ctx context.Context, q service.Query) (service.RadarView, error)
	GetSubCompetencyChartFunc func(ctx context.Context, q service.Query) (analytics.Chart, error)
	GetBubbleMatrixFunc       func(ctx context.Context, q service.Query) ([]analytics.BubblePoint, error)
	GetTalentDistributionFunc func(ctx context.Context, q service.Query) (analytics.Distribution, error)
	InvalidateCatalogFunc     func(ctx context.Context) error
	TransformFunc             func(ctx context.Context, view string, payload []byte, q service.Query) (any, error)
}

func (m *MockDashboardService) GetRegions(ctx context.Context) (*filter.RegionMap, error) {
	if m.GetRegionsFunc != nil {
		return m.GetRegionsFunc(ctx)
	}
	return nil, errors.New("GetRegionsFunc not implemented")
}

func (m *MockDashboardService) GetCatalog(ctx context.Context) ([]catalog.Competency, error) {
	if m.GetCatalogFunc != nil {
		return m.GetCatalogFunc(ctx)
	}
	return nil, errors.New("GetCatalogFunc not implemented")
}

func (m *MockDashboardService) GetBarChart(ctx context.Context, q service.Query) (analytics.Chart, error) {
	if m.GetBarChartFunc != nil {
		return m.GetBarChartFunc(ctx, q)
	}
	return analytics.Chart{}, errors.New("GetBarChartFunc not implemented")
}

func (m *MockDashboardService) GetHeatmap(ctx context.Context, q service.Query) (analytics.Heatmap, error) {
	if m.GetHeatmapFunc != nil {
		return m.GetHeatmapFunc(ctx, q)
	}
	return analytics.Heatmap{}, errors.New("GetHeatmapFunc not implemented")
}

func (m *MockDashboardService) GetRadarChart(ctx context.Context, q service.Query) (service.RadarView, error) {
	if m.GetRadarChartFunc != nil {
		return m.GetRadarChartFunc(ctx, q)
	}
	return service.RadarView{}, errors.New("GetRadarChartFunc not implemented")
}

func (m *MockDashboardService) GetSubCompetencyRadar(ctx context.Context, q service.Query) (service.RadarView, error) {
	if m.GetSubCompetencyRadarFunc != nil {
		return m.GetSubCompetencyRadarFunc(ctx, q)
	}
	return service.RadarView{}, errors.New("GetSubCompetencyRadarFunc not implemented")
}

func (m *MockDashboardService) GetSubCompetencyChart(ctx context.Context, q service.Query) (analytics.Chart, error) {
	if m.GetSubCompetencyChartFunc != nil {
		return m.GetSubCompetencyChartFunc(ctx, q)
	}
	return analytics.Chart{}, errors.New("GetSubCompetencyChartFunc not implemented")
}

func (m *MockDashboardService) GetBubbleMatrix(ctx context.Context, q service.Query) ([]analytics.BubblePoint, error) {
	if m.GetBubbleMatrixFunc != nil {
		return m.GetBubbleMatrixFunc(ctx, q)
	}
	return nil, errors.New("GetBubbleMatrixFunc not implemented")
}

func (m *MockDashboardService) GetTalentDistribution(ctx context.Context, q service.Query) (analytics.Distribution, error) {
	if m.GetTalentDistributionFunc != nil {
		return m.GetTalentDistributionFunc(ctx, q)
	}
	return analytics.Distribution{}, errors.New("GetTalentDistributionFunc not implemented")
}

func (m *MockDashboardService) InvalidateCatalog(ctx context.Context) error {
	if m.InvalidateCatalogFunc != nil {
		return m.InvalidateCatalogFunc(ctx)
	}
	return errors.New("InvalidateCatalogFunc not implemented")
}

func (m *MockDashboardService) Transform(ctx context.Context, view string, payload []byte, q service.Query) (any, error) {
	if m.TransformFunc != nil {
		return m.TransformFunc(ctx, view, payload, q)
	}
	return nil, errors.New("TransformFunc not implemented")
}
