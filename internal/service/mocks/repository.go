package mocks

import (
	"context"
	"errors"

	"github.com/godilite/competency-dashboard/internal/repository/models"
)

// MockCompetencyScoreRepository is a mock implementation of the CompetencyScoreRepository
// interface for testing the service layer.
type MockCompetencyScoreRepository struct {
	GetRegionUnitsFunc   func(ctx context.Context) ([]models.RegionUnit, error)
	GetSectionScoresFunc func(ctx context.Context, units []string) ([]models.SectionScore, error)
	GetTopicScoresFunc   func(ctx context.Context, units []string, sectionID int64) ([]models.TopicScore, error)
}

// GetRegionUnits implements the CompetencyScoreRepository interface
func (m *MockCompetencyScoreRepository) GetRegionUnits(ctx context.Context) ([]models.RegionUnit, error) {
	if m.GetRegionUnitsFunc != nil {
		return m.GetRegionUnitsFunc(ctx)
	}
	return nil, errors.New("GetRegionUnitsFunc not implemented")
}

// GetSectionScores implements the CompetencyScoreRepository interface
func (m *MockCompetencyScoreRepository) GetSectionScores(ctx context.Context, units []string) ([]models.SectionScore, error) {
	if m.GetSectionScoresFunc != nil {
		return m.GetSectionScoresFunc(ctx, units)
	}
	return nil, errors.New("GetSectionScoresFunc not implemented")
}

// GetTopicScores implements the CompetencyScoreRepository interface
func (m *MockCompetencyScoreRepository) GetTopicScores(ctx context.Context, units []string, sectionID int64) ([]models.TopicScore, error) {
	if m.GetTopicScoresFunc != nil {
		return m.GetTopicScoresFunc(ctx, units, sectionID)
	}
	return nil, errors.New("GetTopicScoresFunc not implemented")
}
