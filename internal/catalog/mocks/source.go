package mocks

import (
	"context"
	"errors"

	"github.com/godilite/competency-dashboard/internal/repository/models"
)

// MockSource is a func-field implementation of catalog.Source.
type MockSource struct {
	GetCompetenciesFunc func(ctx context.Context) ([]models.Competency, error)
	GetTopicsFunc       func(ctx context.Context, sectionID int64) ([]models.Topic, error)
}

func (m *MockSource) GetCompetencies(ctx context.Context) ([]models.Competency, error) {
	if m.GetCompetenciesFunc != nil {
		return m.GetCompetenciesFunc(ctx)
	}
	return nil, errors.New("GetCompetenciesFunc not implemented")
}

func (m *MockSource) GetTopics(ctx context.Context, sectionID int64) ([]models.Topic, error) {
	if m.GetTopicsFunc != nil {
		return m.GetTopicsFunc(ctx, sectionID)
	}
	return nil, errors.New("GetTopicsFunc not implemented")
}
