package mocks

import (
	"context"
	"errors"

	"github.com/godilite/competency-dashboard/internal/catalog"
)

// MockCatalog is a mock implementation of the Catalog interface.
type MockCatalog struct {
	CompetenciesFunc func(ctx context.Context) ([]catalog.Competency, error)
	InvalidateFunc   func(ctx context.Context) error
}

// Competencies implements the Catalog interface
func (m *MockCatalog) Competencies(ctx context.Context) ([]catalog.Competency, error) {
	if m.CompetenciesFunc != nil {
		return m.CompetenciesFunc(ctx)
	}
	return nil, errors.New("CompetenciesFunc not implemented")
}

// Labels derives the label tables from CompetenciesFunc.
func (m *MockCatalog) Labels(ctx context.Context) (catalog.Labels, error) {
	comps, err := m.Competencies(ctx)
	if err != nil {
		return catalog.Labels{}, err
	}
	labels := catalog.Labels{Sections: map[string]string{}, Topics: map[string]string{}}
	for _, c := range comps {
		labels.Sections[c.ID] = c.Name
		for _, t := range c.Topics {
			labels.Topics[t.ID] = t.Name
		}
	}
	return labels, nil
}

// Lookup searches CompetenciesFunc.
func (m *MockCatalog) Lookup(ctx context.Context, id string) (catalog.Competency, bool, error) {
	comps, err := m.Competencies(ctx)
	if err != nil {
		return catalog.Competency{}, false, err
	}
	for _, c := range comps {
		if c.ID == id {
			return c, true, nil
		}
	}
	return catalog.Competency{}, false, nil
}

// Invalidate implements the Catalog interface
func (m *MockCatalog) Invalidate(ctx context.Context) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx)
	}
	return nil
}
