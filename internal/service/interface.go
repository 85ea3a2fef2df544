package service

import (
	"context"

	"github.com/godilite/competency-dashboard/internal/catalog"
	"github.com/godilite/competency-dashboard/internal/repository/models"
)

// CompetencyScoreRepository defines the storage operations the dashboard reads from.
type CompetencyScoreRepository interface {
	GetRegionUnits(ctx context.Context) ([]models.RegionUnit, error)
	GetSectionScores(ctx context.Context, units []string) ([]models.SectionScore, error)
	GetTopicScores(ctx context.Context, units []string, sectionID int64) ([]models.TopicScore, error)
}

// Catalog is the cached competency catalog.
type Catalog interface {
	Competencies(ctx context.Context) ([]catalog.Competency, error)
	Labels(ctx context.Context) (catalog.Labels, error)
	Lookup(ctx context.Context, id string) (catalog.Competency, bool, error)
	Invalidate(ctx context.Context) error
}
