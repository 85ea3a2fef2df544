// Package catalog serves the competency and topic catalog from a read-through cache.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/godilite/competency-dashboard/internal/repository/models"
	"github.com/godilite/competency-dashboard/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CacheKey is the single cache entry holding the whole catalog.
const CacheKey = "competency-catalog"

const defaultTTL = 30 * time.Minute

var ErrStorageFailure = errors.New("catalog storage failure")

type Topic struct {
	ID        string `json:"id"`
	SectionID string `json:"sectionId"`
	Name      string `json:"name"`
}

type Competency struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Topics []Topic `json:"topics"`
}

// Source reads the catalog from storage.
type Source interface {
	GetCompetencies(ctx context.Context) ([]models.Competency, error)
	GetTopics(ctx context.Context, sectionID int64) ([]models.Topic, error)
}

// Store is the cache the catalog lives in.
type Store interface {
	cache.Store
	Delete(ctx context.Context, keys ...string) error
}

type Catalog struct {
	source Source
	store  Store
	sf     singleflight.Group
	ttl    time.Duration
	logger *zap.Logger
}

// New builds a catalog over source. A nil store disables caching.
func New(source Source, store Store, ttl time.Duration, logger *zap.Logger) *Catalog {
	if source == nil {
		panic("nil Source provided to catalog.New")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		source: source,
		store:  store,
		ttl:    ttl,
		logger: logger.Named("catalog"),
	}
}

// Competencies returns every competency with its topics, in display order.
func (c *Catalog) Competencies(ctx context.Context) ([]Competency, error) {
	var store cache.Store
	if c.store != nil {
		store = c.store
	}
	return cache.FindAndCache(ctx, store, &c.sf, CacheKey, c.ttl, c.logger, c.load)
}

func (c *Catalog) load(ctx context.Context) ([]Competency, error) {
	sections, err := c.source.GetCompetencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	topics, err := c.source.GetTopics(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	bySection := make(map[int64][]Topic, len(sections))
	for _, t := range topics {
		bySection[t.SectionID] = append(bySection[t.SectionID], Topic{
			ID:        strconv.FormatInt(t.TopicID, 10),
			SectionID: strconv.FormatInt(t.SectionID, 10),
			Name:      t.Name,
		})
	}

	out := make([]Competency, 0, len(sections))
	for _, s := range sections {
		comp := Competency{
			ID:     strconv.FormatInt(s.SectionID, 10),
			Name:   s.Name,
			Topics: bySection[s.SectionID],
		}
		if comp.Topics == nil {
			comp.Topics = []Topic{}
		}
		out = append(out, comp)
	}

	c.logger.Debug("catalog loaded", zap.Int("competencies", len(out)), zap.Int("topics", len(topics)))
	return out, nil
}

// Labels is the id -> display name fallback table of sections and topics.
type Labels struct {
	Sections map[string]string
	Topics   map[string]string
}

// Labels builds the fallback label tables from the cached catalog.
func (c *Catalog) Labels(ctx context.Context) (Labels, error) {
	comps, err := c.Competencies(ctx)
	if err != nil {
		return Labels{}, err
	}
	labels := Labels{Sections: make(map[string]string, len(comps)), Topics: make(map[string]string)}
	for _, comp := range comps {
		labels.Sections[comp.ID] = comp.Name
		for _, t := range comp.Topics {
			labels.Topics[t.ID] = t.Name
		}
	}
	return labels, nil
}

// Lookup finds a competency by canonical id.
func (c *Catalog) Lookup(ctx context.Context, id string) (Competency, bool, error) {
	comps, err := c.Competencies(ctx)
	if err != nil {
		return Competency{}, false, err
	}
	for _, comp := range comps {
		if comp.ID == id {
			return comp, true, nil
		}
	}
	return Competency{}, false, nil
}

// Invalidate drops the cached catalog so the next read goes to storage.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Delete(ctx, CacheKey); err != nil {
		return fmt.Errorf("invalidate catalog: %w", err)
	}
	c.logger.Info("catalog invalidated")
	return nil
}
