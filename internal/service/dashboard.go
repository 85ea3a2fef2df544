package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/godilite/competency-dashboard/internal/analytics"
	"github.com/godilite/competency-dashboard/internal/catalog"
	"github.com/godilite/competency-dashboard/internal/filter"
	"github.com/godilite/competency-dashboard/internal/repository/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dbTimeout = 2 * time.Second
)

var (
	ErrInvalidQuery      = errors.New("invalid query")
	ErrStorageFailure    = errors.New("storage failure")
	ErrUnknownCompetency = errors.New("unknown competency")
)

// DashboardService fetches score aggregates and shapes them into chart views.
type DashboardService struct {
	storage CompetencyScoreRepository
	catalog Catalog
	logger  *zap.Logger
}

// NewDashboardService creates a new DashboardService instance.
func NewDashboardService(storage CompetencyScoreRepository, cat Catalog, logger *zap.Logger) *DashboardService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if cat == nil {
		panic("catalog must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &DashboardService{
		storage: storage,
		catalog: cat,
		logger:  logger,
	}
}

// GetRegions returns the region -> units mapping.
func (s *DashboardService) GetRegions(ctx context.Context) (*filter.RegionMap, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.GetRegionUnits(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	regions := filter.NewRegionMap()
	for _, r := range rows {
		if r.Unit == "" {
			regions.Add(r.Region)
			continue
		}
		regions.Add(r.Region, r.Unit)
	}
	return regions, nil
}

// GetCatalog returns the competency catalog.
func (s *DashboardService) GetCatalog(ctx context.Context) ([]catalog.Competency, error) {
	comps, err := s.catalog.Competencies(ctx)
	if err != nil {
		return nil, s.storageError(err)
	}
	return comps, nil
}

// InvalidateCatalog drops the cached catalog.
func (s *DashboardService) InvalidateCatalog(ctx context.Context) error {
	if err := s.catalog.Invalidate(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

// GetBarChart is the competency bar chart: one row per unit, absent scores drawn as 0.
func (s *DashboardService) GetBarChart(ctx context.Context, q Query) (analytics.Chart, error) {
	units, err := s.resolveUnits(ctx, q.Selection)
	if err != nil {
		return analytics.Chart{}, err
	}
	ds, labels, err := s.sectionDataset(ctx, units)
	if err != nil {
		return analytics.Chart{}, err
	}

	chart := analytics.BuildUnitChart(ds, analytics.UnitChartOptions{
		Units:          units,
		Selected:       analytics.NewIDSet(q.Sections...),
		Fallback:       labels.Sections,
		Policy:         analytics.MissingAsZero,
		Metric:         analytics.MetricAverage,
		CleanUnitNames: true,
	})

	s.logger.Info("built bar chart",
		zap.Int("units", len(units)),
		zap.Int("rows", len(chart.Records)),
		zap.Int("series", len(chart.Labels)))
	return chart, nil
}

// GetHeatmap lays out units against competencies for the score or percentile metric.
func (s *DashboardService) GetHeatmap(ctx context.Context, q Query) (analytics.Heatmap, error) {
	metric, err := analytics.ParseMetric(q.Metric)
	if err != nil {
		return analytics.Heatmap{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	units, err := s.resolveUnits(ctx, q.Selection)
	if err != nil {
		return analytics.Heatmap{}, err
	}
	section, err := s.optionalCompetency(ctx, q.Section)
	if err != nil {
		return analytics.Heatmap{}, err
	}
	ds, labels, err := s.sectionDataset(ctx, units)
	if err != nil {
		return analytics.Heatmap{}, err
	}

	hm := analytics.BuildHeatmap(ds, analytics.HeatmapOptions{
		Units:    units,
		Section:  section,
		Metric:   metric,
		Fallback: labels.Sections,
	})

	s.logger.Info("built heatmap",
		zap.String("metric", string(metric)),
		zap.String("section", section),
		zap.Int("rows", len(hm.Rows)))
	return hm, nil
}

// GetRadarChart is the competency radar chart of the selected units.
func (s *DashboardService) GetRadarChart(ctx context.Context, q Query) (RadarView, error) {
	metric, err := analytics.ParseMetric(q.Metric)
	if err != nil {
		return RadarView{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	units, err := s.resolveUnits(ctx, q.Selection)
	if err != nil {
		return RadarView{}, err
	}
	ds, labels, err := s.sectionDataset(ctx, units)
	if err != nil {
		return RadarView{}, err
	}

	return radarView(ds, units, analytics.NewIDSet(q.Sections...), labels.Sections, metric), nil
}

// GetSubCompetencyRadar is the radar chart over the topics of one competency.
func (s *DashboardService) GetSubCompetencyRadar(ctx context.Context, q Query) (RadarView, error) {
	metric, err := analytics.ParseMetric(q.Metric)
	if err != nil {
		return RadarView{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if q.Section == "" {
		return RadarView{}, fmt.Errorf("%w: a competency is required", ErrInvalidQuery)
	}
	units, err := s.resolveUnits(ctx, q.Selection)
	if err != nil {
		return RadarView{}, err
	}
	section, err := s.optionalCompetency(ctx, q.Section)
	if err != nil {
		return RadarView{}, err
	}
	ds, labels, err := s.topicDataset(ctx, units, section)
	if err != nil {
		return RadarView{}, err
	}

	return radarView(ds, units, analytics.NewIDSet(q.Topics...), labels.Topics, metric), nil
}

// GetSubCompetencyChart is the topic bar chart, optionally scoped to one competency.
func (s *DashboardService) GetSubCompetencyChart(ctx context.Context, q Query) (analytics.Chart, error) {
	metric, err := analytics.ParseMetric(q.Metric)
	if err != nil {
		return analytics.Chart{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	units, err := s.resolveUnits(ctx, q.Selection)
	if err != nil {
		return analytics.Chart{}, err
	}
	section, err := s.optionalCompetency(ctx, q.Section)
	if err != nil {
		return analytics.Chart{}, err
	}
	ds, labels, err := s.topicDataset(ctx, units, section)
	if err != nil {
		return analytics.Chart{}, err
	}

	return analytics.BuildUnitChart(ds, analytics.UnitChartOptions{
		Units:    units,
		Selected: analytics.NewIDSet(q.Topics...),
		Fallback: labels.Topics,
		Policy:   analytics.MissingAsZero,
		Metric:   metric,
	}), nil
}

// GetBubbleMatrix plots the selected units per region against every competency.
func (s *DashboardService) GetBubbleMatrix(ctx context.Context, q Query) ([]analytics.BubblePoint, error) {
	regions, err := s.GetRegions(ctx)
	if err != nil {
		return nil, err
	}
	if q.Empty() {
		return nil, fmt.Errorf("%w: no units or regions selected", ErrInvalidQuery)
	}
	units := q.Resolve(regions)
	ds, labels, err := s.sectionDataset(ctx, units)
	if err != nil {
		return nil, err
	}

	return analytics.BuildBubbleMatrix(ds, selectedGroups(regions, units), labels.Sections), nil
}

// GetTalentDistribution is the unit-wise distribution, or the competency-wise one when a
// competency is given.
func (s *DashboardService) GetTalentDistribution(ctx context.Context, q Query) (analytics.Distribution, error) {
	units, err := s.resolveUnits(ctx, q.Selection)
	if err != nil {
		return analytics.Distribution{}, err
	}
	section, err := s.optionalCompetency(ctx, q.Section)
	if err != nil {
		return analytics.Distribution{}, err
	}
	ds, _, err := s.sectionDataset(ctx, units)
	if err != nil {
		return analytics.Distribution{}, err
	}

	dist := analytics.BuildDistribution(ds, analytics.DistributionOptions{Units: units, Section: section})
	if dist.Degenerate {
		s.logger.Warn("degenerate talent distribution",
			zap.Int("sample_size", dist.SampleSize),
			zap.Float64("mean", dist.Overall.Mean))
	}
	return dist, nil
}

func radarView(ds analytics.Dataset, units []string, selected analytics.IDSet, fallback map[string]string, metric analytics.Metric) RadarView {
	chart := analytics.BuildSeriesChart(ds, analytics.SeriesChartOptions{
		Units:    units,
		Selected: selected,
		Fallback: fallback,
		Policy:   analytics.MissingAsNull,
		Metric:   metric,
	})
	return RadarView{Chart: chart, Insights: analytics.BuildRadarInsights(chart)}
}

// resolveUnits turns a selection into units. Region expansion needs the region map, explicit
// units do not.
func (s *DashboardService) resolveUnits(ctx context.Context, sel filter.Selection) ([]string, error) {
	if sel.Empty() {
		return nil, fmt.Errorf("%w: no units or regions selected", ErrInvalidQuery)
	}
	var regions *filter.RegionMap
	if len(sel.Resolve(nil)) == 0 {
		r, err := s.GetRegions(ctx)
		if err != nil {
			return nil, err
		}
		regions = r
	}
	units := sel.Resolve(regions)
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: selected regions have no units", ErrInvalidQuery)
	}
	return units, nil
}

// optionalCompetency canonicalizes a competency id and checks it against the catalog.
func (s *DashboardService) optionalCompetency(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	id, ok := analytics.CanonicalID(raw)
	if !ok {
		return "", fmt.Errorf("%w: competency %q", ErrInvalidQuery, raw)
	}
	_, found, err := s.catalog.Lookup(ctx, id)
	if err != nil {
		return "", s.storageError(err)
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrUnknownCompetency, id)
	}
	return id, nil
}

func (s *DashboardService) sectionDataset(ctx context.Context, units []string) (analytics.Dataset, catalog.Labels, error) {
	var (
		rows   []models.SectionScore
		comps  []catalog.Competency
		labels catalog.Labels
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dbCtx, cancel := context.WithTimeout(gctx, dbTimeout)
		defer cancel()
		var err error
		rows, err = s.storage.GetSectionScores(dbCtx, units)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if comps, err = s.catalog.Competencies(gctx); err != nil {
			return s.storageError(err)
		}
		if labels, err = s.catalog.Labels(gctx); err != nil {
			return s.storageError(err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to fetch section scores", zap.Strings("units", units), zap.Error(err))
		return analytics.Dataset{}, catalog.Labels{}, err
	}

	scored := make(map[string]struct{})
	unitScores := analytics.NewOrderedMap[map[string]analytics.ScoreEntry]()
	for _, r := range rows {
		id := strconv.FormatInt(r.SectionID, 10)
		scored[id] = struct{}{}
		entries, ok := unitScores.Get(r.Unit)
		if !ok {
			entries = make(map[string]analytics.ScoreEntry)
			unitScores.Set(r.Unit, entries)
		}
		entries[id] = analytics.ScoreEntry{
			Average:    scoreOf(r.ScoreAverage),
			Percentile: scoreOf(r.ScorePercentile),
			UsersCount: countOf(r.UsersCount),
		}
	}

	details := analytics.NewOrderedMap[string]()
	for _, c := range comps {
		if _, ok := scored[c.ID]; ok {
			details.Set(c.ID, c.Name)
		}
	}
	return analytics.NewDataset(analytics.KindSection, details, unitScores), labels, nil
}

func (s *DashboardService) topicDataset(ctx context.Context, units []string, section string) (analytics.Dataset, catalog.Labels, error) {
	var sectionID int64
	if section != "" {
		id, err := strconv.ParseInt(section, 10, 64)
		if err != nil {
			return analytics.Dataset{}, catalog.Labels{}, fmt.Errorf("%w: competency %q is not numeric", ErrInvalidQuery, section)
		}
		sectionID = id
	}

	var (
		rows   []models.TopicScore
		comps  []catalog.Competency
		labels catalog.Labels
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dbCtx, cancel := context.WithTimeout(gctx, dbTimeout)
		defer cancel()
		var err error
		rows, err = s.storage.GetTopicScores(dbCtx, units, sectionID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if comps, err = s.catalog.Competencies(gctx); err != nil {
			return s.storageError(err)
		}
		if labels, err = s.catalog.Labels(gctx); err != nil {
			return s.storageError(err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to fetch topic scores", zap.Strings("units", units), zap.Error(err))
		return analytics.Dataset{}, catalog.Labels{}, err
	}

	scored := make(map[string]struct{})
	unitScores := analytics.NewOrderedMap[map[string]analytics.ScoreEntry]()
	for _, r := range rows {
		id := strconv.FormatInt(r.TopicID, 10)
		scored[id] = struct{}{}
		entries, ok := unitScores.Get(r.Unit)
		if !ok {
			entries = make(map[string]analytics.ScoreEntry)
			unitScores.Set(r.Unit, entries)
		}
		entries[id] = analytics.ScoreEntry{
			Average:        scoreOf(r.ScoreAverage),
			Percentile:     scoreOf(r.ScorePercentile),
			UsersCount:     countOf(r.UsersCount),
			TotalQuestions: countOf(r.TotalQuestions),
		}
	}

	details := analytics.NewOrderedMap[string]()
	for _, c := range comps {
		if section != "" && c.ID != section {
			continue
		}
		for _, t := range c.Topics {
			if _, ok := scored[t.ID]; ok {
				details.Set(t.ID, t.Name)
			}
		}
	}
	return analytics.NewDataset(analytics.KindTopic, details, unitScores), labels, nil
}

func (s *DashboardService) storageError(err error) error {
	if errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}

func selectedGroups(regions *filter.RegionMap, units []string) []analytics.RegionGroup {
	selected := make(map[string]struct{}, len(units))
	for _, u := range units {
		selected[u] = struct{}{}
	}
	var groups []analytics.RegionGroup
	for _, g := range regions.Groups() {
		var kept []string
		for _, u := range g.Units {
			if _, ok := selected[u]; ok {
				kept = append(kept, u)
			}
		}
		groups = append(groups, analytics.RegionGroup{Name: g.Name, Units: kept})
	}
	return groups
}

func scoreOf(n sql.NullFloat64) analytics.Score {
	if !n.Valid {
		return analytics.Score{}
	}
	return analytics.ScoreOf(n.Float64)
}

func countOf(n int64) analytics.Count {
	if n < 0 {
		return 0
	}
	return analytics.Count(n)
}
