package service

import (
	"context"
	"fmt"

	"github.com/godilite/competency-dashboard/internal/analytics"
	"go.uber.org/zap"
)

// Transform normalizes a raw analytics payload into one of the dashboard views. It reads
// nothing from storage except the region map, which bubble matrices and region selections
// need. With no selection every unit of the payload is used.
func (s *DashboardService) Transform(ctx context.Context, view string, payload []byte, q Query) (any, error) {
	metric, err := analytics.ParseMetric(q.Metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	section := ""
	if q.Section != "" {
		id, ok := analytics.CanonicalID(q.Section)
		if !ok {
			return nil, fmt.Errorf("%w: competency %q", ErrInvalidQuery, q.Section)
		}
		section = id
	}

	var ds analytics.Dataset
	switch view {
	case ViewSubRadar, ViewSubChart:
		p, err := analytics.DecodeTopicResponse(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: unreadable payload: %v", ErrInvalidQuery, err)
		}
		if section != "" {
			ds = p.SectionDataset(section)
		} else {
			ds = p.Dataset()
		}
	case ViewBar, ViewHeatmap, ViewRadar, ViewBubble, ViewDistribution:
		p, err := analytics.DecodeCompetencyResponse(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: unreadable payload: %v", ErrInvalidQuery, err)
		}
		ds = p.Dataset()
	default:
		return nil, fmt.Errorf("%w: unknown view %q", ErrInvalidQuery, view)
	}

	var units []string
	if !q.Empty() {
		if units, err = s.resolveUnits(ctx, q.Selection); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("transforming payload",
		zap.String("view", view),
		zap.Int("payload_bytes", len(payload)),
		zap.Bool("empty", ds.Empty()))

	switch view {
	case ViewBar:
		return analytics.BuildUnitChart(ds, analytics.UnitChartOptions{
			Units:          units,
			Selected:       analytics.NewIDSet(q.Sections...),
			Policy:         analytics.MissingAsZero,
			Metric:         analytics.MetricAverage,
			CleanUnitNames: true,
		}), nil
	case ViewHeatmap:
		return analytics.BuildHeatmap(ds, analytics.HeatmapOptions{
			Units:   units,
			Section: section,
			Metric:  metric,
		}), nil
	case ViewRadar:
		return radarView(ds, units, analytics.NewIDSet(q.Sections...), nil, metric), nil
	case ViewSubRadar:
		return radarView(ds, units, analytics.NewIDSet(q.Topics...), nil, metric), nil
	case ViewSubChart:
		return analytics.BuildUnitChart(ds, analytics.UnitChartOptions{
			Units:    units,
			Selected: analytics.NewIDSet(q.Topics...),
			Policy:   analytics.MissingAsZero,
			Metric:   metric,
		}), nil
	case ViewBubble:
		regions, err := s.GetRegions(ctx)
		if err != nil {
			return nil, err
		}
		if units == nil {
			units = regions.AllUnits()
		}
		return analytics.BuildBubbleMatrix(ds, selectedGroups(regions, units), nil), nil
	default:
		return analytics.BuildDistribution(ds, analytics.DistributionOptions{Units: units, Section: section}), nil
	}
}
