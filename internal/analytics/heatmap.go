package analytics

import "github.com/godilite/competency-dashboard/internal/analytics/stats"

// Tier is a heat map legend band.
type Tier string

const (
	TierTop             Tier = "Top Tier"
	TierHighPerforming  Tier = "High Performing"
	TierAboveAverage    Tier = "Above Average"
	TierAverage         Tier = "Average"
	TierBelowAverage    Tier = "Below Average"
	TierNeedsFocus      Tier = "Needs Focus"
	TierPriorityConcern Tier = "Priority Concern"
	TierNoData          Tier = "No Data"
)

var tierBands = []struct {
	min  float64
	tier Tier
}{
	{90, TierTop},
	{80, TierHighPerforming},
	{70, TierAboveAverage},
	{60, TierAverage},
	{50, TierBelowAverage},
	{40, TierNeedsFocus},
}

// TierFor classifies a cell. Scores (0-10) are scaled to the 0-100 percentile range first.
func TierFor(v *float64, m Metric) Tier {
	if v == nil {
		return TierNoData
	}
	normalized := *v
	if m != MetricPercentile {
		normalized *= 10
	}
	for _, band := range tierBands {
		if normalized >= band.min {
			return band.tier
		}
	}
	return TierPriorityConcern
}

// CompetencyOption is one entry of the heat map competency filter.
type CompetencyOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// HeatmapCell is one (unit, competency) value with its legend band.
type HeatmapCell struct {
	Value *float64 `json:"value"`
	Tier  Tier     `json:"tier"`
}

type HeatmapRow struct {
	Unit    string                 `json:"unit"`
	Values  map[string]HeatmapCell `json:"values"`
	Overall *float64               `json:"overall"`
	Tier    Tier                   `json:"tier"`
}

type Heatmap struct {
	Metric  Metric             `json:"metric"`
	Headers []string           `json:"headers"`
	Rows    []HeatmapRow       `json:"rows"`
	Options []CompetencyOption `json:"competencyOptions"`
}

// HeatmapOptions configures BuildHeatmap. An empty Section shows every competency.
type HeatmapOptions struct {
	Units    []string
	Section  string
	Metric   Metric
	Fallback map[string]string
}

// BuildHeatmap lays out units against the competencies of the section detail map. Missing
// cells are unknown, and each row carries the mean of its present cells rounded to two
// decimals.
func BuildHeatmap(ds Dataset, opts HeatmapOptions) Heatmap {
	hm := Heatmap{
		Metric:  opts.Metric,
		Headers: []string{},
		Rows:    []HeatmapRow{},
		Options: []CompetencyOption{},
	}
	if hm.Metric == "" {
		hm.Metric = MetricAverage
	}
	if ds.Empty() {
		return hm
	}

	var selected IDSet
	if opts.Section != "" {
		selected = NewIDSet(opts.Section)
	}

	columns := make([]Series, 0, ds.Details.Len())
	for _, s := range Labels(ds, nil, opts.Fallback) {
		if !ds.Details.Has(s.ID) {
			continue
		}
		hm.Options = append(hm.Options, CompetencyOption{ID: s.ID, Label: s.Label})
		if selected.Allows(s.ID) {
			columns = append(columns, s)
			hm.Headers = append(hm.Headers, s.Label)
		}
	}

	for _, unit := range ds.rowUnits(opts.Units) {
		entries, ok := ds.Units.Get(unit)
		if !ok {
			continue
		}
		row := HeatmapRow{Unit: unit, Values: make(map[string]HeatmapCell, len(columns))}
		var present []float64
		for _, col := range columns {
			e, ok := entries[col.ID]
			v := cellValue(e, ok, hm.Metric, MissingAsNull)
			if v != nil {
				present = append(present, *v)
			}
			row.Values[col.Label] = HeatmapCell{Value: v, Tier: TierFor(v, hm.Metric)}
		}
		if len(present) > 0 {
			overall := stats.Round(stats.Mean(present), 2)
			row.Overall = &overall
		}
		row.Tier = TierFor(row.Overall, hm.Metric)
		hm.Rows = append(hm.Rows, row)
	}
	return hm
}
