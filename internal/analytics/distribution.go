package analytics

import (
	"math"

	"github.com/godilite/competency-dashboard/internal/analytics/stats"
)

// Distribution is the talent distribution view: the density curve of the overall score
// population, the per-unit summaries and the units above and below the overall mean.
type Distribution struct {
	Section      string                   `json:"section,omitempty"`
	Points       []stats.Point            `json:"points"`
	Overall      stats.Summary            `json:"overall"`
	Units        map[string]stats.Summary `json:"units"`
	AboveAverage []string                 `json:"aboveAverage"`
	BelowAverage []string                 `json:"belowAverage"`
	Degenerate   bool                     `json:"degenerate"`
	SampleSize   int                      `json:"sampleSize"`
}

// DistributionOptions configures BuildDistribution. An empty Section aggregates every
// competency of a unit (unit-wise view); a set Section uses only that competency.
type DistributionOptions struct {
	Units   []string
	Section string
}

// BuildDistribution collects average scores per unit, aggregates them and samples the density
// curve of the overall mean and sample standard deviation. Without any score the result is an
// empty distribution with zero statistics.
func BuildDistribution(ds Dataset, opts DistributionOptions) Distribution {
	dist := Distribution{
		Section:      opts.Section,
		Points:       []stats.Point{},
		Units:        map[string]stats.Summary{},
		AboveAverage: []string{},
		BelowAverage: []string{},
	}
	if ds.Empty() {
		return dist
	}

	var section string
	if opts.Section != "" {
		id, ok := canonicalString(opts.Section)
		if !ok {
			return dist
		}
		section = id
	}

	ids := Labels(ds, nil, nil)
	entities := make([]stats.EntityScores, 0, ds.Units.Len())
	for _, unit := range ds.rowUnits(opts.Units) {
		entries, ok := ds.Units.Get(unit)
		if !ok {
			continue
		}
		var scores []float64
		for _, s := range ids {
			if section != "" && s.ID != section {
				continue
			}
			if e, ok := entries[s.ID]; ok && e.Average.Valid {
				scores = append(scores, e.Average.Value)
			}
		}
		entities = append(entities, stats.EntityScores{Name: unit, Scores: scores})
	}

	agg := stats.Aggregate(entities)
	if agg.SampleSize == 0 {
		return dist
	}

	dist.Overall = agg.Overall
	dist.Units = agg.ByName()
	dist.AboveAverage = agg.AboveAverage
	dist.BelowAverage = agg.BelowAverage
	dist.SampleSize = agg.SampleSize
	sd := agg.Overall.StdDev
	dist.Degenerate = sd <= 0 || math.IsNaN(sd) || math.IsInf(sd, 0)
	dist.Points = stats.DensityCurve(agg.Overall.Mean, sd)
	return dist
}
