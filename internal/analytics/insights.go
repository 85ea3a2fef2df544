package analytics

import (
	"sort"

	"github.com/godilite/competency-dashboard/internal/analytics/stats"
)

// Ranked is a name with the value it was ranked by.
type Ranked struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// RadarInsights are the rankings shown next to the radar chart.
type RadarInsights struct {
	TopUnits            []Ranked `json:"topUnits"`
	VariantUnits        []Ranked `json:"variantUnits"`
	VariantCompetencies []Ranked `json:"variantCompetencies"`
}

// BuildRadarInsights ranks the series of a radar chart (dimension "subject", one field per
// unit). Units are ranked by the area they cover, the sum of their present values, and by
// their spread across competencies; competencies by their spread across units. Spread is the
// population standard deviation of the present values. Ties keep chart order.
func BuildRadarInsights(chart Chart) RadarInsights {
	insights := RadarInsights{
		TopUnits:            []Ranked{},
		VariantUnits:        []Ranked{},
		VariantCompetencies: []Ranked{},
	}
	if chart.Empty() {
		return insights
	}

	byUnit := make(map[string][]float64, len(chart.Labels))
	for _, rec := range chart.Records {
		var values []float64
		for _, unit := range chart.Labels {
			if v := rec.Values[unit]; v != nil {
				values = append(values, *v)
				byUnit[unit] = append(byUnit[unit], *v)
			}
		}
		insights.VariantCompetencies = append(insights.VariantCompetencies,
			Ranked{Name: rec.Dimension, Value: stats.PopulationStdDev(values)})
	}

	for _, unit := range chart.Labels {
		values := byUnit[unit]
		area := 0.0
		for _, v := range values {
			area += v
		}
		insights.TopUnits = append(insights.TopUnits, Ranked{Name: unit, Value: area})
		insights.VariantUnits = append(insights.VariantUnits,
			Ranked{Name: unit, Value: stats.PopulationStdDev(values)})
	}

	rankDescending(insights.TopUnits)
	rankDescending(insights.VariantUnits)
	rankDescending(insights.VariantCompetencies)
	return insights
}

func rankDescending(r []Ranked) {
	sort.SliceStable(r, func(i, j int) bool { return r[i].Value > r[j].Value })
}
