package analytics_test

import (
	"testing"

	"github.com/godilite/competency-dashboard/internal/analytics"
	"github.com/godilite/competency-dashboard/internal/analytics/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeatmap_Scores(t *testing.T) {
	hm := analytics.BuildHeatmap(competencyDataset(t), analytics.HeatmapOptions{
		Units:  []string{"Topic 3 (Springfield)", "Ward A - East", "ICU", "Nowhere"},
		Metric: analytics.MetricAverage,
	})

	assert.Equal(t, []string{"Communication", "Clinical Judgement", "Leadership"}, hm.Headers)
	assert.Equal(t, []analytics.CompetencyOption{
		{ID: "12", Label: "Communication"},
		{ID: "7", Label: "Clinical Judgement"},
		{ID: "3", Label: "Leadership"},
	}, hm.Options)
	require.Len(t, hm.Rows, 3)

	springfield := hm.Rows[0]
	assert.Equal(t, "Topic 3 (Springfield)", springfield.Unit)
	assert.Equal(t, analytics.HeatmapCell{Value: f(8.5), Tier: analytics.TierHighPerforming}, springfield.Values["Communication"])
	assert.Equal(t, analytics.HeatmapCell{Tier: analytics.TierNoData}, springfield.Values["Leadership"])
	assert.Equal(t, f(7.5), springfield.Overall)
	assert.Equal(t, analytics.TierAboveAverage, springfield.Tier)

	ward := hm.Rows[1]
	assert.Equal(t, f(4.5), ward.Overall)
	assert.Equal(t, analytics.TierNeedsFocus, ward.Tier)

	icu := hm.Rows[2]
	assert.Equal(t, f(7), icu.Overall)
	assert.Len(t, icu.Values, 3)
}

func TestBuildHeatmap_PercentileSingleCompetency(t *testing.T) {
	hm := analytics.BuildHeatmap(competencyDataset(t), analytics.HeatmapOptions{
		Section: "12",
		Metric:  analytics.MetricPercentile,
	})

	assert.Equal(t, []string{"Communication"}, hm.Headers)
	assert.Len(t, hm.Options, 3)
	require.Len(t, hm.Rows, 3)
	assert.Equal(t, f(90), hm.Rows[0].Overall)
	assert.Equal(t, analytics.TierTop, hm.Rows[0].Tier)
	assert.Equal(t, analytics.TierPriorityConcern, hm.Rows[1].Tier)
}

func TestBuildHeatmap_OverallRounding(t *testing.T) {
	details := analytics.NewOrderedMap[string]()
	details.Set("1", "A")
	details.Set("2", "B")
	details.Set("3", "C")
	units := analytics.NewOrderedMap[map[string]analytics.ScoreEntry]()
	units.Set("ICU", map[string]analytics.ScoreEntry{
		"1": {Average: analytics.ScoreOf(1)},
		"2": {Average: analytics.ScoreOf(2)},
		"3": {Average: analytics.ScoreOf(2)},
	})
	units.Set("ER", map[string]analytics.ScoreEntry{"1": {}})

	hm := analytics.BuildHeatmap(analytics.NewDataset(analytics.KindSection, details, units), analytics.HeatmapOptions{})

	require.Len(t, hm.Rows, 2)
	assert.Equal(t, f(1.67), hm.Rows[0].Overall)
	assert.Nil(t, hm.Rows[1].Overall)
	assert.Equal(t, analytics.TierNoData, hm.Rows[1].Tier)
}

func TestBuildHeatmap_Empty(t *testing.T) {
	hm := analytics.BuildHeatmap(analytics.Dataset{}, analytics.HeatmapOptions{})
	assert.Empty(t, hm.Headers)
	assert.NotNil(t, hm.Rows)
	assert.Equal(t, analytics.MetricAverage, hm.Metric)
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		name   string
		value  *float64
		metric analytics.Metric
		want   analytics.Tier
	}{
		{name: "absent", value: nil, metric: analytics.MetricAverage, want: analytics.TierNoData},
		{name: "score 9.0", value: f(9), metric: analytics.MetricAverage, want: analytics.TierTop},
		{name: "score 8.99", value: f(8.99), metric: analytics.MetricAverage, want: analytics.TierHighPerforming},
		{name: "score 6", value: f(6), metric: analytics.MetricAverage, want: analytics.TierAverage},
		{name: "score 3.9", value: f(3.9), metric: analytics.MetricAverage, want: analytics.TierPriorityConcern},
		{name: "percentile 70", value: f(70), metric: analytics.MetricPercentile, want: analytics.TierAboveAverage},
		{name: "percentile 50", value: f(50), metric: analytics.MetricPercentile, want: analytics.TierBelowAverage},
		{name: "percentile 40", value: f(40), metric: analytics.MetricPercentile, want: analytics.TierNeedsFocus},
		{name: "percentile 39.9", value: f(39.9), metric: analytics.MetricPercentile, want: analytics.TierPriorityConcern},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, analytics.TierFor(tc.value, tc.metric))
		})
	}
}

func TestBuildBubbleMatrix(t *testing.T) {
	regions := []analytics.RegionGroup{
		{Name: "North", Units: []string{"ICU", "Ghost", "Topic 3 (Springfield)"}},
		{Name: "South", Units: []string{"Ward A - East"}},
		{Name: "West", Units: []string{"Empty Ward"}},
	}

	points := analytics.BuildBubbleMatrix(competencyDataset(t), regions, nil)
	require.Len(t, points, 7)

	icu := points[0]
	assert.Equal(t, "ICU", icu.Unit)
	assert.Equal(t, "North", icu.Region)
	assert.Equal(t, "Communication", icu.Competency)
	assert.InDelta(t, 0.1, icu.X, 1e-9)
	assert.Equal(t, 0, icu.Y)
	assert.Equal(t, 1000.0, icu.Z)
	assert.InDelta(t, 0.76, icu.Opacity, 1e-9)

	springfield := points[1:4]
	for y, p := range springfield {
		assert.Equal(t, "Topic 3 (Springfield)", p.Unit)
		assert.InDelta(t, 0.5, p.X, 1e-9)
		assert.Equal(t, y, p.Y)
	}
	assert.Nil(t, springfield[2].Score)
	assert.InDelta(t, 0.28, springfield[2].Opacity, 1e-9)

	ward := points[4:]
	for _, p := range ward {
		assert.Equal(t, "South", p.Region)
		assert.InDelta(t, 1.1, p.X, 1e-9)
	}
	assert.Equal(t, 500.0, ward[1].Z)
	assert.Equal(t, 0, ward[1].UsersCount)
}

func TestBuildBubbleMatrix_Empty(t *testing.T) {
	points := analytics.BuildBubbleMatrix(analytics.Dataset{}, []analytics.RegionGroup{{Name: "North", Units: []string{"ICU"}}}, nil)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestBuildRadarInsights(t *testing.T) {
	chart := analytics.BuildSeriesChart(topicDataset(t), analytics.SeriesChartOptions{
		Policy: analytics.MissingAsNull,
	})

	insights := analytics.BuildRadarInsights(chart)

	require.Len(t, insights.TopUnits, 2)
	assert.Equal(t, "ICU", insights.TopUnits[0].Name)
	assert.InDelta(t, 21.25, insights.TopUnits[0].Value, 1e-9)
	assert.Equal(t, "Ward A - East", insights.TopUnits[1].Name)

	assert.Equal(t, "ICU", insights.VariantUnits[0].Name)
	assert.Zero(t, insights.VariantUnits[1].Value)

	names := make([]string, 0, len(insights.VariantCompetencies))
	for _, r := range insights.VariantCompetencies {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Handover", "Topic 102", "Topic 103"}, names)
	assert.InDelta(t, 1.125, insights.VariantCompetencies[0].Value, 1e-9)
}

func TestBuildRadarInsights_Empty(t *testing.T) {
	insights := analytics.BuildRadarInsights(analytics.Chart{})
	assert.NotNil(t, insights.TopUnits)
	assert.Empty(t, insights.VariantCompetencies)
}

func TestBuildDistribution_UnitWise(t *testing.T) {
	dist := analytics.BuildDistribution(competencyDataset(t), analytics.DistributionOptions{})

	assert.Equal(t, 6, dist.SampleSize)
	assert.InDelta(t, 40.0/6.0, dist.Overall.Mean, 1e-9)
	assert.InDelta(t, stats.SampleStdDev([]float64{8.5, 6.5, 4, 5, 7, 9}), dist.Overall.StdDev, 1e-9)
	assert.Len(t, dist.Points, 101)
	assert.False(t, dist.Degenerate)

	assert.Equal(t, stats.Summary{Mean: 7.5, StdDev: stats.SampleStdDev([]float64{8.5, 6.5})}, dist.Units["Topic 3 (Springfield)"])
	assert.InDelta(t, 4.5, dist.Units["Ward A - East"].Mean, 1e-9)
	assert.InDelta(t, 8.0, dist.Units["ICU"].Mean, 1e-9)

	assert.Equal(t, []string{"Topic 3 (Springfield)", "ICU"}, dist.AboveAverage)
	assert.Equal(t, []string{"Ward A - East"}, dist.BelowAverage)
}

func TestBuildDistribution_CompetencyWise(t *testing.T) {
	dist := analytics.BuildDistribution(competencyDataset(t), analytics.DistributionOptions{Section: "7.0"})

	assert.Equal(t, "7.0", dist.Section)
	assert.Equal(t, 1, dist.SampleSize)
	assert.Equal(t, stats.Summary{Mean: 6.5}, dist.Overall)
	assert.True(t, dist.Degenerate)
	require.Len(t, dist.Points, 101)
	assert.Equal(t, stats.DensityScale, dist.Points[65].Density)
	assert.Len(t, dist.Units, 1)
	assert.Empty(t, dist.AboveAverage)
	assert.Empty(t, dist.BelowAverage)
}

func TestBuildDistribution_NoScores(t *testing.T) {
	for name, ds := range map[string]analytics.Dataset{
		"unknown section": competencyDataset(t),
		"empty dataset":   {},
	} {
		t.Run(name, func(t *testing.T) {
			dist := analytics.BuildDistribution(ds, analytics.DistributionOptions{Section: "42"})
			assert.Empty(t, dist.Points)
			assert.NotNil(t, dist.Points)
			assert.Equal(t, stats.Summary{}, dist.Overall)
			assert.Zero(t, dist.SampleSize)
		})
	}
}

func TestBuildBubbleMatrix_OpacityClamped(t *testing.T) {
	payload, err := analytics.DecodeCompetencyResponse([]byte(`{"status": "success", "data": {
		"section_detail": {"12": {"section_name": "Communication"}},
		"unit_details": {
			"ICU": {"12": {"unit_section_score_percentile": 250, "users_count": "1e30"}},
			"Ward": {"12": {"unit_section_score_percentile": -40, "users_count": 1}}
		}}}`))
	require.NoError(t, err)

	points := analytics.BuildBubbleMatrix(payload.Dataset(), []analytics.RegionGroup{
		{Name: "North", Units: []string{"ICU", "Ward"}},
	}, nil)

	require.Len(t, points, 2)
	assert.InDelta(t, 1.0, points[0].Opacity, 1e-9)
	assert.Positive(t, points[0].Z)
	assert.InDelta(t, 0.2, points[1].Opacity, 1e-9)
}
