package service

import (
	"github.com/godilite/competency-dashboard/internal/analytics"
	"github.com/godilite/competency-dashboard/internal/filter"
)

// Query carries the filters of a dashboard view.
type Query struct {
	filter.Selection
	// Sections restricts the competencies of a bar chart.
	Sections []string `json:"sections,omitempty"`
	// Topics restricts the sub-competencies of a sub-competency chart.
	Topics []string `json:"topics,omitempty"`
	// Section scopes heat maps, sub-competency views and the distribution to one competency.
	Section string `json:"section,omitempty"`
	// Metric is "score" (default) or "percentile".
	Metric string `json:"metric,omitempty"`
}

// RadarView is a radar chart with its rankings.
type RadarView struct {
	Chart    analytics.Chart         `json:"chart"`
	Insights analytics.RadarInsights `json:"insights"`
}

// View names accepted by Transform.
const (
	ViewBar          = "bar"
	ViewHeatmap      = "heatmap"
	ViewRadar        = "radar"
	ViewSubRadar     = "sub-radar"
	ViewSubChart     = "sub-chart"
	ViewBubble       = "bubble"
	ViewDistribution = "distribution"
)

// Views lists every view Transform can build.
var Views = []string{ViewBar, ViewHeatmap, ViewRadar, ViewSubRadar, ViewSubChart, ViewBubble, ViewDistribution}

// ChartResponse is the wire form of a chart: the chart itself plus the flattened
// {dimensionKey: name, label: value} rows.
type ChartResponse struct {
	analytics.Chart
	Rows []map[string]any `json:"rows"`
}

// RadarResponse is the wire form of a RadarView.
type RadarResponse struct {
	Chart    ChartResponse           `json:"chart"`
	Insights analytics.RadarInsights `json:"insights"`
}

// Render converts a view into its wire form. Views without one are returned unchanged.
func Render(v any) any {
	switch view := v.(type) {
	case analytics.Chart:
		return ChartResponse{Chart: view, Rows: view.Rows()}
	case RadarView:
		return RadarResponse{Chart: ChartResponse{Chart: view.Chart, Rows: view.Chart.Rows()}, Insights: view.Insights}
	default:
		return v
	}
}
