package analytics

// MissingValuePolicy decides what a chart cell holds when a unit has no score for a series.
type MissingValuePolicy int

const (
	// MissingAsZero renders absence as 0 (bar charts).
	MissingAsZero MissingValuePolicy = iota
	// MissingAsNull renders absence as an unknown value (heat maps, radar charts).
	MissingAsNull
)

const (
	DimensionUnit    = "unit"
	DimensionSubject = "subject"

	originalUnitKey = "originalUnit"
)

// ChartRecord is one chart row: a dimension value plus one value per series label.
// A nil value is unknown.
type ChartRecord struct {
	Dimension string              `json:"dimension"`
	Original  string              `json:"original,omitempty"`
	Values    map[string]*float64 `json:"values"`
}

// Chart is an ordered label list and the records that carry one field per label.
type Chart struct {
	DimensionKey string        `json:"dimension_key"`
	Series       []Series      `json:"series"`
	Labels       []string      `json:"labels"`
	Records      []ChartRecord `json:"records"`
}

func emptyChart(dimensionKey string) Chart {
	return Chart{
		DimensionKey: dimensionKey,
		Series:       []Series{},
		Labels:       []string{},
		Records:      []ChartRecord{},
	}
}

// Empty reports whether the chart has nothing to draw.
func (c Chart) Empty() bool {
	return len(c.Labels) == 0 || len(c.Records) == 0
}

// Rows flattens records into the {dimensionKey: name, label: value} objects chart
// libraries consume.
func (c Chart) Rows() []map[string]any {
	rows := make([]map[string]any, 0, len(c.Records))
	for _, rec := range c.Records {
		row := make(map[string]any, len(c.Labels)+2)
		for _, label := range c.Labels {
			if v := rec.Values[label]; v != nil {
				row[label] = *v
			} else {
				row[label] = nil
			}
		}
		if rec.Original != "" {
			row[originalUnitKey] = rec.Original
		}
		row[c.DimensionKey] = rec.Dimension
		rows = append(rows, row)
	}
	return rows
}

// UnitChartOptions configures BuildUnitChart.
type UnitChartOptions struct {
	Units          []string
	Selected       IDSet
	Fallback       map[string]string
	Policy         MissingValuePolicy
	Metric         Metric
	CleanUnitNames bool
}

// BuildUnitChart produces one record per unit with one field per section or topic label.
// Rows follow opts.Units; units without any entry in the payload produce no row.
func BuildUnitChart(ds Dataset, opts UnitChartOptions) Chart {
	chart := emptyChart(DimensionUnit)
	if ds.Empty() {
		return chart
	}

	chart.Series = labelsAvoiding(ds, opts.Selected, opts.Fallback, DimensionUnit, originalUnitKey)
	chart.Labels = seriesLabels(chart.Series)

	for _, unit := range ds.rowUnits(opts.Units) {
		entries, ok := ds.Units.Get(unit)
		if !ok {
			continue
		}
		rec := ChartRecord{
			Dimension: unit,
			Values:    make(map[string]*float64, len(chart.Series)),
		}
		if opts.CleanUnitNames {
			rec.Dimension = CleanUnitName(unit)
			rec.Original = unit
		}
		for _, s := range chart.Series {
			e, present := entries[s.ID]
			rec.Values[s.Label] = cellValue(e, present, opts.Metric, opts.Policy)
		}
		chart.Records = append(chart.Records, rec)
	}
	return chart
}

// SeriesChartOptions configures BuildSeriesChart.
type SeriesChartOptions struct {
	Units    []string
	Selected IDSet
	Fallback map[string]string
	Policy   MissingValuePolicy
	Metric   Metric
}

// BuildSeriesChart is the radar layout: one record per section or topic (dimension
// "subject") with one field per unit. Units without data are not series.
func BuildSeriesChart(ds Dataset, opts SeriesChartOptions) Chart {
	chart := emptyChart(DimensionSubject)
	if ds.Empty() {
		return chart
	}

	used := newLabelSet(DimensionSubject)
	for _, unit := range ds.rowUnits(opts.Units) {
		if ds.Units.Has(unit) {
			label := used.claim(unit, "unit")
			chart.Series = append(chart.Series, Series{ID: unit, Label: label})
			chart.Labels = append(chart.Labels, label)
		}
	}

	for _, s := range Labels(ds, opts.Selected, opts.Fallback) {
		rec := ChartRecord{
			Dimension: s.Label,
			Values:    make(map[string]*float64, len(chart.Series)),
		}
		for _, unit := range chart.Series {
			e, present := ds.entry(unit.ID, s.ID)
			rec.Values[unit.Label] = cellValue(e, present, opts.Metric, opts.Policy)
		}
		chart.Records = append(chart.Records, rec)
	}
	return chart
}

func cellValue(e ScoreEntry, present bool, m Metric, policy MissingValuePolicy) *float64 {
	if present {
		if v := e.Value(m); v.Valid {
			return v.Ptr()
		}
	}
	if policy == MissingAsZero {
		zero := 0.0
		return &zero
	}
	return nil
}
