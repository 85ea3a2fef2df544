package analytics

const (
	bubbleBaseSize   = 500
	bubbleUserFactor = 100
	regionWidth      = 0.8
	regionPadding    = 0.1
	minOpacity       = 0.2
)

// RegionGroup is one region and its units in display order.
type RegionGroup struct {
	Name  string   `json:"name"`
	Units []string `json:"units"`
}

// BubblePoint is one (unit, competency) bubble of the region matrix.
type BubblePoint struct {
	Unit       string   `json:"unit"`
	Region     string   `json:"region"`
	Competency string   `json:"competency"`
	X          float64  `json:"x"`
	Y          int      `json:"y"`
	Z          float64  `json:"z"`
	Score      *float64 `json:"score"`
	Percentile *float64 `json:"percentile"`
	UsersCount int      `json:"userCount"`
	Opacity    float64  `json:"opacity"`
}

// BuildBubbleMatrix places every unit with data in its region's column band and every
// competency of the section detail map on its own row. Bubble size follows the users count,
// opacity the percentile. Units that belong to no region are not plotted.
func BuildBubbleMatrix(ds Dataset, regions []RegionGroup, fallback map[string]string) []BubblePoint {
	points := []BubblePoint{}
	if ds.Empty() {
		return points
	}

	var competencies []Series
	for _, s := range Labels(ds, nil, fallback) {
		if ds.Details.Has(s.ID) {
			competencies = append(competencies, s)
		}
	}

	for regionIndex, region := range regions {
		var units []string
		for _, unit := range region.Units {
			if ds.Units.Has(unit) {
				units = append(units, unit)
			}
		}
		spacing := regionWidth / float64(max(len(units), 1))

		for i, unit := range units {
			entries, _ := ds.Units.Get(unit)
			x := float64(regionIndex) + regionPadding + float64(i)*spacing
			for y, c := range competencies {
				e, ok := entries[c.ID]
				if !ok {
					continue
				}
				opacity := minOpacity
				if e.Percentile.Valid {
					opacity += min(max(e.Percentile.Value, 0), 100) / 100 * (1 - minOpacity)
				}
				points = append(points, BubblePoint{
					Unit:       unit,
					Region:     region.Name,
					Competency: c.Label,
					X:          x,
					Y:          y,
					Z:          bubbleBaseSize + float64(e.UsersCount)*bubbleUserFactor,
					Score:      e.Average.Ptr(),
					Percentile: e.Percentile.Ptr(),
					UsersCount: int(e.UsersCount),
					Opacity:    opacity,
				})
			}
		}
	}
	return points
}
