package stats

// EntityScores are the scores collected for one named entity, usually a unit.
type EntityScores struct {
	Name   string
	Scores []float64
}

// EntitySummary is the summary of one entity.
type EntitySummary struct {
	Name string `json:"name"`
	Summary
}

// Aggregation is the per-entity and overall view of a score population.
type Aggregation struct {
	Entities     []EntitySummary `json:"entities"`
	Overall      Summary         `json:"overall"`
	AboveAverage []string        `json:"aboveAverage"`
	BelowAverage []string        `json:"belowAverage"`
	SampleSize   int             `json:"sampleSize"`
}

// ByName indexes the entity summaries.
func (a Aggregation) ByName() map[string]Summary {
	out := make(map[string]Summary, len(a.Entities))
	for _, e := range a.Entities {
		out[e.Name] = e.Summary
	}
	return out
}

// Aggregate summarizes every entity holding at least one score, and the concatenation of all
// scores. Entities are classified against the overall mean in input order.
func Aggregate(entities []EntityScores) Aggregation {
	agg := Aggregation{
		Entities:     []EntitySummary{},
		AboveAverage: []string{},
		BelowAverage: []string{},
	}

	var all []float64
	for _, e := range entities {
		if len(e.Scores) == 0 {
			continue
		}
		agg.Entities = append(agg.Entities, EntitySummary{Name: e.Name, Summary: Summarize(e.Scores)})
		all = append(all, e.Scores...)
	}

	agg.SampleSize = len(all)
	agg.Overall = Summarize(all)
	agg.AboveAverage, agg.BelowAverage = Classify(agg.Entities, agg.Overall.Mean)
	return agg
}

// Classify splits entities into those whose mean is strictly above and strictly below
// threshold. Entities exactly at the threshold are in neither list.
func Classify(entities []EntitySummary, threshold float64) (above, below []string) {
	above, below = []string{}, []string{}
	for _, e := range entities {
		switch {
		case e.Mean > threshold:
			above = append(above, e.Name)
		case e.Mean < threshold:
			below = append(below, e.Name)
		}
	}
	return above, below
}
