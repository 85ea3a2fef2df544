package analytics

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindSection Kind = iota
	KindTopic
)

func (k Kind) String() string {
	if k == KindTopic {
		return "topic"
	}
	return "section"
}

// Metric selects which numeric field of a ScoreEntry a view reads.
type Metric string

const (
	MetricAverage    Metric = "score"
	MetricPercentile Metric = "percentile"
)

// ParseMetric accepts "", "score", "average" and "percentile".
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "score", "average":
		return MetricAverage, nil
	case "percentile":
		return MetricPercentile, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Dataset is a payload with canonical ids: Details maps id -> display name in payload order,
// Units maps unit -> id -> entry in payload order.
type Dataset struct {
	Kind    Kind
	Details *OrderedMap[string]
	Units   *UnitScores
}

// Empty reports the "no data" state: either map is missing.
func (d Dataset) Empty() bool {
	return d.Details == nil || d.Units == nil
}

// NewDataset builds a dataset directly from canonical maps.
func NewDataset(kind Kind, details *OrderedMap[string], units *UnitScores) Dataset {
	return Dataset{Kind: kind, Details: details, Units: units}
}

// rowUnits returns the units rows are built for: the requested ones (deduplicated, in request
// order) or, when none are requested, every unit in payload order.
func (d Dataset) rowUnits(requested []string) []string {
	if len(requested) == 0 {
		return d.Units.Keys()
	}
	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, u := range requested {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func (d Dataset) entry(unit, id string) (ScoreEntry, bool) {
	entries, ok := d.Units.Get(unit)
	if !ok {
		return ScoreEntry{}, false
	}
	e, ok := entries[id]
	return e, ok
}
