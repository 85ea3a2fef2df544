package analytics

import (
	"fmt"
	"strings"
)

// Series is one chart series: a canonical id and its resolved display label.
type Series struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Labels resolves the ordered, duplicate-free series of a dataset. Ids come from the detail
// map in payload order, followed by ids only present in unit details in id order. Only ids
// allowed by selected contribute.
//
// A label is the detail-map name, else the fallback entry for the id, else a synthesized
// "Topic {id}" (topics) or "{id}" (sections). A label already taken by an earlier id gets the
// id appended so that no series is merged away.
func Labels(ds Dataset, selected IDSet, fallback map[string]string) []Series {
	return labelsAvoiding(ds, selected, fallback)
}

// labelsAvoiding is Labels with extra names treated as taken, such as the row keys a chart
// writes next to its series.
func labelsAvoiding(ds Dataset, selected IDSet, fallback map[string]string, reserved ...string) []Series {
	series := []Series{}
	if ds.Empty() {
		return series
	}

	ids := ds.Details.Keys()
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	var extra []string
	for _, unit := range ds.Units.Keys() {
		entries, _ := ds.Units.Get(unit)
		for id := range entries {
			if _, ok := known[id]; ok {
				continue
			}
			known[id] = struct{}{}
			extra = append(extra, id)
		}
	}
	sortIDs(extra)
	ids = append(ids, extra...)

	used := newLabelSet(reserved...)
	for _, id := range ids {
		if !selected.Allows(id) {
			continue
		}
		name, _ := ds.Details.Get(id)
		series = append(series, Series{ID: id, Label: used.claim(resolveLabel(ds.Kind, id, name, fallback), id)})
	}
	return series
}

type labelSet map[string]struct{}

func newLabelSet(reserved ...string) labelSet {
	s := make(labelSet, len(reserved))
	for _, r := range reserved {
		s[r] = struct{}{}
	}
	return s
}

// claim returns label, suffixed with " (id)" until it is unused, and marks the result used.
func (s labelSet) claim(label, id string) string {
	for {
		if _, taken := s[label]; !taken {
			break
		}
		label = fmt.Sprintf("%s (%s)", label, id)
	}
	s[label] = struct{}{}
	return label
}

func resolveLabel(kind Kind, id, detailName string, fallback map[string]string) string {
	if name := strings.TrimSpace(detailName); name != "" {
		return name
	}
	if name := strings.TrimSpace(fallback[id]); name != "" {
		return name
	}
	if kind == KindTopic {
		return "Topic " + id
	}
	return id
}

func seriesLabels(series []Series) []string {
	out := make([]string, len(series))
	for i, s := range series {
		out[i] = s.Label
	}
	return out
}
