package filter

import "strings"

// Selection is what a dashboard request asks for: explicit units, regions, or both.
type Selection struct {
	Regions []string `json:"regions,omitempty"`
	Units   []string `json:"units,omitempty"`
}

// Resolve returns the units a view is built for. Explicitly selected units win and keep their
// order; otherwise the selected regions are expanded. An empty selection resolves to nothing.
func (s Selection) Resolve(m *RegionMap) []string {
	if units := dedupe(s.Units); len(units) > 0 {
		return units
	}
	if len(s.Regions) == 0 {
		return []string{}
	}
	return m.UnitsForRegions(s.Regions)
}

func (s Selection) Empty() bool {
	return len(dedupe(s.Units)) == 0 && len(dedupe(s.Regions)) == 0
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
