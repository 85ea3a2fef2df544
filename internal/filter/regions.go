// Package filter resolves region and unit selections into the unit list a view is built for.
package filter

import (
	"encoding/json"
	"strings"

	"github.com/godilite/competency-dashboard/internal/analytics"
)

// RegionMap is the ordered region -> units mapping. Region order and unit order within a
// region are display order.
type RegionMap struct {
	regions *analytics.OrderedMap[[]string]
}

func NewRegionMap() *RegionMap {
	return &RegionMap{regions: analytics.NewOrderedMap[[]string]()}
}

// Add appends units to region, creating it if needed. Blank names and duplicates within the
// region are ignored.
func (m *RegionMap) Add(region string, units ...string) {
	region = strings.TrimSpace(region)
	if region == "" {
		return
	}
	if m.regions == nil {
		m.regions = analytics.NewOrderedMap[[]string]()
	}
	existing, _ := m.regions.Get(region)
	for _, u := range units {
		u = strings.TrimSpace(u)
		if u == "" || contains(existing, u) {
			continue
		}
		existing = append(existing, u)
	}
	if existing == nil {
		existing = []string{}
	}
	m.regions.Set(region, existing)
}

func (m *RegionMap) Regions() []string {
	if m == nil {
		return []string{}
	}
	if keys := m.regions.Keys(); keys != nil {
		return keys
	}
	return []string{}
}

// Units returns a copy of the units of region.
func (m *RegionMap) Units(region string) []string {
	if m == nil {
		return nil
	}
	units, _ := m.regions.Get(region)
	return append([]string(nil), units...)
}

// Groups returns the mapping in display order.
func (m *RegionMap) Groups() []analytics.RegionGroup {
	groups := []analytics.RegionGroup{}
	for _, region := range m.Regions() {
		groups = append(groups, analytics.RegionGroup{Name: region, Units: m.Units(region)})
	}
	return groups
}

// AllUnits is the duplicate-free union of every region's units in display order.
func (m *RegionMap) AllUnits() []string {
	return m.UnitsForRegions(m.Regions())
}

// AvailableUnits are the units offered for selection: those of the selected regions, or
// every unit when no region is selected.
func (m *RegionMap) AvailableUnits(selectedRegions []string) []string {
	if len(selectedRegions) == 0 {
		return m.AllUnits()
	}
	return m.UnitsForRegions(selectedRegions)
}

// UnitsForRegions expands regions into their units, in the order the regions are given.
// Unknown regions contribute nothing.
func (m *RegionMap) UnitsForRegions(regions []string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, region := range regions {
		for _, u := range m.Units(region) {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

// RegionOf returns the first region listing unit.
func (m *RegionMap) RegionOf(unit string) (string, bool) {
	for _, region := range m.Regions() {
		if contains(m.Units(region), unit) {
			return region, true
		}
	}
	return "", false
}

func (m *RegionMap) Len() int {
	if m == nil {
		return 0
	}
	return m.regions.Len()
}

func (m *RegionMap) UnmarshalJSON(data []byte) error {
	var raw analytics.OrderedMap[[]string]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = RegionMap{regions: analytics.NewOrderedMap[[]string]()}
	for _, region := range raw.Keys() {
		units, _ := raw.Get(region)
		m.Add(region, units...)
	}
	return nil
}

func (m *RegionMap) MarshalJSON() ([]byte, error) {
	if m == nil || m.regions == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.regions)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
