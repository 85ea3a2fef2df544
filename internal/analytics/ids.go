package analytics

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// CanonicalID normalizes a section or topic id to the single string form used for every
// lookup. Integral numbers print without a fractional part, numeric strings are re-printed
// ("03" -> "3", "7.0" -> "7"), and any other string is kept trimmed.
func CanonicalID(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return canonicalString(t)
	case json.Number:
		return canonicalString(t.String())
	case ID:
		return canonicalString(string(t))
	case float64:
		return canonicalFloat(t)
	case float32:
		return canonicalFloat(float64(t))
	case int:
		return strconv.FormatInt(int64(t), 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint32:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	default:
		return "", false
	}
}

func canonicalString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if id, ok := canonicalFloat(f); ok {
			return id, true
		}
	}
	return s, true
}

func canonicalFloat(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10), true
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// ID is a section or topic id that decodes from either a JSON number or a JSON string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}
	if text == "null" {
		*id = ""
		return nil
	}
	canonical, _ := canonicalString(text)
	*id = ID(canonical)
	return nil
}

// IDSet is a selection of canonical ids. An empty set selects everything.
type IDSet map[string]struct{}

// NewIDSet canonicalizes ids into a set, dropping values that are not ids.
func NewIDSet(ids ...string) IDSet {
	set := make(IDSet, len(ids))
	for _, raw := range ids {
		if id, ok := canonicalString(raw); ok {
			set[id] = struct{}{}
		}
	}
	return set
}

func (s IDSet) Allows(id string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending id order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sortIDs(out)
	return out
}

// sortIDs orders numeric ids numerically and places them before non-numeric ones.
func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseFloat(ids[i], 64)
		b, errB := strconv.ParseFloat(ids[j], 64)
		switch {
		case errA == nil && errB == nil:
			if a != b {
				return a < b
			}
			return ids[i] < ids[j]
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
