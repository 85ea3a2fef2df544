package analytics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Score is a numeric field that may arrive as a JSON number or a numeric string.
// Anything that does not parse to a finite float is absent.
type Score struct {
	Value float64
	Valid bool
}

// ScoreOf returns a valid Score for finite v.
func ScoreOf(v float64) Score {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Score{}
	}
	return Score{Value: v, Valid: true}
}

// ParseScore coerces the text of a JSON value into a Score.
func ParseScore(text string) Score {
	text = strings.TrimSpace(text)
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	if text == "" || text == "null" {
		return Score{}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Score{}
	}
	return ScoreOf(f)
}

func (s *Score) UnmarshalJSON(data []byte) error {
	*s = ParseScore(string(data))
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// Ptr returns the value as a pointer, nil when absent.
func (s Score) Ptr() *float64 {
	if !s.Valid {
		return nil
	}
	v := s.Value
	return &v
}

// Or returns s when valid, otherwise other.
func (s Score) Or(other Score) Score {
	if s.Valid {
		return s
	}
	return other
}

// Count is a non-negative integer field with the same coercion rules as Score.
// Absent or negative values decode to zero, values beyond MaxCount saturate.
type Count int

// MaxCount is the largest Count a payload can carry.
const MaxCount = math.MaxInt32

func (c *Count) UnmarshalJSON(data []byte) error {
	s := ParseScore(string(data))
	switch {
	case !s.Valid || s.Value < 0:
		*c = 0
	case s.Value >= MaxCount:
		*c = MaxCount
	default:
		*c = Count(math.Trunc(s.Value))
	}
	return nil
}

// ScoreEntry is one unit's result for one section or topic.
type ScoreEntry struct {
	Average        Score
	Percentile     Score
	UsersCount     Count
	TotalQuestions Count
}

// UnmarshalJSON accepts both the section-level and the topic-level field names.
func (e *ScoreEntry) UnmarshalJSON(data []byte) error {
	var aux struct {
		SectionAverage    Score `json:"unit_section_score_average"`
		SectionPercentile Score `json:"unit_section_score_percentile"`
		TopicAverage      Score `json:"unit_topic_score_average"`
		TopicPercentile   Score `json:"unit_topic_score_percentile"`
		UsersCount        Count `json:"users_count"`
		TotalQuestions    Count `json:"topic_total_question"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = ScoreEntry{
		Average:        aux.SectionAverage.Or(aux.TopicAverage),
		Percentile:     aux.SectionPercentile.Or(aux.TopicPercentile),
		UsersCount:     aux.UsersCount,
		TotalQuestions: aux.TotalQuestions,
	}
	return nil
}

// Value picks the field the metric refers to.
func (e ScoreEntry) Value(m Metric) Score {
	if m == MetricPercentile {
		return e.Percentile
	}
	return e.Average
}

type SectionInfo struct {
	Name          string `json:"section_name"`
	QuizSectionID ID     `json:"quiz_section_id"`
}

type TopicInfo struct {
	Name      string `json:"topic_name"`
	TopicID   ID     `json:"topic_id"`
	SectionID ID     `json:"section_id"`
}

// UnitScores maps a unit name to its entries keyed by section or topic id.
type UnitScores = OrderedMap[map[string]ScoreEntry]

// CompetencyPayload is the section-level analytics payload.
// A nil map means the key was absent or unreadable.
type CompetencyPayload struct {
	SectionDetail *OrderedMap[SectionInfo]
	UnitDetails   *UnitScores
}

func (p *CompetencyPayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		SectionDetail json.RawMessage `json:"section_detail"`
		UnitDetails   json.RawMessage `json:"unit_details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.SectionDetail = decodeDetails[SectionInfo](raw.SectionDetail)
	p.UnitDetails = decodeUnitDetails(raw.UnitDetails)
	return nil
}

// Dataset canonicalizes the payload ids.
func (p CompetencyPayload) Dataset() Dataset {
	ds := Dataset{Kind: KindSection, Units: canonicalUnits(p.UnitDetails)}
	if p.SectionDetail != nil {
		ds.Details = NewOrderedMap[string]()
		for _, key := range p.SectionDetail.Keys() {
			info, _ := p.SectionDetail.Get(key)
			addDetail(ds.Details, key, info.Name)
		}
	}
	return ds
}

// TopicPayload is the topic-level (sub-competency) analytics payload.
type TopicPayload struct {
	TopicDetail *OrderedMap[TopicInfo]
	UnitDetails *UnitScores
}

func (p *TopicPayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		TopicDetail json.RawMessage `json:"topic_detail"`
		UnitDetails json.RawMessage `json:"unit_details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.TopicDetail = decodeDetails[TopicInfo](raw.TopicDetail)
	p.UnitDetails = decodeUnitDetails(raw.UnitDetails)
	return nil
}

// SectionDataset is Dataset limited to the topics whose detail names section as their
// competency. Topics without a detail entry have no known section and are dropped, as are
// units left without any entry.
func (p TopicPayload) SectionDataset(section string) Dataset {
	ds := p.Dataset()
	if ds.Empty() {
		return ds
	}

	keep := make(map[string]struct{})
	for _, key := range p.TopicDetail.Keys() {
		info, _ := p.TopicDetail.Get(key)
		if id, ok := canonicalString(key); ok && string(info.SectionID) == section {
			keep[id] = struct{}{}
		}
	}

	details := NewOrderedMap[string]()
	for _, id := range ds.Details.Keys() {
		if _, ok := keep[id]; ok {
			name, _ := ds.Details.Get(id)
			details.Set(id, name)
		}
	}
	units := NewOrderedMap[map[string]ScoreEntry]()
	for _, unit := range ds.Units.Keys() {
		entries, _ := ds.Units.Get(unit)
		scoped := make(map[string]ScoreEntry)
		for id, e := range entries {
			if _, ok := keep[id]; ok {
				scoped[id] = e
			}
		}
		if len(scoped) > 0 {
			units.Set(unit, scoped)
		}
	}
	return NewDataset(KindTopic, details, units)
}

func (p TopicPayload) Dataset() Dataset {
	ds := Dataset{Kind: KindTopic, Units: canonicalUnits(p.UnitDetails)}
	if p.TopicDetail != nil {
		ds.Details = NewOrderedMap[string]()
		for _, key := range p.TopicDetail.Keys() {
			info, _ := p.TopicDetail.Get(key)
			addDetail(ds.Details, key, info.Name)
		}
	}
	return ds
}

// Response is the {status, data} envelope the analytics API wraps payloads in.
type Response[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

func (r Response[T]) OK() bool {
	return r.Status == "success"
}

// DecodeCompetencyResponse decodes an enveloped section-level payload. Only unreadable JSON
// is an error; an error status or a malformed body yields an empty payload.
func DecodeCompetencyResponse(data []byte) (CompetencyPayload, error) {
	var resp Response[json.RawMessage]
	if err := json.Unmarshal(data, &resp); err != nil {
		return CompetencyPayload{}, err
	}
	var p CompetencyPayload
	if !resp.OK() || json.Unmarshal(resp.Data, &p) != nil {
		return CompetencyPayload{}, nil
	}
	return p, nil
}

// DecodeTopicResponse is the topic-level counterpart of DecodeCompetencyResponse.
func DecodeTopicResponse(data []byte) (TopicPayload, error) {
	var resp Response[json.RawMessage]
	if err := json.Unmarshal(data, &resp); err != nil {
		return TopicPayload{}, err
	}
	var p TopicPayload
	if !resp.OK() || json.Unmarshal(resp.Data, &p) != nil {
		return TopicPayload{}, nil
	}
	return p, nil
}

func decodeDetails[T any](raw json.RawMessage) *OrderedMap[T] {
	objects := decodeObject(raw)
	if objects == nil {
		return nil
	}
	out := NewOrderedMap[T]()
	for _, key := range objects.Keys() {
		v, _ := objects.Get(key)
		var info T
		if err := json.Unmarshal(v, &info); err != nil {
			// keep the id so its label can still be resolved through the fallback chain
			var zero T
			info = zero
		}
		out.Set(key, info)
	}
	return out
}

func decodeUnitDetails(raw json.RawMessage) *UnitScores {
	units := decodeObject(raw)
	if units == nil {
		return nil
	}
	out := NewOrderedMap[map[string]ScoreEntry]()
	for _, unit := range units.Keys() {
		v, _ := units.Get(unit)
		entries := decodeObject(v)
		if entries == nil {
			continue
		}
		scores := make(map[string]ScoreEntry, entries.Len())
		for _, id := range entries.Keys() {
			ev, _ := entries.Get(id)
			var entry ScoreEntry
			if err := json.Unmarshal(ev, &entry); err != nil {
				continue
			}
			scores[id] = entry
		}
		out.Set(unit, scores)
	}
	return out
}

func decodeObject(raw json.RawMessage) *OrderedMap[json.RawMessage] {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var m OrderedMap[json.RawMessage]
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return &m
}

func addDetail(details *OrderedMap[string], rawID, name string) {
	id, ok := canonicalString(rawID)
	if !ok || details.Has(id) {
		return
	}
	details.Set(id, strings.TrimSpace(name))
}

func canonicalUnits(units *UnitScores) *UnitScores {
	if units == nil {
		return nil
	}
	out := NewOrderedMap[map[string]ScoreEntry]()
	for _, unit := range units.Keys() {
		entries, _ := units.Get(unit)
		scores := make(map[string]ScoreEntry, len(entries))
		for rawID, entry := range entries {
			id, ok := canonicalString(rawID)
			if !ok {
				continue
			}
			if _, dup := scores[id]; dup && rawID != id {
				continue
			}
			scores[id] = entry
		}
		out.Set(unit, scores)
	}
	return out
}
