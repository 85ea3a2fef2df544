package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/godilite/competency-dashboard/internal/analytics"
	"github.com/godilite/competency-dashboard/internal/filter"
	"github.com/godilite/competency-dashboard/internal/repository/models"
)

// seedFile is the migrate --seed format: the region map plus analytics responses exactly as
// the upstream API returns them.
type seedFile struct {
	Regions      filter.RegionMap  `json:"regions"`
	Competencies json.RawMessage   `json:"competencies"`
	Topics       []json.RawMessage `json:"topics"`
}

func parseSeed(data []byte) (models.Snapshot, error) {
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return models.Snapshot{}, fmt.Errorf("reading seed: %w", err)
	}

	var snap models.Snapshot
	for _, region := range seed.Regions.Regions() {
		units := seed.Regions.Units(region)
		if len(units) == 0 {
			snap.Regions = append(snap.Regions, models.RegionUnit{Region: region})
		}
		for _, unit := range units {
			snap.Regions = append(snap.Regions, models.RegionUnit{Region: region, Unit: unit})
		}
	}

	if len(seed.Competencies) > 0 {
		payload, err := analytics.DecodeCompetencyResponse(seed.Competencies)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("reading competencies: %w", err)
		}
		if err := addSections(&snap, payload.Dataset()); err != nil {
			return models.Snapshot{}, err
		}
	}

	for i, raw := range seed.Topics {
		payload, err := analytics.DecodeTopicResponse(raw)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("reading topics[%d]: %w", i, err)
		}
		if err := addTopics(&snap, payload); err != nil {
			return models.Snapshot{}, fmt.Errorf("topics[%d]: %w", i, err)
		}
	}
	return snap, nil
}

func addSections(snap *models.Snapshot, ds analytics.Dataset) error {
	if ds.Empty() {
		return nil
	}
	for _, id := range ds.Details.Keys() {
		sectionID, err := parseID(id)
		if err != nil {
			return err
		}
		name, _ := ds.Details.Get(id)
		snap.Competencies = append(snap.Competencies, models.Competency{SectionID: sectionID, Name: name})
	}
	for _, unit := range ds.Units.Keys() {
		entries, _ := ds.Units.Get(unit)
		for _, id := range ds.Details.Keys() {
			e, ok := entries[id]
			if !ok {
				continue
			}
			sectionID, _ := parseID(id)
			snap.SectionScores = append(snap.SectionScores, models.SectionScore{
				Unit:            unit,
				SectionID:       sectionID,
				ScoreAverage:    nullScore(e.Average),
				ScorePercentile: nullScore(e.Percentile),
				UsersCount:      int64(e.UsersCount),
			})
		}
	}
	return nil
}

func addTopics(snap *models.Snapshot, payload analytics.TopicPayload) error {
	ds := payload.Dataset()
	if ds.Empty() {
		return nil
	}

	sections := make(map[string]int64, payload.TopicDetail.Len())
	for _, key := range payload.TopicDetail.Keys() {
		info, _ := payload.TopicDetail.Get(key)
		id, ok := analytics.CanonicalID(key)
		if !ok {
			continue
		}
		topicID, err := parseID(id)
		if err != nil {
			return err
		}
		sectionID, err := parseID(string(info.SectionID))
		if err != nil {
			return fmt.Errorf("topic %s: %w", id, err)
		}
		sections[id] = sectionID
		name, _ := ds.Details.Get(id)
		snap.Topics = append(snap.Topics, models.Topic{TopicID: topicID, SectionID: sectionID, Name: name})
	}

	for _, unit := range ds.Units.Keys() {
		entries, _ := ds.Units.Get(unit)
		for _, id := range ds.Details.Keys() {
			e, ok := entries[id]
			sectionID, known := sections[id]
			if !ok || !known {
				continue
			}
			topicID, _ := parseID(id)
			snap.TopicScores = append(snap.TopicScores, models.TopicScore{
				Unit:            unit,
				TopicID:         topicID,
				SectionID:       sectionID,
				ScoreAverage:    nullScore(e.Average),
				ScorePercentile: nullScore(e.Percentile),
				UsersCount:      int64(e.UsersCount),
				TotalQuestions:  int64(e.TotalQuestions),
			})
		}
	}
	return nil
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id %q is not an integer", id)
	}
	return n, nil
}

func nullScore(s analytics.Score) sql.NullFloat64 {
	return sql.NullFloat64{Float64: s.Value, Valid: s.Valid}
}
