package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/competency-dashboard/internal/repository/models"
)

func TestParseSeed(t *testing.T) {
	data, err := os.ReadFile("testdata/seed.json")
	require.NoError(t, err)

	snap, err := parseSeed(data)
	require.NoError(t, err)

	assert.Equal(t, []models.RegionUnit{
		{Region: "North", Unit: "ICU"},
		{Region: "North", Unit: "Ward A - East"},
		{Region: "South", Unit: "Maternity"},
		{Region: "West"},
	}, snap.Regions)
	assert.Equal(t, []models.Competency{
		{SectionID: 12, Name: "Communication"},
		{SectionID: 7, Name: "Clinical Judgement"},
	}, snap.Competencies)
	assert.Equal(t, []models.Topic{
		{TopicID: 101, SectionID: 12, Name: "Handover"},
		{TopicID: 102, SectionID: 12, Name: "Escalation"},
	}, snap.Topics)

	require.Len(t, snap.SectionScores, 5)
	assert.Equal(t, "ICU", snap.SectionScores[1].Unit)
	assert.Equal(t, int64(7), snap.SectionScores[1].SectionID)
	assert.InDelta(t, 6.0, snap.SectionScores[1].ScoreAverage.Float64, 1e-9)
	assert.False(t, snap.SectionScores[3].ScoreAverage.Valid, "null average stays null")
	assert.True(t, snap.SectionScores[3].ScorePercentile.Valid)

	require.Len(t, snap.TopicScores, 3, "scores for topics without details are dropped")
	assert.Equal(t, int64(6), snap.TopicScores[1].TotalQuestions)
	assert.Equal(t, "Maternity", snap.TopicScores[2].Unit)
}

func TestParseSeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		seed string
	}{
		{"unreadable", `{`},
		{"non-integer competency", `{"competencies": {"status": "success", "data": {
			"section_detail": {"abc": {"section_name": "Other"}},
			"unit_details": {"ICU": {"abc": {"unit_section_score_average": 1}}}}}}`},
		{"non-integer topic section", `{"topics": [{"status": "success", "data": {
			"topic_detail": {"5": {"topic_name": "T", "section_id": "x"}},
			"unit_details": {"ICU": {"5": {"unit_topic_score_average": 1}}}}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSeed([]byte(tt.seed))
			assert.Error(t, err)
		})
	}
}

func TestParseSeed_Empty(t *testing.T) {
	snap, err := parseSeed([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, snap.Regions)
	assert.Empty(t, snap.Competencies)
}
