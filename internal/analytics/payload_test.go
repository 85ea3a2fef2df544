package analytics_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/godilite/competency-dashboard/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func competencyDataset(t testing.TB) analytics.Dataset {
	t.Helper()
	p, err := analytics.DecodeCompetencyResponse(readFixture(t, "competency.json"))
	require.NoError(t, err)
	return p.Dataset()
}

func topicDataset(t testing.TB) analytics.Dataset {
	t.Helper()
	p, err := analytics.DecodeTopicResponse(readFixture(t, "topics.json"))
	require.NoError(t, err)
	return p.Dataset()
}

func TestDecodeCompetencyResponse(t *testing.T) {
	ds := competencyDataset(t)

	require.False(t, ds.Empty())
	assert.Equal(t, analytics.KindSection, ds.Kind)
	assert.Equal(t, []string{"12", "7", "3"}, ds.Details.Keys())
	assert.Equal(t, []string{"Topic 3 (Springfield)", "Ward A - East", "ICU"}, ds.Units.Keys())

	springfield, ok := ds.Units.Get("Topic 3 (Springfield)")
	require.True(t, ok)

	judgement := springfield["7"]
	assert.Equal(t, analytics.ScoreOf(6.5), judgement.Average)
	assert.Equal(t, analytics.ScoreOf(55), judgement.Percentile)
	assert.Equal(t, analytics.Count(2), judgement.UsersCount)

	assert.False(t, springfield["3"].Average.Valid, "null average is absent")
	assert.True(t, springfield["3"].Percentile.Valid)

	ward, _ := ds.Units.Get("Ward A - East")
	assert.False(t, ward["7"].Average.Valid, "unparseable average is absent")
	assert.Equal(t, analytics.Count(0), ward["7"].UsersCount, "negative counts clamp to zero")
}

func TestDecodeTopicResponse(t *testing.T) {
	ds := topicDataset(t)

	require.False(t, ds.Empty())
	assert.Equal(t, analytics.KindTopic, ds.Kind)
	assert.Equal(t, []string{"101", "102"}, ds.Details.Keys())

	icu, _ := ds.Units.Get("ICU")
	assert.Equal(t, analytics.ScoreOf(7.25), icu["101"].Average)
	assert.Equal(t, analytics.ScoreOf(8), icu["102"].Average)
	assert.Equal(t, analytics.Count(9), icu["102"].TotalQuestions)
	assert.Equal(t, analytics.Count(12), icu["101"].TotalQuestions)
}

func TestDecodeCompetencyResponse_Degraded(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "error status", body: `{"status":"error","data":{"section_detail":{},"unit_details":{}}}`},
		{name: "data is not an object", body: `{"status":"success","data":"oops"}`},
		{name: "missing unit details", body: `{"status":"success","data":{"section_detail":{"1":{"section_name":"A"}}}}`},
		{name: "unit details is an array", body: `{"status":"success","data":{"section_detail":{},"unit_details":[]}}`},
		{name: "unreadable json", body: `{"status":`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := analytics.DecodeCompetencyResponse([]byte(tc.body))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.Dataset().Empty())
		})
	}
}

func TestCompetencyPayload_SkipsMalformedUnits(t *testing.T) {
	body := `{
		"section_detail": {"1": {"section_name": "Safety"}, "2": "broken"},
		"unit_details": {
			"ICU": "nope",
			"ER": {"1": {"unit_section_score_average": 6}, "2": [1, 2]},
			"OR": {"01": {"unit_section_score_average": "3"}}
		}
	}`

	var p analytics.CompetencyPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	ds := p.Dataset()

	assert.Equal(t, []string{"1", "2"}, ds.Details.Keys())
	name, _ := ds.Details.Get("2")
	assert.Empty(t, name)

	assert.Equal(t, []string{"ER", "OR"}, ds.Units.Keys())
	er, _ := ds.Units.Get("ER")
	assert.Len(t, er, 1)

	or, _ := ds.Units.Get("OR")
	assert.Equal(t, analytics.ScoreOf(3), or["1"].Average, "ids are canonicalized")
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		in   string
		want analytics.Score
	}{
		{in: `7.5`, want: analytics.ScoreOf(7.5)},
		{in: `"7.5"`, want: analytics.ScoreOf(7.5)},
		{in: `" 8 "`, want: analytics.ScoreOf(8)},
		{in: `null`, want: analytics.Score{}},
		{in: `""`, want: analytics.Score{}},
		{in: `"7.5abc"`, want: analytics.Score{}},
		{in: `"NaN"`, want: analytics.Score{}},
		{in: `"Inf"`, want: analytics.Score{}},
		{in: `true`, want: analytics.Score{}},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, analytics.ParseScore(tc.in))
		})
	}
}

func TestScore_MarshalJSON(t *testing.T) {
	out, err := json.Marshal([]analytics.Score{analytics.ScoreOf(4.5), {}})
	require.NoError(t, err)
	assert.JSONEq(t, `[4.5, null]`, string(out))
}

func TestCount_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		raw  string
		want analytics.Count
	}{
		{`3`, 3},
		{`"4.9"`, 4},
		{`-2`, 0},
		{`null`, 0},
		{`"1e30"`, analytics.MaxCount},
		{`1e300`, analytics.MaxCount},
		{`2147483647`, analytics.MaxCount},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			var c analytics.Count
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &c))
			assert.Equal(t, tc.want, c)
		})
	}
}

func TestTopicPayload_SectionDataset(t *testing.T) {
	payload, err := analytics.DecodeTopicResponse(readFixture(t, "topics.json"))
	require.NoError(t, err)

	ds := payload.SectionDataset("12")
	assert.Equal(t, []string{"101", "102"}, ds.Details.Keys())
	assert.Equal(t, []string{"ICU", "Ward A - East"}, ds.Units.Keys())
	icu, _ := ds.Units.Get("ICU")
	assert.NotContains(t, icu, "103", "topics without a detail entry have no known section")

	other := payload.SectionDataset("7")
	assert.Equal(t, 0, other.Details.Len())
	assert.Equal(t, 0, other.Units.Len())
	assert.False(t, other.Empty(), "a section without topics is an empty view, not missing data")
}
