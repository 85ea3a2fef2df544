package models

import "database/sql"

type RegionUnit struct {
	Region string
	Unit   string
}

type Competency struct {
	SectionID int64
	Name      string
}

type Topic struct {
	TopicID   int64
	SectionID int64
	Name      string
}

// SectionScore is one unit's aggregate for one competency. Null columns are absent scores.
type SectionScore struct {
	Unit            string
	SectionID       int64
	ScoreAverage    sql.NullFloat64
	ScorePercentile sql.NullFloat64
	UsersCount      int64
}

type TopicScore struct {
	Unit            string
	TopicID         int64
	SectionID       int64
	ScoreAverage    sql.NullFloat64
	ScorePercentile sql.NullFloat64
	UsersCount      int64
	TotalQuestions  int64
}

// Snapshot is a complete data set written by Import.
type Snapshot struct {
	Regions       []RegionUnit
	Competencies  []Competency
	Topics        []Topic
	SectionScores []SectionScore
	TopicScores   []TopicScore
}
