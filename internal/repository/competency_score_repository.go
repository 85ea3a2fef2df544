package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/godilite/competency-dashboard/internal/repository/models"
	dbbuilder "github.com/godilite/competency-dashboard/pkg/database"
)

type CompetencyScoreRepository struct {
	db      *sql.DB
	dialect dbbuilder.Dialect
}

func NewCompetencyScoreRepository(db *sql.DB, dialect dbbuilder.Dialect) *CompetencyScoreRepository {
	if dialect == "" {
		dialect = dbbuilder.DialectSQLite
	}
	return &CompetencyScoreRepository{db: db, dialect: dialect}
}

// GetRegionUnits lists every region with its units in display order. A region without units
// yields one row with an empty unit.
func (r *CompetencyScoreRepository) GetRegionUnits(ctx context.Context) ([]models.RegionUnit, error) {
	const query = `
		SELECT rg.name, u.name
		FROM regions AS rg
		LEFT JOIN units AS u ON u.region = rg.name
		ORDER BY rg.position, rg.name, u.position, u.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query GetRegionUnits: %w", err)
	}
	defer rows.Close()

	var results []models.RegionUnit
	for rows.Next() {
		var region string
		var unit sql.NullString
		if err := rows.Scan(&region, &unit); err != nil {
			return nil, fmt.Errorf("scan GetRegionUnits row: %w", err)
		}
		results = append(results, models.RegionUnit{Region: region, Unit: unit.String})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetRegionUnits: %w", err)
	}
	return results, nil
}

// GetCompetencies lists the competency catalog in display order.
func (r *CompetencyScoreRepository) GetCompetencies(ctx context.Context) ([]models.Competency, error) {
	const query = `
		SELECT section_id, name
		FROM competencies
		ORDER BY position, section_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query GetCompetencies: %w", err)
	}
	defer rows.Close()

	var results []models.Competency
	for rows.Next() {
		var c models.Competency
		if err := rows.Scan(&c.SectionID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan GetCompetencies row: %w", err)
		}
		results = append(results, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetCompetencies: %w", err)
	}
	return results, nil
}

// GetTopics lists the topics of a competency, or of every competency when sectionID is 0.
func (r *CompetencyScoreRepository) GetTopics(ctx context.Context, sectionID int64) ([]models.Topic, error) {
	query := `
		SELECT topic_id, section_id, name
		FROM topics
	`
	var args []any
	if sectionID != 0 {
		query += ` WHERE section_id = ?`
		args = append(args, sectionID)
	}
	query += ` ORDER BY section_id, position, topic_id`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query GetTopics: %w", err)
	}
	defer rows.Close()

	var results []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.TopicID, &t.SectionID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan GetTopics row: %w", err)
		}
		results = append(results, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetTopics: %w", err)
	}
	return results, nil
}

// GetSectionScores returns the competency-level aggregates of the given units (all units when
// none are given), ordered by unit display order and competency display order.
func (r *CompetencyScoreRepository) GetSectionScores(ctx context.Context, units []string) ([]models.SectionScore, error) {
	query := `
		SELECT s.unit, s.section_id, s.score_average, s.score_percentile, s.users_count
		FROM section_scores AS s
		LEFT JOIN units AS u ON u.name = s.unit
		LEFT JOIN competencies AS c ON c.section_id = s.section_id
	`
	args := make([]any, 0, len(units))
	if len(units) > 0 {
		query += ` WHERE s.unit IN (` + dbbuilder.Placeholders(len(units)) + `)`
		for _, u := range units {
			args = append(args, u)
		}
	}
	query += ` ORDER BY COALESCE(u.position, 0), s.unit, COALESCE(c.position, 0), s.section_id`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query GetSectionScores: %w", err)
	}
	defer rows.Close()

	var results []models.SectionScore
	for rows.Next() {
		var s models.SectionScore
		if err := rows.Scan(&s.Unit, &s.SectionID, &s.ScoreAverage, &s.ScorePercentile, &s.UsersCount); err != nil {
			return nil, fmt.Errorf("scan GetSectionScores row: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetSectionScores: %w", err)
	}
	return results, nil
}

// GetTopicScores returns the topic-level aggregates of the given units, restricted to one
// competency when sectionID is not 0.
func (r *CompetencyScoreRepository) GetTopicScores(ctx context.Context, units []string, sectionID int64) ([]models.TopicScore, error) {
	query := `
		SELECT s.unit, s.topic_id, s.section_id, s.score_average, s.score_percentile,
		       s.users_count, s.total_questions
		FROM topic_scores AS s
		LEFT JOIN units AS u ON u.name = s.unit
		LEFT JOIN topics AS t ON t.topic_id = s.topic_id
		WHERE 1 = 1
	`
	args := make([]any, 0, len(units)+1)
	if len(units) > 0 {
		query += ` AND s.unit IN (` + dbbuilder.Placeholders(len(units)) + `)`
		for _, u := range units {
			args = append(args, u)
		}
	}
	if sectionID != 0 {
		query += ` AND s.section_id = ?`
		args = append(args, sectionID)
	}
	query += ` ORDER BY COALESCE(u.position, 0), s.unit, COALESCE(t.position, 0), s.topic_id`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query GetTopicScores: %w", err)
	}
	defer rows.Close()

	var results []models.TopicScore
	for rows.Next() {
		var s models.TopicScore
		if err := rows.Scan(&s.Unit, &s.TopicID, &s.SectionID, &s.ScoreAverage, &s.ScorePercentile, &s.UsersCount, &s.TotalQuestions); err != nil {
			return nil, fmt.Errorf("scan GetTopicScores row: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetTopicScores: %w", err)
	}
	return results, nil
}
