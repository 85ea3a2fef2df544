package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/godilite/competency-dashboard/internal/repository/models"
)

// Import upserts a snapshot in one transaction. Slice order becomes display order.
func (r *CompetencyScoreRepository) Import(ctx context.Context, snap models.Snapshot) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin Import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	regionPos := make(map[string]int)
	for i, ru := range snap.Regions {
		if _, seen := regionPos[ru.Region]; !seen {
			regionPos[ru.Region] = len(regionPos)
			if err = r.exec(ctx, tx, `
				INSERT INTO regions (name, position) VALUES (?, ?)
				ON CONFLICT (name) DO UPDATE SET position = excluded.position`,
				ru.Region, regionPos[ru.Region]); err != nil {
				return fmt.Errorf("import region %q: %w", ru.Region, err)
			}
		}
		if ru.Unit == "" {
			continue
		}
		if err = r.exec(ctx, tx, `
			INSERT INTO units (name, region, position) VALUES (?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET region = excluded.region, position = excluded.position`,
			ru.Unit, ru.Region, i); err != nil {
			return fmt.Errorf("import unit %q: %w", ru.Unit, err)
		}
	}

	for i, c := range snap.Competencies {
		if err = r.exec(ctx, tx, `
			INSERT INTO competencies (section_id, name, position) VALUES (?, ?, ?)
			ON CONFLICT (section_id) DO UPDATE SET name = excluded.name, position = excluded.position`,
			c.SectionID, c.Name, i); err != nil {
			return fmt.Errorf("import competency %d: %w", c.SectionID, err)
		}
	}

	for i, t := range snap.Topics {
		if err = r.exec(ctx, tx, `
			INSERT INTO topics (topic_id, section_id, name, position) VALUES (?, ?, ?, ?)
			ON CONFLICT (topic_id) DO UPDATE SET section_id = excluded.section_id, name = excluded.name, position = excluded.position`,
			t.TopicID, t.SectionID, t.Name, i); err != nil {
			return fmt.Errorf("import topic %d: %w", t.TopicID, err)
		}
	}

	for _, s := range snap.SectionScores {
		if err = r.exec(ctx, tx, `
			INSERT INTO section_scores (unit, section_id, score_average, score_percentile, users_count)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (unit, section_id) DO UPDATE SET
				score_average = excluded.score_average,
				score_percentile = excluded.score_percentile,
				users_count = excluded.users_count`,
			s.Unit, s.SectionID, s.ScoreAverage, s.ScorePercentile, s.UsersCount); err != nil {
			return fmt.Errorf("import section score %q/%d: %w", s.Unit, s.SectionID, err)
		}
	}

	for _, s := range snap.TopicScores {
		if err = r.exec(ctx, tx, `
			INSERT INTO topic_scores (unit, topic_id, section_id, score_average, score_percentile, users_count, total_questions)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (unit, topic_id) DO UPDATE SET
				section_id = excluded.section_id,
				score_average = excluded.score_average,
				score_percentile = excluded.score_percentile,
				users_count = excluded.users_count,
				total_questions = excluded.total_questions`,
			s.Unit, s.TopicID, s.SectionID, s.ScoreAverage, s.ScorePercentile, s.UsersCount, s.TotalQuestions); err != nil {
			return fmt.Errorf("import topic score %q/%d: %w", s.Unit, s.TopicID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit Import: %w", err)
	}
	return nil
}

func (r *CompetencyScoreRepository) exec(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	_, err := tx.ExecContext(ctx, r.dialect.Rebind(query), args...)
	return err
}
