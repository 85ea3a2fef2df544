package repository

import (
	"context"
	"fmt"
	"strings"

	dbbuilder "github.com/godilite/competency-dashboard/pkg/database"
)

// EnsureSchema creates the tables the repository reads from when they do not exist.
func (r *CompetencyScoreRepository) EnsureSchema(ctx context.Context) error {
	schema := schemaSQLite
	if r.dialect == dbbuilder.DialectPostgres {
		schema = schemaPostgres
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS regions (
  name TEXT PRIMARY KEY,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS units (
  name TEXT PRIMARY KEY,
  region TEXT NOT NULL REFERENCES regions(name),
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS competencies (
  section_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS topics (
  topic_id INTEGER PRIMARY KEY,
  section_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS section_scores (
  unit TEXT NOT NULL,
  section_id INTEGER NOT NULL,
  score_average REAL,
  score_percentile REAL,
  users_count INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (unit, section_id)
);

CREATE TABLE IF NOT EXISTS topic_scores (
  unit TEXT NOT NULL,
  topic_id INTEGER NOT NULL,
  section_id INTEGER NOT NULL,
  score_average REAL,
  score_percentile REAL,
  users_count INTEGER NOT NULL DEFAULT 0,
  total_questions INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (unit, topic_id)
);

CREATE INDEX IF NOT EXISTS idx_topic_scores_section ON topic_scores(section_id);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS regions (
  name TEXT PRIMARY KEY,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS units (
  name TEXT PRIMARY KEY,
  region TEXT NOT NULL REFERENCES regions(name),
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS competencies (
  section_id BIGINT PRIMARY KEY,
  name TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS topics (
  topic_id BIGINT PRIMARY KEY,
  section_id BIGINT NOT NULL,
  name TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS section_scores (
  unit TEXT NOT NULL,
  section_id BIGINT NOT NULL,
  score_average DOUBLE PRECISION,
  score_percentile DOUBLE PRECISION,
  users_count BIGINT NOT NULL DEFAULT 0,
  PRIMARY KEY (unit, section_id)
);

CREATE TABLE IF NOT EXISTS topic_scores (
  unit TEXT NOT NULL,
  topic_id BIGINT NOT NULL,
  section_id BIGINT NOT NULL,
  score_average DOUBLE PRECISION,
  score_percentile DOUBLE PRECISION,
  users_count BIGINT NOT NULL DEFAULT 0,
  total_questions BIGINT NOT NULL DEFAULT 0,
  PRIMARY KEY (unit, topic_id)
);

CREATE INDEX IF NOT EXISTS idx_topic_scores_section ON topic_scores(section_id);
`
