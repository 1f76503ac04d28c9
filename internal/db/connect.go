package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DefaultSQLiteDSN keeps foreign keys on for every pooled connection.
const DefaultSQLiteDSN = "file:interviews.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/interviews?sslmode=disable"
		}
	default:
		return nil, errors.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	if err := EnsureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema applies the idempotent schema for driver.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return errors.Errorf("unsupported driver: %s", driver)
	}
	_, err := db.ExecContext(ctx, schema)
	return errors.Wrap(err, "apply schema")
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS dictionary_entries (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,          -- units|difficulties|seniority-levels|groups
  name TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  text TEXT NOT NULL,
  weight REAL NOT NULL CHECK (weight > 0),
  docs_reference TEXT NOT NULL DEFAULT '',
  unit_id TEXT NOT NULL DEFAULT '',
  difficulty_id TEXT NOT NULL DEFAULT '',
  level_id TEXT NOT NULL DEFAULT '',
  group_id TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS templates (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  position TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS template_questions (
  template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  ord INTEGER NOT NULL,
  PRIMARY KEY (template_id, question_id)
);

CREATE TABLE IF NOT EXISTS interviewers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'interviewer',
  password_hash TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS interviews (
  id TEXT PRIMARY KEY,
  template_id TEXT NOT NULL REFERENCES templates(id),
  candidate_id TEXT NOT NULL DEFAULT '',
  candidate_name TEXT NOT NULL,
  position TEXT NOT NULL DEFAULT '',
  interview_date INTEGER NOT NULL,
  status TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS interview_interviewers (
  interview_id TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
  interviewer_id TEXT NOT NULL REFERENCES interviewers(id),
  PRIMARY KEY (interview_id, interviewer_id)
);

CREATE TABLE IF NOT EXISTS scores (
  id TEXT PRIMARY KEY,
  interview_id TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL,
  interviewer_id TEXT NOT NULL,
  value REAL NOT NULL,
  comment TEXT NOT NULL DEFAULT '',
  updated_at INTEGER NOT NULL,
  UNIQUE (interview_id, question_id, interviewer_id)
);

CREATE TABLE IF NOT EXISTS evaluation_drafts (
  interview_id TEXT PRIMARY KEY REFERENCES interviews(id) ON DELETE CASCADE,
  total_score REAL NOT NULL,
  passed BOOLEAN NOT NULL,
  minimal_rate REAL NOT NULL,
  overridden BOOLEAN NOT NULL DEFAULT FALSE,
  score_digest TEXT NOT NULL DEFAULT '',
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluations (
  id TEXT PRIMARY KEY,
  interview_id TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
  total_score REAL NOT NULL,
  passed BOOLEAN NOT NULL,
  minimal_rate REAL NOT NULL,
  overridden BOOLEAN NOT NULL DEFAULT FALSE,
  score_digest TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS phrases (
  id TEXT PRIMARY KEY,
  text TEXT NOT NULL,
  category TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback (
  interview_id TEXT PRIMARY KEY REFERENCES interviews(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback_phrases (
  interview_id TEXT NOT NULL REFERENCES feedback(interview_id) ON DELETE CASCADE,
  phrase_id TEXT NOT NULL REFERENCES phrases(id),
  PRIMARY KEY (interview_id, phrase_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  typ TEXT NOT NULL,       -- e.g. score.recorded
  key TEXT NOT NULL,       -- natural key: interview id
  data TEXT NOT NULL,      -- JSON payload
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scores_interview ON scores(interview_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_interview ON evaluations(interview_id, created_at);
CREATE INDEX IF NOT EXISTS idx_event_log_key ON event_log(key, seq);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS dictionary_entries (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  name TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  text TEXT NOT NULL,
  weight DOUBLE PRECISION NOT NULL CHECK (weight > 0),
  docs_reference TEXT NOT NULL DEFAULT '',
  unit_id TEXT NOT NULL DEFAULT '',
  difficulty_id TEXT NOT NULL DEFAULT '',
  level_id TEXT NOT NULL DEFAULT '',
  group_id TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS templates (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  position TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS template_questions (
  template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  ord INTEGER NOT NULL,
  PRIMARY KEY (template_id, question_id)
);

CREATE TABLE IF NOT EXISTS interviewers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'interviewer',
  password_hash TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS interviews (
  id TEXT PRIMARY KEY,
  template_id TEXT NOT NULL REFERENCES templates(id),
  candidate_id TEXT NOT NULL DEFAULT '',
  candidate_name TEXT NOT NULL,
  position TEXT NOT NULL DEFAULT '',
  interview_date BIGINT NOT NULL,
  status TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS interview_interviewers (
  interview_id TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
  interviewer_id TEXT NOT NULL REFERENCES interviewers(id),
  PRIMARY KEY (interview_id, interviewer_id)
);

CREATE TABLE IF NOT EXISTS scores (
  id TEXT PRIMARY KEY,
  interview_id TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL,
  interviewer_id TEXT NOT NULL,
  value DOUBLE PRECISION NOT NULL,
  comment TEXT NOT NULL DEFAULT '',
  updated_at BIGINT NOT NULL,
  UNIQUE (interview_id, question_id, interviewer_id)
);

CREATE TABLE IF NOT EXISTS evaluation_drafts (
  interview_id TEXT PRIMARY KEY REFERENCES interviews(id) ON DELETE CASCADE,
  total_score DOUBLE PRECISION NOT NULL,
  passed BOOLEAN NOT NULL,
  minimal_rate DOUBLE PRECISION NOT NULL,
  overridden BOOLEAN NOT NULL DEFAULT FALSE,
  score_digest TEXT NOT NULL DEFAULT '',
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluations (
  id TEXT PRIMARY KEY,
  interview_id TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
  total_score DOUBLE PRECISION NOT NULL,
  passed BOOLEAN NOT NULL,
  minimal_rate DOUBLE PRECISION NOT NULL,
  overridden BOOLEAN NOT NULL DEFAULT FALSE,
  score_digest TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS phrases (
  id TEXT PRIMARY KEY,
  text TEXT NOT NULL,
  category TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback (
  interview_id TEXT PRIMARY KEY REFERENCES interviews(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback_phrases (
  interview_id TEXT NOT NULL REFERENCES feedback(interview_id) ON DELETE CASCADE,
  phrase_id TEXT NOT NULL REFERENCES phrases(id),
  PRIMARY KEY (interview_id, phrase_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scores_interview ON scores(interview_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_interview ON evaluations(interview_id, created_at);
CREATE INDEX IF NOT EXISTS idx_event_log_key ON event_log(key, seq);
`
