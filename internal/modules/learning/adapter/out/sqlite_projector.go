package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"microlearn/internal/modules/learning/domain"
	learningout "microlearn/internal/modules/learning/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteProgressProjector struct {
	db *sql.DB
}

func NewSQLiteProgressProjector(dbPath string) (learningout.ProgressProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteProgressProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteProgressProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS module_progress (
  module_id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  category TEXT NOT NULL,
  in_catalog INTEGER NOT NULL,
  completed INTEGER NOT NULL,
  progress INTEGER NOT NULL,
  completed_at TEXT,
  time_spent INTEGER NOT NULL,
  quiz_scores TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create module_progress table: %w", err)
	}
	return nil
}

func (s *SQLiteProgressProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM module_progress`); err != nil {
		return fmt.Errorf("reset module_progress: %w", err)
	}
	return nil
}

func (s *SQLiteProgressProjector) UpsertEntry(ctx context.Context, entry domain.LedgerEntry) error {
	const stmt = `
INSERT INTO module_progress (module_id, title, category, in_catalog, completed, progress, completed_at, time_spent, quiz_scores, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(module_id) DO UPDATE SET
  title=excluded.title,
  category=excluded.category,
  in_catalog=excluded.in_catalog,
  completed=excluded.completed,
  progress=excluded.progress,
  completed_at=excluded.completed_at,
  time_spent=excluded.time_spent,
  quiz_scores=excluded.quiz_scores,
  updated_at=excluded.updated_at;
`
	scores, err := json.Marshal(quizScores(entry.Record))
	if err != nil {
		return fmt.Errorf("encode quiz scores: %w", err)
	}
	var completedAt any
	if entry.Record.CompletedAt != nil {
		completedAt = entry.Record.CompletedAt.Format(time.RFC3339)
	}
	_, err = s.db.ExecContext(ctx, stmt,
		entry.Record.ModuleID,
		entry.Module.Title,
		entry.Module.Category,
		entry.CatalogHit,
		entry.Module.Completed,
		entry.Record.Progress,
		completedAt,
		entry.Record.TimeSpent,
		string(scores),
		entry.Record.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert module progress: %w", err)
	}
	return nil
}

func (s *SQLiteProgressProjector) Close() error {
	return s.db.Close()
}

func quizScores(record domain.ProgressRecord) []int {
	if record.QuizScores == nil {
		return []int{}
	}
	return record.QuizScores
}
