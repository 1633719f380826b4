package out

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"microlearn/internal/modules/learning/domain"
	learningout "microlearn/internal/modules/learning/port/out"
)

type PoolConfig struct {
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// PostgresProgressProjector mirrors the ledger into a shared PostgreSQL table.
type PostgresProgressProjector struct {
	pool *pgxpool.Pool
}

func NewPostgresProgressProjector(ctx context.Context, dsn string, cfg PoolConfig) (learningout.ProgressProjector, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("new postgres pool: %w", err)
	}
	projector := &PostgresProgressProjector{pool: pool}
	if err := projector.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return projector, nil
}

func (p *PostgresProgressProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS module_progress (
	module_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	category TEXT NOT NULL,
	in_catalog BOOLEAN NOT NULL,
	completed BOOLEAN NOT NULL,
	progress INTEGER NOT NULL CHECK (progress BETWEEN 0 AND 100),
	completed_at TIMESTAMPTZ,
	time_spent INTEGER NOT NULL,
	quiz_scores INTEGER[] NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create module_progress table: %w", err)
	}
	return nil
}

func (p *PostgresProgressProjector) Reset(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM module_progress`); err != nil {
		return fmt.Errorf("reset module_progress: %w", err)
	}
	return nil
}

func (p *PostgresProgressProjector) UpsertEntry(ctx context.Context, entry domain.LedgerEntry) error {
	query := `
		INSERT INTO module_progress (module_id, title, category, in_catalog, completed, progress, completed_at, time_spent, quiz_scores, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (module_id)
		DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			in_catalog = excluded.in_catalog,
			completed = excluded.completed,
			progress = excluded.progress,
			completed_at = excluded.completed_at,
			time_spent = excluded.time_spent,
			quiz_scores = excluded.quiz_scores,
			updated_at = excluded.updated_at
	`
	scores := make([]int32, 0, len(entry.Record.QuizScores))
	for _, score := range entry.Record.QuizScores {
		scores = append(scores, int32(score))
	}
	_, err := p.pool.Exec(
		ctx, query,
		entry.Record.ModuleID,
		entry.Module.Title,
		entry.Module.Category,
		entry.CatalogHit,
		entry.Module.Completed,
		entry.Record.Progress,
		entry.Record.CompletedAt,
		entry.Record.TimeSpent,
		scores,
		entry.Record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert module progress: %w", err)
	}
	return nil
}

func (p *PostgresProgressProjector) Close() error {
	p.pool.Close()
	return nil
}
