package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"bhandara/internal/registration/models"
)

// Postgres persists each conversation as one jsonb row. Save replaces the
// whole set inside a transaction so the table always reflects exactly one
// snapshot, mirroring the file backend.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the conversations table if needed.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS conversations (
			id           TEXT PRIMARY KEY,
			current_step TEXT NOT NULL,
			created_at   TEXT NOT NULL,
			payload      JSONB NOT NULL,
			seq          INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure conversations schema: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context) ([]*models.Conversation, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT payload FROM conversations ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load snapshot from postgres: %w", err)
	}
	defer rows.Close()

	var records []*models.Conversation
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		var rec models.Conversation
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode conversation row: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (p *Postgres) Save(ctx context.Context, records []*models.Conversation) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations`); err != nil {
		return fmt.Errorf("clear conversations: %w", err)
	}
	for i, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode conversation %s: %w", rec.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO conversations (id, current_step, created_at, payload, seq)
			VALUES ($1, $2, $3, $4, $5)
		`, rec.ID, string(rec.CurrentStep), rec.Timestamp, raw, i)
		if err != nil {
			return fmt.Errorf("insert conversation %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (p *Postgres) Health(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
