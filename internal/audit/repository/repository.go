// Package repository provides persistence for the append-only case audit log.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one audit trail record.
type Entry struct {
	ID         uuid.UUID
	CaseID     uuid.UUID
	UserID     uuid.UUID
	Action     string
	Details    map[string]interface{}
	OccurredAt time.Time
}

// Repository persists and reads audit entries.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	ListForCase(ctx context.Context, caseID uuid.UUID, limit int) ([]Entry, error)
}

// Repo is the pgx implementation of Repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Insert(ctx context.Context, entry Entry) error {
	details := entry.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO case_audit_log (case_id, user_id, action, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.CaseID, entry.UserID, entry.Action, detailsJSON, entry.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *Repo) ListForCase(ctx context.Context, caseID uuid.UUID, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, user_id, action, details, occurred_at
		FROM case_audit_log
		WHERE case_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2`,
		caseID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var detailsJSON []byte
		if err := rows.Scan(&entry.ID, &entry.CaseID, &entry.UserID, &entry.Action, &detailsJSON, &entry.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
