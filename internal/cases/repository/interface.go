package repository

import (
	"context"

	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/domain"

	"github.com/google/uuid"
)

// TenantScope restricts list queries to the caller's tenant: firm members
// see their firm's cases, solo lawyers see their own.
type TenantScope struct {
	UserID uuid.UUID
	FirmID *uuid.UUID
}

// Filter narrows pipeline queries. Nil fields are ignored.
type Filter struct {
	Category *domain.Category
	Outcome  *domain.Outcome
	Priority *string
	// Statuses restricts to the given statuses (e.g. terminal-only for the
	// closed board view). Empty means all.
	Statuses []domain.Status
}

// ListParams adds pagination to a filtered list query.
type ListParams struct {
	Filter Filter
	Offset int
	Limit  int
}

// LinkedCounts are cross-entity counts shown on the pipeline list view.
type LinkedCounts struct {
	Tasks     int
	WikiPages int
	Reminders int
	Events    int
}

// CaseWithCounts is a list-view row: the case plus its linked-entity counts.
type CaseWithCounts struct {
	Case   domain.Case
	Counts LinkedCounts
}

// GroupCounts are aggregate counts over a filtered case set.
type GroupCounts struct {
	ByStage   map[string]int
	ByOutcome map[string]int
}

// Reader provides read access to cases.
type Reader interface {
	// GetByID loads a case by id, excluding soft-deleted rows.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error)
	// List returns a page of cases in the scope plus the filtered total,
	// sorted by recency, each enriched with linked-entity counts.
	List(ctx context.Context, scope TenantScope, params ListParams) ([]CaseWithCounts, int, error)
	// ListAll returns every case matching the scope and filter, with full
	// stage history. Used by the board view and statistics, which the
	// service computes in memory (case volume per tenant is bounded).
	ListAll(ctx context.Context, scope TenantScope, filter Filter) ([]domain.Case, error)
	// GroupCounts aggregates counts by current stage and by outcome over
	// the same filtered set as List.
	GroupCounts(ctx context.Context, scope TenantScope, filter Filter) (GroupCounts, error)
}

// Writer provides write access to cases.
type Writer interface {
	// Update persists a mutated case with an optimistic revision check.
	// A concurrent writer causes a conflict error; no partial write occurs.
	Update(ctx context.Context, c *domain.Case) error
}

// Repository combines case read and write access.
type Repository interface {
	Reader
	Writer
}
