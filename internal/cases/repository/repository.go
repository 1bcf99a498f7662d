package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/domain"
	"github.com/mischa23v/traf3li-backend-sub004/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	caseNotFoundMessage = "case not found"
	caseConflictMessage = "case was modified concurrently, retry"
)

// Repo implements the Repository interface with PostgreSQL. A case is a
// single row; stage history, notes, end details, and the legacy document
// shape live in JSONB columns, so every command touches exactly one row.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new cases repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const caseColumns = `c.id, c.firm_id, c.lawyer_id, c.title, c.category, c.priority, c.status, c.outcome,
	c.current_stage, c.stage_entered_at, c.stage_history, c.notes, c.end_details,
	c.claim_amount, c.expected_win_amount, c.final_amount,
	c.plaintiff_name, c.defendant_name, c.court_name, c.details,
	c.revision, c.created_at, c.updated_at, c.deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner, extra ...any) (domain.Case, error) {
	var (
		c                                  domain.Case
		historyJSON, notesJSON, detailsRaw []byte
		endDetailsJSON                     []byte
	)

	dest := []any{
		&c.ID, &c.FirmID, &c.LawyerID, &c.Title, &c.Category, &c.Priority, &c.Status, &c.Outcome,
		&c.CurrentStage, &c.StageEnteredAt, &historyJSON, &notesJSON, &endDetailsJSON,
		&c.ClaimAmount, &c.ExpectedWinAmount, &c.FinalAmount,
		&c.PlaintiffName, &c.DefendantName, &c.CourtName, &detailsRaw,
		&c.Revision, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return domain.Case{}, err
	}

	if err := json.Unmarshal(historyJSON, &c.StageHistory); err != nil {
		return domain.Case{}, fmt.Errorf("decode stage history: %w", err)
	}
	if err := json.Unmarshal(notesJSON, &c.Notes); err != nil {
		return domain.Case{}, fmt.Errorf("decode notes: %w", err)
	}
	if len(endDetailsJSON) > 0 {
		if err := json.Unmarshal(endDetailsJSON, &c.EndDetails); err != nil {
			return domain.Case{}, fmt.Errorf("decode end details: %w", err)
		}
	}
	if len(detailsRaw) > 0 {
		if err := json.Unmarshal(detailsRaw, &c.LegacyDetails); err != nil {
			return domain.Case{}, fmt.Errorf("decode details: %w", err)
		}
	}

	return c, nil
}

// GetByID retrieves a case by id, excluding soft-deleted rows.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM cases c WHERE c.id = $1 AND c.deleted_at IS NULL`, caseColumns)

	c, err := scanCase(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(caseNotFoundMessage).WithArabic("القضية غير موجودة")
		}
		return nil, fmt.Errorf("get case by id: %w", err)
	}
	return &c, nil
}

// Update persists the mutated case. The revision check makes a concurrent
// transition a detectable conflict instead of a silent lost update.
func (r *Repo) Update(ctx context.Context, c *domain.Case) error {
	historyJSON, err := json.Marshal(c.StageHistory)
	if err != nil {
		return fmt.Errorf("encode stage history: %w", err)
	}
	notesJSON, err := json.Marshal(c.Notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	var endDetailsJSON []byte
	if c.EndDetails != nil {
		endDetailsJSON, err = json.Marshal(c.EndDetails)
		if err != nil {
			return fmt.Errorf("encode end details: %w", err)
		}
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE cases SET
			status = $2,
			outcome = $3,
			current_stage = $4,
			stage_entered_at = $5,
			stage_history = $6,
			notes = $7,
			end_details = $8,
			final_amount = $9,
			updated_at = $10,
			revision = revision + 1
		WHERE id = $1 AND revision = $11 AND deleted_at IS NULL`,
		c.ID, c.Status, c.Outcome, c.CurrentStage, c.StageEnteredAt,
		historyJSON, notesJSON, endDetailsJSON, c.FinalAmount,
		time.Now().UTC(), c.Revision,
	)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict(caseConflictMessage).WithArabic("تم تعديل القضية من جهة أخرى، أعد المحاولة")
	}

	c.Revision++
	return nil
}

// scopeClause returns the tenant ownership predicate and its argument.
func scopeClause(scope TenantScope, args *[]any) string {
	if scope.FirmID != nil {
		*args = append(*args, *scope.FirmID)
		return fmt.Sprintf("c.firm_id = $%d", len(*args))
	}
	*args = append(*args, scope.UserID)
	return fmt.Sprintf("c.lawyer_id = $%d", len(*args))
}

func filterClauses(filter Filter, args *[]any) []string {
	var clauses []string
	if filter.Category != nil {
		*args = append(*args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("c.category = $%d", len(*args)))
	}
	if filter.Outcome != nil {
		*args = append(*args, *filter.Outcome)
		clauses = append(clauses, fmt.Sprintf("c.outcome = $%d", len(*args)))
	}
	if filter.Priority != nil {
		*args = append(*args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("c.priority = $%d", len(*args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		*args = append(*args, statuses)
		clauses = append(clauses, fmt.Sprintf("c.status = ANY($%d)", len(*args)))
	}
	return clauses
}

func whereClause(scope TenantScope, filter Filter, args *[]any) string {
	clauses := []string{"c.deleted_at IS NULL", scopeClause(scope, args)}
	clauses = append(clauses, filterClauses(filter, args)...)
	return strings.Join(clauses, " AND ")
}

// List returns a page of cases sorted by recency, each with its
// linked-entity counts, plus the total over the filtered set.
func (r *Repo) List(ctx context.Context, scope TenantScope, params ListParams) ([]CaseWithCounts, int, error) {
	var args []any
	where := whereClause(scope, params.Filter, &args)

	args = append(args, params.Limit)
	limitPos := len(args)
	args = append(args, params.Offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT %s,
			(SELECT COUNT(*) FROM case_tasks t WHERE t.case_id = c.id),
			(SELECT COUNT(*) FROM case_wiki_pages w WHERE w.case_id = c.id),
			(SELECT COUNT(*) FROM case_reminders rm WHERE rm.case_id = c.id),
			(SELECT COUNT(*) FROM case_events e WHERE e.case_id = c.id),
			COUNT(*) OVER() AS total
		FROM cases c
		WHERE %s
		ORDER BY c.updated_at DESC
		LIMIT $%d OFFSET $%d`, caseColumns, where, limitPos, offsetPos)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	results := make([]CaseWithCounts, 0)
	total := 0
	for rows.Next() {
		var counts LinkedCounts
		c, err := scanCase(rows, &counts.Tasks, &counts.WikiPages, &counts.Reminders, &counts.Events, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan case row: %w", err)
		}
		results = append(results, CaseWithCounts{Case: c, Counts: counts})
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return results, total, nil
}

// ListAll returns every case matching the scope and filter, newest first.
func (r *Repo) ListAll(ctx context.Context, scope TenantScope, filter Filter) ([]domain.Case, error) {
	var args []any
	where := whereClause(scope, filter, &args)

	query := fmt.Sprintf(`
		SELECT %s FROM cases c
		WHERE %s
		ORDER BY c.updated_at DESC`, caseColumns, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list all cases: %w", err)
	}
	defer rows.Close()

	cases := make([]domain.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		cases = append(cases, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return cases, nil
}

// GroupCounts aggregates counts by current stage and by outcome over the
// same filtered set as List, in a single pass.
func (r *Repo) GroupCounts(ctx context.Context, scope TenantScope, filter Filter) (GroupCounts, error) {
	var args []any
	where := whereClause(scope, filter, &args)

	query := fmt.Sprintf(`
		SELECT 'stage' AS dimension, c.current_stage AS value, COUNT(*) AS total
		FROM cases c WHERE %s GROUP BY c.current_stage
		UNION ALL
		SELECT 'outcome' AS dimension, c.outcome AS value, COUNT(*) AS total
		FROM cases c WHERE %s GROUP BY c.outcome`, where, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return GroupCounts{}, fmt.Errorf("group counts: %w", err)
	}
	defer rows.Close()

	counts := GroupCounts{
		ByStage:   make(map[string]int),
		ByOutcome: make(map[string]int),
	}
	for rows.Next() {
		var dimension, value string
		var total int
		if err := rows.Scan(&dimension, &value, &total); err != nil {
			return GroupCounts{}, fmt.Errorf("scan group counts: %w", err)
		}
		switch dimension {
		case "stage":
			counts.ByStage[value] = total
		case "outcome":
			counts.ByOutcome[value] = total
		}
	}
	if rows.Err() != nil {
		return GroupCounts{}, rows.Err()
	}

	return counts, nil
}
