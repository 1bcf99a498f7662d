// Package service implements the case pipeline engine: stage transition
// commands, pipeline queries and statistics, and note management.
package service

import (
	"context"
	"time"

	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/domain"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/repository"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/transport"
	"github.com/mischa23v/traf3li-backend-sub004/internal/events"
	"github.com/mischa23v/traf3li-backend-sub004/platform/apperr"
	"github.com/mischa23v/traf3li-backend-sub004/platform/cache"
	"github.com/mischa23v/traf3li-backend-sub004/platform/logger"
	"github.com/mischa23v/traf3li-backend-sub004/platform/sanitize"

	"github.com/google/uuid"
)

// Caller identifies the authenticated user and their tenant scope.
// FirmID is nil for solo lawyers.
type Caller struct {
	UserID uuid.UUID
	FirmID *uuid.UUID
}

func (c Caller) scope() repository.TenantScope {
	return repository.TenantScope{UserID: c.UserID, FirmID: c.FirmID}
}

// Service provides the case pipeline business logic.
type Service struct {
	repo  repository.Repository
	bus   events.Bus
	vocab domain.Vocabulary
	cache *cache.Cache // nil disables statistics caching
	log   *logger.Logger
	now   func() time.Time
}

// New creates the pipeline service. The vocabulary is injected so tenant
// configuration can replace the default table without touching the engine.
func New(repo repository.Repository, bus events.Bus, vocab domain.Vocabulary, statsCache *cache.Cache, log *logger.Logger) *Service {
	return &Service{
		repo:  repo,
		bus:   bus,
		vocab: vocab,
		cache: statsCache,
		log:   log,
		now:   time.Now,
	}
}

var errCaseForbidden = func() *apperr.Error {
	return apperr.Forbidden("you do not have access to this case").
		WithArabic("ليس لديك صلاحية الوصول لهذه القضية")
}

// loadAccessible loads the case and enforces the ownership check: same
// firm as the case, or the case's assigned lawyer. Existence is confirmed
// before access is checked, so NotFound and Forbidden stay distinct.
func (s *Service) loadAccessible(ctx context.Context, caseID uuid.UUID, caller Caller) (*domain.Case, error) {
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !c.AccessibleBy(caller.UserID, caller.FirmID) {
		return nil, errCaseForbidden()
	}
	return c, nil
}

// CheckAccess reports whether the caller may view the case. Used by
// collaborating modules (the audit trail) that serve case-scoped reads.
func (s *Service) CheckAccess(ctx context.Context, caseID uuid.UUID, caller Caller) error {
	_, err := s.loadAccessible(ctx, caseID, caller)
	return err
}

// MoveToStage transitions a case to a new stage and returns the updated
// pipeline projection. The audit event is published after persistence and
// cannot fail the command.
func (s *Service) MoveToStage(ctx context.Context, caseID uuid.UUID, req transport.MoveStageRequest, caller Caller) (transport.MoveStageResponse, error) {
	c, err := s.loadAccessible(ctx, caseID, caller)
	if err != nil {
		return transport.MoveStageResponse{}, err
	}

	oldStage := c.CurrentStage
	if err := c.MoveToStage(s.vocab, req.NewStage, sanitize.Text(req.Notes), caller.UserID, s.now().UTC()); err != nil {
		return transport.MoveStageResponse{}, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return transport.MoveStageResponse{}, err
	}

	s.log.StageTransition(c.ID.String(), caller.UserID.String(), oldStage, c.CurrentStage)
	s.invalidateStats(ctx, caller)
	s.bus.Publish(ctx, events.CaseStageChanged{
		BaseEvent: events.NewBaseEvent(),
		CaseID:    c.ID,
		UserID:    caller.UserID,
		OldStage:  oldStage,
		NewStage:  c.CurrentStage,
		Note:      req.Notes,
	})

	return toMoveStageResponse(c), nil
}

// EndCase closes a case with a final outcome. The case's stage is frozen
// where it was; a second end attempt is rejected.
func (s *Service) EndCase(ctx context.Context, caseID uuid.UUID, req transport.EndCaseRequest, caller Caller) (transport.EndCaseResponse, error) {
	c, err := s.loadAccessible(ctx, caseID, caller)
	if err != nil {
		return transport.EndCaseResponse{}, err
	}

	params := domain.EndParams{
		Outcome:     domain.Outcome(req.Outcome),
		EndReason:   sanitize.Text(req.EndReason),
		FinalAmount: req.FinalAmount,
		Notes:       sanitize.Text(req.Notes),
		EndDate:     req.EndDate,
	}
	if err := c.End(params, caller.UserID, s.now().UTC()); err != nil {
		return transport.EndCaseResponse{}, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return transport.EndCaseResponse{}, err
	}

	s.invalidateStats(ctx, caller)
	s.bus.Publish(ctx, events.CaseEnded{
		BaseEvent:   events.NewBaseEvent(),
		CaseID:      c.ID,
		UserID:      caller.UserID,
		Outcome:     string(c.Outcome),
		EndReason:   c.EndDetails.EndReason,
		FinalAmount: c.EndDetails.FinalAmount,
	})

	return transport.EndCaseResponse{
		CaseID:  c.ID,
		Status:  string(c.Status),
		Outcome: string(c.Outcome),
		EndDetails: transport.EndDetailsResponse{
			EndDate:     c.EndDetails.EndDate,
			EndReason:   c.EndDetails.EndReason,
			FinalAmount: c.EndDetails.FinalAmount,
			Notes:       c.EndDetails.Notes,
			EndedBy:     c.EndDetails.EndedBy,
		},
	}, nil
}

// GetValidStages resolves the stage vocabulary for a category. The lookup
// is total: unrecognized categories fall back to the "other" list.
func (s *Service) GetValidStages(category string) transport.ValidStagesResponse {
	resolved := domain.ParseCategory(category)

	table := make(map[string][]string)
	for cat, stages := range s.vocab.All() {
		table[string(cat)] = stages
	}

	return transport.ValidStagesResponse{
		Category:      string(resolved),
		Stages:        s.vocab.StagesFor(resolved),
		AllCategories: table,
	}
}

func toMoveStageResponse(c *domain.Case) transport.MoveStageResponse {
	history := make([]transport.StageHistoryEntryResponse, len(c.StageHistory))
	for i, entry := range c.StageHistory {
		history[i] = transport.StageHistoryEntryResponse{
			Stage:     entry.Stage,
			EnteredAt: entry.EnteredAt,
			ExitedAt:  entry.ExitedAt,
			Notes:     entry.Notes,
			ChangedBy: entry.ChangedBy,
		}
	}
	return transport.MoveStageResponse{
		CaseID:         c.ID,
		CurrentStage:   c.CurrentStage,
		StageEnteredAt: c.StageEnteredAt,
		StageHistory:   history,
	}
}
