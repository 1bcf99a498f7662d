package service

import (
	"context"

	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/domain"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/repository"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/transport"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func tenantKey(caller Caller) string {
	if caller.FirmID != nil {
		return caller.FirmID.String()
	}
	return caller.UserID.String()
}

func (s *Service) invalidateStats(ctx context.Context, caller Caller) {
	s.cache.DeletePrefix(ctx, "pipeline:stats:"+tenantKey(caller))
}

func listFilter(category, outcome, priority string) repository.Filter {
	var filter repository.Filter
	if category != "" {
		parsed := domain.ParseCategory(category)
		filter.Category = &parsed
	}
	if outcome != "" {
		o := domain.Outcome(outcome)
		filter.Outcome = &o
	}
	if priority != "" {
		filter.Priority = &priority
	}
	return filter
}

// ListPipeline returns a page of the caller's cases sorted by recency,
// each enriched with linked-entity counts and days-in-stage, plus stage
// and outcome aggregates computed over the whole filtered set.
func (s *Service) ListPipeline(ctx context.Context, req transport.ListPipelineRequest, caller Caller) (transport.PipelineListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := listFilter(req.Category, req.Outcome, req.Priority)
	params := repository.ListParams{
		Filter: filter,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}

	rows, total, err := s.repo.List(ctx, caller.scope(), params)
	if err != nil {
		return transport.PipelineListResponse{}, err
	}

	counts, err := s.repo.GroupCounts(ctx, caller.scope(), filter)
	if err != nil {
		return transport.PipelineListResponse{}, err
	}

	now := s.now().UTC()
	cases := make([]transport.PipelineCaseResponse, len(rows))
	for i, row := range rows {
		c := row.Case
		cases[i] = transport.PipelineCaseResponse{
			ID:                 c.ID,
			Title:              c.Title,
			Category:           string(c.Category),
			Priority:           c.Priority,
			Status:             string(c.Status),
			Outcome:            string(c.Outcome),
			CurrentStage:       c.CurrentStage,
			StageEnteredAt:     c.StageEnteredAt,
			DaysInCurrentStage: c.DaysInCurrentStage(now),
			ClaimAmount:        c.ClaimAmount,
			Counts: transport.LinkedCountsResponse{
				Tasks:     row.Counts.Tasks,
				WikiPages: row.Counts.WikiPages,
				Reminders: row.Counts.Reminders,
				Events:    row.Counts.Events,
			},
			UpdatedAt: c.UpdatedAt,
		}
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return transport.PipelineListResponse{
		Cases: cases,
		Pagination: transport.PaginationResponse{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		Statistics: transport.ListStatisticsResponse{
			ByStage:   counts.ByStage,
			ByOutcome: counts.ByOutcome,
		},
	}, nil
}

// Board returns the caller's cases bucketed by current stage for the
// kanban view. The active view shows non-terminal cases; the closed view
// shows ended ones.
func (s *Service) Board(ctx context.Context, req transport.BoardRequest, caller Caller) (transport.BoardResponse, error) {
	filter := listFilter(req.Category, "", "")
	if req.View == "closed" {
		filter.Statuses = []domain.Status{domain.StatusClosed, domain.StatusCompleted}
	} else {
		filter.Statuses = []domain.Status{domain.StatusOpen, domain.StatusOnHold}
	}

	cases, err := s.repo.ListAll(ctx, caller.scope(), filter)
	if err != nil {
		return transport.BoardResponse{}, err
	}

	now := s.now().UTC()
	buckets := make(map[string][]transport.CaseSummaryResponse)
	for i := range cases {
		c := &cases[i]
		buckets[c.CurrentStage] = append(buckets[c.CurrentStage], transport.CaseSummaryResponse{
			ID:                 c.ID,
			Title:              c.Title,
			PlaintiffName:      c.ResolvePlaintiffName(),
			DefendantName:      c.ResolveDefendantName(),
			CourtName:          c.CourtName,
			ClaimAmount:        c.ClaimAmount,
			LatestNote:         c.LatestNoteText(),
			DaysInCurrentStage: c.DaysInCurrentStage(now),
			Outcome:            string(c.Outcome),
		})
	}

	return transport.BoardResponse{Stages: buckets}, nil
}

// Statistics recomputes the aggregate pipeline statistics for the caller's
// tenant. When a redis cache is wired, results are memoized per tenant and
// filter with a short TTL and invalidated on every command; a cache miss
// or failure just recomputes.
func (s *Service) Statistics(ctx context.Context, req transport.StatisticsRequest, caller Caller) (transport.StatisticsResponse, error) {
	key := "pipeline:stats:" + tenantKey(caller) + ":" + req.Category

	var cached transport.StatisticsResponse
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	cases, err := s.repo.ListAll(ctx, caller.scope(), listFilter(req.Category, "", ""))
	if err != nil {
		return transport.StatisticsResponse{}, err
	}

	stats := computeStatistics(cases, s.now().UTC())
	s.cache.Set(ctx, key, stats)

	return stats, nil
}
