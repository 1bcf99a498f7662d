package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/domain"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/transport"
)

func float64Ptr(v float64) *float64 { return &v }

func endedCase(category domain.Category, outcome domain.Outcome) *domain.Case {
	c := seedCase(category, "judgment")
	c.Status = domain.StatusClosed
	c.Outcome = outcome
	return c
}

func TestComputeStatisticsEmptySet(t *testing.T) {
	stats := computeStatistics(nil, svcNowTime)

	if stats.TotalCases != 0 || stats.ActiveCases != 0 {
		t.Errorf("empty set produced totals %d/%d", stats.TotalCases, stats.ActiveCases)
	}
	if stats.SuccessRate != 0 {
		t.Errorf("successRate = %v, want 0 for no completed cases", stats.SuccessRate)
	}
	if math.IsNaN(stats.SuccessRate) {
		t.Error("successRate must never be NaN")
	}
}

func TestComputeStatisticsSuccessRateExcludesOngoing(t *testing.T) {
	cases := []domain.Case{
		*seedCase(domain.CategoryLabor, "filing"), // ongoing, must not dilute the rate
		*endedCase(domain.CategoryLabor, domain.OutcomeWon),
		*endedCase(domain.CategoryLabor, domain.OutcomeLost),
		*endedCase(domain.CategoryCivil, domain.OutcomeSettled),
		*endedCase(domain.CategoryCivil, domain.OutcomeSettled),
	}

	stats := computeStatistics(cases, svcNowTime)

	if stats.TotalCases != 5 || stats.ActiveCases != 1 {
		t.Errorf("totals = %d/%d, want 5/1", stats.TotalCases, stats.ActiveCases)
	}
	// won + settled over completed: (1+2)/4
	if got, want := stats.SuccessRate, 0.75; math.Abs(got-want) > 1e-9 {
		t.Errorf("successRate = %v, want %v", got, want)
	}
	if stats.ByCategory["labor"] != 3 || stats.ByCategory["civil"] != 2 {
		t.Errorf("byCategory = %v", stats.ByCategory)
	}
}

func TestComputeStatisticsWonAmountFallsBackToClaim(t *testing.T) {
	explicit := endedCase(domain.CategoryCommercial, domain.OutcomeWon)
	explicit.FinalAmount = float64Ptr(40000)
	explicit.ClaimAmount = float64Ptr(90000)

	viaEndDetails := endedCase(domain.CategoryCommercial, domain.OutcomeWon)
	viaEndDetails.EndDetails = &domain.EndDetails{FinalAmount: float64Ptr(25000)}

	claimOnly := endedCase(domain.CategoryCommercial, domain.OutcomeWon)
	claimOnly.ClaimAmount = float64Ptr(100000)

	lost := endedCase(domain.CategoryCommercial, domain.OutcomeLost)
	lost.ClaimAmount = float64Ptr(500000) // counted in claims, never in won

	stats := computeStatistics([]domain.Case{*explicit, *viaEndDetails, *claimOnly, *lost}, svcNowTime)

	if got, want := stats.TotalWonAmount, 40000.0+25000.0+100000.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("totalWonAmount = %v, want %v", got, want)
	}
	if got, want := stats.TotalClaimAmount, 90000.0+100000.0+500000.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("totalClaimAmount = %v, want %v", got, want)
	}
}

func TestComputeStatisticsAvgDaysInStage(t *testing.T) {
	c := seedCase(domain.CategoryLabor, "hearing")
	exit := svcNowTime.Add(-48 * time.Hour)
	c.StageHistory = []domain.StageHistoryEntry{
		{Stage: "filing", EnteredAt: svcNowTime.Add(-96 * time.Hour), ExitedAt: &exit}, // 2 days
		{Stage: "hearing", EnteredAt: exit},                                           // open: 2 days up to now
	}

	stats := computeStatistics([]domain.Case{*c}, svcNowTime)

	if got := stats.AvgDaysInStage["labor"]["filing"]; math.Abs(got-2) > 1e-9 {
		t.Errorf("avg days in filing = %v, want 2", got)
	}
	if got := stats.AvgDaysInStage["labor"]["hearing"]; math.Abs(got-2) > 1e-9 {
		t.Errorf("avg days in open hearing = %v, want 2", got)
	}
}

func TestStatisticsFiltersByCategory(t *testing.T) {
	laborCase := seedCase(domain.CategoryLabor, "filing")
	civilCase := seedCase(domain.CategoryCivil, "filing")
	repo := newFakeRepo(laborCase, civilCase)
	svc := newTestService(repo, &recordingBus{})

	stats, err := svc.Statistics(context.Background(), transport.StatisticsRequest{Category: "labor"}, firmCaller())
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.TotalCases != 1 {
		t.Errorf("totalCases = %d, want 1 after category filter", stats.TotalCases)
	}
	if stats.ByCategory["civil"] != 0 {
		t.Errorf("civil cases leaked into filtered stats: %v", stats.ByCategory)
	}
}

func TestListPipelinePagination(t *testing.T) {
	repo := newFakeRepo()
	for i := 0; i < 5; i++ {
		c := seedCase(domain.CategoryCivil, "filing")
		repo.cases[c.ID] = c
	}
	svc := newTestService(repo, &recordingBus{})

	resp, err := svc.ListPipeline(context.Background(),
		transport.ListPipelineRequest{Page: 2, PageSize: 2}, firmCaller())
	if err != nil {
		t.Fatalf("ListPipeline failed: %v", err)
	}
	if len(resp.Cases) != 2 {
		t.Errorf("page length = %d, want 2", len(resp.Cases))
	}
	if resp.Pagination.Total != 5 || resp.Pagination.TotalPages != 3 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
	if resp.Statistics.ByStage["filing"] != 5 {
		t.Errorf("list statistics cover the page, want the whole set: %v", resp.Statistics.ByStage)
	}
}

func TestBoardBucketsByStageAndView(t *testing.T) {
	active := seedCase(domain.CategoryCivil, "filing")
	alsoActive := seedCase(domain.CategoryCivil, "hearing")
	closed := endedCase(domain.CategoryCivil, domain.OutcomeWon)
	repo := newFakeRepo(active, alsoActive, closed)
	svc := newTestService(repo, &recordingBus{})
	ctx := context.Background()

	board, err := svc.Board(ctx, transport.BoardRequest{View: "active"}, firmCaller())
	if err != nil {
		t.Fatalf("Board failed: %v", err)
	}
	if len(board.Stages["filing"]) != 1 || len(board.Stages["hearing"]) != 1 {
		t.Errorf("active board buckets = %v", keysOf(board.Stages))
	}
	if len(board.Stages["judgment"]) != 0 {
		t.Error("closed case leaked into active view")
	}

	closedBoard, err := svc.Board(ctx, transport.BoardRequest{View: "closed"}, firmCaller())
	if err != nil {
		t.Fatalf("Board closed view failed: %v", err)
	}
	if len(closedBoard.Stages["judgment"]) != 1 {
		t.Errorf("closed board buckets = %v", keysOf(closedBoard.Stages))
	}
}

func keysOf(m map[string][]transport.CaseSummaryResponse) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
