package service

import (
	"time"

	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/domain"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/transport"
)

// computeStatistics recomputes the aggregate pipeline statistics from the
// full filtered case set. Recomputation on every request is the source of
// truth; the redis cache in queries.go only memoizes this result.
func computeStatistics(cases []domain.Case, now time.Time) transport.StatisticsResponse {
	stats := transport.StatisticsResponse{
		ByCategory:     make(map[string]int),
		ByStage:        make(map[string]map[string]int),
		AvgDaysInStage: make(map[string]map[string]float64),
	}

	type dwell struct {
		totalDays float64
		intervals int
	}
	dwells := make(map[string]map[string]*dwell)

	for i := range cases {
		c := &cases[i]
		category := string(c.Category)

		stats.TotalCases++
		if !c.IsTerminal() {
			stats.ActiveCases++
		}
		switch c.Outcome {
		case domain.OutcomeWon:
			stats.WonCases++
		case domain.OutcomeLost:
			stats.LostCases++
		case domain.OutcomeSettled:
			stats.SettledCases++
		}

		stats.ByCategory[category]++

		if stats.ByStage[category] == nil {
			stats.ByStage[category] = make(map[string]int)
		}
		stats.ByStage[category][c.CurrentStage]++

		if c.ClaimAmount != nil {
			stats.TotalClaimAmount += *c.ClaimAmount
		}
		if c.Outcome == domain.OutcomeWon {
			// Realized amount falls back to the claim when no explicit
			// final amount was recorded at end time.
			switch {
			case c.FinalAmount != nil:
				stats.TotalWonAmount += *c.FinalAmount
			case c.EndDetails != nil && c.EndDetails.FinalAmount != nil:
				stats.TotalWonAmount += *c.EndDetails.FinalAmount
			case c.ClaimAmount != nil:
				stats.TotalWonAmount += *c.ClaimAmount
			}
		}

		// Dwell time per (category, stage), over cases that have ever
		// entered a stage. Open intervals are measured up to now.
		for _, entry := range c.StageHistory {
			end := now
			if entry.ExitedAt != nil {
				end = *entry.ExitedAt
			}
			days := end.Sub(entry.EnteredAt).Hours() / 24
			if days < 0 {
				days = 0
			}
			if dwells[category] == nil {
				dwells[category] = make(map[string]*dwell)
			}
			if dwells[category][entry.Stage] == nil {
				dwells[category][entry.Stage] = &dwell{}
			}
			d := dwells[category][entry.Stage]
			d.totalDays += days
			d.intervals++
		}
	}

	for category, stages := range dwells {
		stats.AvgDaysInStage[category] = make(map[string]float64)
		for stage, d := range stages {
			stats.AvgDaysInStage[category][stage] = d.totalDays / float64(d.intervals)
		}
	}

	// Success rate over completed cases only; defined as 0 when none have
	// completed (never NaN).
	completed := stats.WonCases + stats.LostCases + stats.SettledCases
	if completed > 0 {
		stats.SuccessRate = float64(stats.WonCases+stats.SettledCases) / float64(completed)
	}

	return stats
}
