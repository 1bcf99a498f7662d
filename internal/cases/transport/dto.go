// Package transport defines the request and response DTOs for the case
// pipeline HTTP surface.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Requests
// =============================================================================

// MoveStageRequest moves a case to a new pipeline stage.
type MoveStageRequest struct {
	NewStage string `json:"newStage" validate:"required,min=1,max=100"`
	Notes    string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// EndCaseRequest closes a case with a final outcome.
type EndCaseRequest struct {
	Outcome     string     `json:"outcome" validate:"required,oneof=won lost settled"`
	EndReason   string     `json:"endReason,omitempty" validate:"omitempty,max=1000"`
	FinalAmount *float64   `json:"finalAmount,omitempty" validate:"omitempty,gte=0"`
	Notes       string     `json:"notes,omitempty" validate:"omitempty,max=2000"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

// ListPipelineRequest filters and paginates the pipeline list view.
type ListPipelineRequest struct {
	Category string `form:"category" validate:"omitempty,max=50"`
	Outcome  string `form:"outcome" validate:"omitempty,oneof=ongoing won lost settled"`
	Priority string `form:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// BoardRequest selects which cases the kanban board shows.
type BoardRequest struct {
	View     string `form:"view" validate:"omitempty,oneof=active closed"`
	Category string `form:"category" validate:"omitempty,max=50"`
}

// StatisticsRequest filters the aggregate statistics.
type StatisticsRequest struct {
	Category string `form:"category" validate:"omitempty,max=50"`
}

// CreateNoteRequest adds a note to a case.
type CreateNoteRequest struct {
	Text      string `json:"text" validate:"required,max=2000"`
	IsPrivate bool   `json:"isPrivate"`
	StageID   string `json:"stageId,omitempty" validate:"omitempty,max=100"`
}

// UpdateNoteRequest edits a note. Nil fields are left unchanged.
type UpdateNoteRequest struct {
	Text      *string `json:"text,omitempty" validate:"omitempty,max=2000"`
	IsPrivate *bool   `json:"isPrivate,omitempty"`
}

// ListNotesRequest paginates a case's notes.
type ListNotesRequest struct {
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	Sort     string `form:"sort" validate:"omitempty,oneof=newest oldest"`
}

// =============================================================================
// Responses
// =============================================================================

// StageHistoryEntryResponse is one stage occupancy interval.
type StageHistoryEntryResponse struct {
	Stage     string     `json:"stage"`
	EnteredAt time.Time  `json:"enteredAt"`
	ExitedAt  *time.Time `json:"exitedAt"`
	Notes     string     `json:"notes,omitempty"`
	ChangedBy uuid.UUID  `json:"changedBy"`
}

// MoveStageResponse is the updated pipeline projection after a transition.
type MoveStageResponse struct {
	CaseID         uuid.UUID                   `json:"caseId"`
	CurrentStage   string                      `json:"currentStage"`
	StageEnteredAt time.Time                   `json:"stageEnteredAt"`
	StageHistory   []StageHistoryEntryResponse `json:"stageHistory"`
}

// EndDetailsResponse describes how a case was ended.
type EndDetailsResponse struct {
	EndDate     time.Time `json:"endDate"`
	EndReason   string    `json:"endReason,omitempty"`
	FinalAmount *float64  `json:"finalAmount,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	EndedBy     uuid.UUID `json:"endedBy"`
}

// EndCaseResponse is returned after a case is ended.
type EndCaseResponse struct {
	CaseID     uuid.UUID          `json:"caseId"`
	Status     string             `json:"status"`
	Outcome    string             `json:"outcome"`
	EndDetails EndDetailsResponse `json:"endDetails"`
}

// ValidStagesResponse is the stage vocabulary lookup result.
type ValidStagesResponse struct {
	Category      string              `json:"category"`
	Stages        []string            `json:"stages"`
	AllCategories map[string][]string `json:"allCategories"`
}

// LinkedCountsResponse carries cross-entity counts for a list row.
type LinkedCountsResponse struct {
	Tasks     int `json:"tasks"`
	WikiPages int `json:"wikiPages"`
	Reminders int `json:"reminders"`
	Events    int `json:"events"`
}

// PipelineCaseResponse is one row of the pipeline list view.
type PipelineCaseResponse struct {
	ID                 uuid.UUID            `json:"id"`
	Title              string               `json:"title"`
	Category           string               `json:"category"`
	Priority           string               `json:"priority"`
	Status             string               `json:"status"`
	Outcome            string               `json:"outcome"`
	CurrentStage       string               `json:"currentStage"`
	StageEnteredAt     time.Time            `json:"stageEnteredAt"`
	DaysInCurrentStage int                  `json:"daysInCurrentStage"`
	ClaimAmount        *float64             `json:"claimAmount,omitempty"`
	Counts             LinkedCountsResponse `json:"counts"`
	UpdatedAt          time.Time            `json:"updatedAt"`
}

// PaginationResponse describes the returned page.
type PaginationResponse struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListStatisticsResponse are the aggregate counts computed over the same
// filtered set as the page (not just the page).
type ListStatisticsResponse struct {
	ByStage   map[string]int `json:"byStage"`
	ByOutcome map[string]int `json:"byOutcome"`
}

// PipelineListResponse is the full list-view payload.
type PipelineListResponse struct {
	Cases      []PipelineCaseResponse `json:"cases"`
	Pagination PaginationResponse     `json:"pagination"`
	Statistics ListStatisticsResponse `json:"statistics"`
}

// CaseSummaryResponse is the denormalized board card projection.
type CaseSummaryResponse struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	PlaintiffName      string    `json:"plaintiffName"`
	DefendantName      string    `json:"defendantName"`
	CourtName          string    `json:"courtName"`
	ClaimAmount        *float64  `json:"claimAmount,omitempty"`
	LatestNote         string    `json:"latestNote,omitempty"`
	DaysInCurrentStage int       `json:"daysInCurrentStage"`
	Outcome            string    `json:"outcome"`
}

// BoardResponse groups case summaries by current stage.
type BoardResponse struct {
	Stages map[string][]CaseSummaryResponse `json:"stages"`
}

// StatisticsResponse is the aggregate pipeline statistics payload.
type StatisticsResponse struct {
	TotalCases       int                           `json:"totalCases"`
	ActiveCases      int                           `json:"activeCases"`
	WonCases         int                           `json:"wonCases"`
	LostCases        int                           `json:"lostCases"`
	SettledCases     int                           `json:"settledCases"`
	ByCategory       map[string]int                `json:"byCategory"`
	ByStage          map[string]map[string]int     `json:"byStage"`
	AvgDaysInStage   map[string]map[string]float64 `json:"avgDaysInStage"`
	TotalClaimAmount float64                       `json:"totalClaimAmount"`
	TotalWonAmount   float64                       `json:"totalWonAmount"`
	SuccessRate      float64                       `json:"successRate"`
}

// NoteResponse is one case note.
type NoteResponse struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Date      time.Time `json:"date"`
	CreatedBy uuid.UUID `json:"createdBy"`
	IsPrivate bool      `json:"isPrivate"`
	StageID   string    `json:"stageId,omitempty"`
}

// NotesListResponse is a page of case notes.
type NotesListResponse struct {
	Items      []NoteResponse     `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

// AuditEntryResponse is one audit trail record for a case.
type AuditEntryResponse struct {
	ID         uuid.UUID              `json:"id"`
	CaseID     uuid.UUID              `json:"caseId"`
	UserID     uuid.UUID              `json:"userId"`
	Action     string                 `json:"action"`
	Details    map[string]interface{} `json:"details"`
	OccurredAt time.Time              `json:"occurredAt"`
}
