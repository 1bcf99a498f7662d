// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/mischa23v/traf3li-backend-sub004/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Case Pipeline Domain Events
// =============================================================================

// CaseStageChanged is published after a case stage transition is persisted.
// Dispatch is best-effort: subscribers (the audit trail) must not be able
// to fail the transition.
type CaseStageChanged struct {
	BaseEvent
	CaseID   uuid.UUID `json:"caseId"`
	UserID   uuid.UUID `json:"userId"`
	OldStage string    `json:"oldStage"`
	NewStage string    `json:"newStage"`
	Note     string    `json:"note,omitempty"`
}

func (e CaseStageChanged) EventName() string { return "cases.stage.changed" }

// CaseEnded is published after a case is ended and persisted.
type CaseEnded struct {
	BaseEvent
	CaseID      uuid.UUID `json:"caseId"`
	UserID      uuid.UUID `json:"userId"`
	Outcome     string    `json:"outcome"`
	EndReason   string    `json:"endReason,omitempty"`
	FinalAmount *float64  `json:"finalAmount,omitempty"`
}

func (e CaseEnded) EventName() string { return "cases.case.ended" }

// CaseNoteAdded is published after a note is added to a case.
type CaseNoteAdded struct {
	BaseEvent
	CaseID uuid.UUID `json:"caseId"`
	NoteID uuid.UUID `json:"noteId"`
	UserID uuid.UUID `json:"userId"`
}

func (e CaseNoteAdded) EventName() string { return "cases.note.added" }
