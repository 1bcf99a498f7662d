package audit

import (
	"context"

	"github.com/mischa23v/traf3li-backend-sub004/internal/audit/repository"
	"github.com/mischa23v/traf3li-backend-sub004/internal/events"
	"github.com/mischa23v/traf3li-backend-sub004/platform/logger"
)

// Action names stored in the audit log.
const (
	ActionStageChanged = "stage_changed"
	ActionCaseEnded    = "case_ended"
	ActionNoteAdded    = "note_added"
)

// Recorder subscribes to case domain events and appends audit entries.
// Recording is best-effort: a failed insert is a logged warning, never an
// error surfaced to the command that produced the event.
type Recorder struct {
	repo repository.Repository
	log  *logger.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(repo repository.Repository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// RegisterHandlers subscribes the recorder to the case pipeline events.
func (r *Recorder) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.CaseStageChanged{}.EventName(), events.HandlerFunc(r.onStageChanged))
	bus.Subscribe(events.CaseEnded{}.EventName(), events.HandlerFunc(r.onCaseEnded))
	bus.Subscribe(events.CaseNoteAdded{}.EventName(), events.HandlerFunc(r.onNoteAdded))
}

func (r *Recorder) onStageChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CaseStageChanged)
	if !ok {
		return nil
	}

	details := map[string]interface{}{
		"oldStage": e.OldStage,
		"newStage": e.NewStage,
	}
	if e.Note != "" {
		details["note"] = e.Note
	}

	return r.record(ctx, repository.Entry{
		CaseID:     e.CaseID,
		UserID:     e.UserID,
		Action:     ActionStageChanged,
		Details:    details,
		OccurredAt: e.OccurredAt(),
	})
}

func (r *Recorder) onCaseEnded(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CaseEnded)
	if !ok {
		return nil
	}

	details := map[string]interface{}{
		"outcome": e.Outcome,
	}
	if e.EndReason != "" {
		details["endReason"] = e.EndReason
	}
	if e.FinalAmount != nil {
		details["finalAmount"] = *e.FinalAmount
	}

	return r.record(ctx, repository.Entry{
		CaseID:     e.CaseID,
		UserID:     e.UserID,
		Action:     ActionCaseEnded,
		Details:    details,
		OccurredAt: e.OccurredAt(),
	})
}

func (r *Recorder) onNoteAdded(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CaseNoteAdded)
	if !ok {
		return nil
	}

	return r.record(ctx, repository.Entry{
		CaseID:     e.CaseID,
		UserID:     e.UserID,
		Action:     ActionNoteAdded,
		Details:    map[string]interface{}{"noteId": e.NoteID.String()},
		OccurredAt: e.OccurredAt(),
	})
}

func (r *Recorder) record(ctx context.Context, entry repository.Entry) error {
	if err := r.repo.Insert(ctx, entry); err != nil {
		r.log.AuditDispatchFailed(entry.Action, entry.CaseID.String(), err)
		return err
	}
	return nil
}
