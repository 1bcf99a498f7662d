package service

import (
	"context"
	"testing"

	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/transport"
	"github.com/mischa23v/traf3li-backend-sub004/internal/events"
	"github.com/mischa23v/traf3li-backend-sub004/platform/apperr"

	"github.com/google/uuid"
)

func TestAddNotePersistsAndPublishes(t *testing.T) {
	c := seedCase("civil", "filing")
	repo := newFakeRepo(c)
	bus := &recordingBus{}
	svc := newTestService(repo, bus)

	note, err := svc.AddNote(context.Background(), c.ID,
		transport.CreateNoteRequest{Text: "client called"}, firmCaller())
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if note.Text != "client called" || note.CreatedBy != svcUser {
		t.Errorf("note = %+v", note)
	}
	if note.ID == uuid.Nil {
		t.Error("note must get an id")
	}

	published := bus.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	if _, ok := published[0].(events.CaseNoteAdded); !ok {
		t.Errorf("published %T, want CaseNoteAdded", published[0])
	}

	stored, _ := repo.GetByID(context.Background(), c.ID)
	if len(stored.Notes) != 1 {
		t.Errorf("stored notes = %d, want 1", len(stored.Notes))
	}
}

func TestListNotesHidesOthersPrivateNotes(t *testing.T) {
	c := seedCase("civil", "filing")
	repo := newFakeRepo(c)
	svc := newTestService(repo, &recordingBus{})
	ctx := context.Background()
	caller := firmCaller()

	if _, err := svc.AddNote(ctx, c.ID, transport.CreateNoteRequest{Text: "shared"}, caller); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if _, err := svc.AddNote(ctx, c.ID, transport.CreateNoteRequest{Text: "mine only", IsPrivate: true}, caller); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	// A colleague in the same firm sees only the shared note.
	firm := svcFirm
	colleague := Caller{UserID: svcOther, FirmID: &firm}
	page, err := svc.ListNotes(ctx, c.ID, transport.ListNotesRequest{}, colleague)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Text != "shared" {
		t.Errorf("colleague sees %+v, want only the shared note", page.Items)
	}
	if page.Pagination.Total != 1 {
		t.Errorf("total = %d, private note leaked into the count", page.Pagination.Total)
	}

	// The creator sees both, newest first.
	own, err := svc.ListNotes(ctx, c.ID, transport.ListNotesRequest{}, caller)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(own.Items) != 2 || own.Items[0].Text != "mine only" {
		t.Errorf("creator sees %+v, want both notes newest first", own.Items)
	}

	oldest, err := svc.ListNotes(ctx, c.ID, transport.ListNotesRequest{Sort: "oldest"}, caller)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if oldest.Items[0].Text != "shared" {
		t.Errorf("oldest sort starts with %q, want shared", oldest.Items[0].Text)
	}
}

func TestUpdateNoteCreatorOnly(t *testing.T) {
	c := seedCase("civil", "filing")
	repo := newFakeRepo(c)
	svc := newTestService(repo, &recordingBus{})
	ctx := context.Background()
	caller := firmCaller()

	note, err := svc.AddNote(ctx, c.ID, transport.CreateNoteRequest{Text: "draft"}, caller)
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	firm := svcFirm
	colleague := Caller{UserID: svcOther, FirmID: &firm}
	text := "rewritten"
	if _, err := svc.UpdateNote(ctx, c.ID, note.ID, transport.UpdateNoteRequest{Text: &text}, colleague); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("colleague edit: expected forbidden, got %v", err)
	}
	if err := svc.DeleteNote(ctx, c.ID, note.ID, colleague); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("colleague delete: expected forbidden, got %v", err)
	}

	updated, err := svc.UpdateNote(ctx, c.ID, note.ID, transport.UpdateNoteRequest{Text: &text}, caller)
	if err != nil {
		t.Fatalf("creator edit failed: %v", err)
	}
	if updated.Text != "rewritten" {
		t.Errorf("text = %q, want rewritten", updated.Text)
	}

	if err := svc.DeleteNote(ctx, c.ID, note.ID, caller); err != nil {
		t.Fatalf("creator delete failed: %v", err)
	}
	stored, _ := repo.GetByID(ctx, c.ID)
	if len(stored.Notes) != 0 {
		t.Errorf("stored notes = %d after delete, want 0", len(stored.Notes))
	}
}

func TestNoteOperationsOnUnknownNote(t *testing.T) {
	c := seedCase("civil", "filing")
	repo := newFakeRepo(c)
	svc := newTestService(repo, &recordingBus{})

	if err := svc.DeleteNote(context.Background(), c.ID, uuid.New(), firmCaller()); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestNotesStillEditableAfterCaseEnds(t *testing.T) {
	c := seedCase("civil", "filing")
	repo := newFakeRepo(c)
	svc := newTestService(repo, &recordingBus{})
	ctx := context.Background()
	caller := firmCaller()

	if _, err := svc.EndCase(ctx, c.ID, transport.EndCaseRequest{Outcome: "lost"}, caller); err != nil {
		t.Fatalf("EndCase failed: %v", err)
	}
	// The terminal lock freezes stage and outcome, not the note history.
	if _, err := svc.AddNote(ctx, c.ID, transport.CreateNoteRequest{Text: "post-mortem"}, caller); err != nil {
		t.Errorf("note on ended case should be allowed: %v", err)
	}
}
