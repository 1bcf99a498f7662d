package service

import (
	"context"

	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/domain"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/transport"
	"github.com/mischa23v/traf3li-backend-sub004/internal/events"
	"github.com/mischa23v/traf3li-backend-sub004/platform/sanitize"

	"github.com/google/uuid"
)

// ListNotes returns a page of the case's notes. Private notes belonging to
// other users are filtered out before pagination, so page boundaries never
// leak their existence.
func (s *Service) ListNotes(ctx context.Context, caseID uuid.UUID, req transport.ListNotesRequest, caller Caller) (transport.NotesListResponse, error) {
	c, err := s.loadAccessible(ctx, caseID, caller)
	if err != nil {
		return transport.NotesListResponse{}, err
	}

	visible := c.VisibleNotes(caller.UserID)
	if req.Sort == "oldest" {
		reversed := make([]domain.Note, len(visible))
		for i, note := range visible {
			reversed[len(visible)-1-i] = note
		}
		visible = reversed
	}

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

	total := len(visible)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]transport.NoteResponse, 0, end-start)
	for _, note := range visible[start:end] {
		items = append(items, toNoteResponse(note))
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return transport.NotesListResponse{
		Items: items,
		Pagination: transport.PaginationResponse{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// AddNote appends a note to the case (stored newest-first).
func (s *Service) AddNote(ctx context.Context, caseID uuid.UUID, req transport.CreateNoteRequest, caller Caller) (transport.NoteResponse, error) {
	c, err := s.loadAccessible(ctx, caseID, caller)
	if err != nil {
		return transport.NoteResponse{}, err
	}

	note, err := c.AddNote(s.vocab, sanitize.Text(req.Text), req.IsPrivate, req.StageID, caller.UserID, s.now().UTC())
	if err != nil {
		return transport.NoteResponse{}, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return transport.NoteResponse{}, err
	}

	s.bus.Publish(ctx, events.CaseNoteAdded{
		BaseEvent: events.NewBaseEvent(),
		CaseID:    c.ID,
		NoteID:    note.ID,
		UserID:    caller.UserID,
	})

	return toNoteResponse(note), nil
}

// UpdateNote edits a note's text or privacy flag. Creator-only.
func (s *Service) UpdateNote(ctx context.Context, caseID, noteID uuid.UUID, req transport.UpdateNoteRequest, caller Caller) (transport.NoteResponse, error) {
	c, err := s.loadAccessible(ctx, caseID, caller)
	if err != nil {
		return transport.NoteResponse{}, err
	}

	note, err := c.UpdateNote(noteID, caller.UserID, sanitize.TextPtr(req.Text), req.IsPrivate, s.now().UTC())
	if err != nil {
		return transport.NoteResponse{}, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return transport.NoteResponse{}, err
	}

	return toNoteResponse(note), nil
}

// DeleteNote removes a note. Creator-only.
func (s *Service) DeleteNote(ctx context.Context, caseID, noteID uuid.UUID, caller Caller) error {
	c, err := s.loadAccessible(ctx, caseID, caller)
	if err != nil {
		return err
	}

	if err := c.DeleteNote(noteID, caller.UserID, s.now().UTC()); err != nil {
		return err
	}

	return s.repo.Update(ctx, c)
}

func toNoteResponse(note domain.Note) transport.NoteResponse {
	return transport.NoteResponse{
		ID:        note.ID,
		Text:      note.Text,
		Date:      note.Date,
		CreatedBy: note.CreatedBy,
		IsPrivate: note.IsPrivate,
		StageID:   note.StageID,
	}
}
