package handler

import (
	"net/http"

	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/transport"
	"github.com/mischa23v/traf3li-backend-sub004/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidNoteID = "invalid note id"

func noteID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidNoteID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// ListNotes handles GET /api/cases/:id/notes
func (h *Handler) ListNotes(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}

	var req transport.ListNotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	result, err := h.svc.ListNotes(c.Request.Context(), id, req, caller)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// AddNote handles POST /api/cases/:id/notes
func (h *Handler) AddNote(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}

	var req transport.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	result, err := h.svc.AddNote(c.Request.Context(), id, req, caller)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, result)
}

// UpdateNote handles PATCH /api/cases/:id/notes/:noteId
func (h *Handler) UpdateNote(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}
	nid, ok := noteID(c)
	if !ok {
		return
	}

	var req transport.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	result, err := h.svc.UpdateNote(c.Request.Context(), id, nid, req, caller)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// DeleteNote handles DELETE /api/cases/:id/notes/:noteId
func (h *Handler) DeleteNote(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}
	nid, ok := noteID(c)
	if !ok {
		return
	}

	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteNote(c.Request.Context(), id, nid, caller); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "deleted"})
}
