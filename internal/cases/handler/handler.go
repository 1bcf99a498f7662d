package handler

import (
	"net/http"

	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/service"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/transport"
	"github.com/mischa23v/traf3li-backend-sub004/platform/httpkit"
	"github.com/mischa23v/traf3li-backend-sub004/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidCaseID    = "invalid case id"
)

// Handler handles HTTP requests for the case pipeline
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new pipeline handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the pipeline routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pipeline", h.ListPipeline)
	rg.GET("/pipeline/board", h.Board)
	rg.GET("/pipeline/statistics", h.Statistics)
	rg.GET("/pipeline/stages", h.GetValidStages)
	rg.PATCH("/:id/stage", h.MoveToStage)
	rg.POST("/:id/end", h.EndCase)
	rg.GET("/:id/notes", h.ListNotes)
	rg.POST("/:id/notes", h.AddNote)
	rg.PATCH("/:id/notes/:noteId", h.UpdateNote)
	rg.DELETE("/:id/notes/:noteId", h.DeleteNote)
}

// caller resolves the authenticated identity into the service-level caller.
// Returns ok=false when the request is not authenticated (already aborted).
func mustCaller(c *gin.Context) (service.Caller, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return service.Caller{}, false
	}
	return service.Caller{UserID: id.UserID(), FirmID: id.FirmID()}, true
}

func caseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCaseID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// MoveToStage handles PATCH /api/cases/:id/stage
func (h *Handler) MoveToStage(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}

	var req transport.MoveStageRequest
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

	result, err := h.svc.MoveToStage(c.Request.Context(), id, req, caller)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// EndCase handles POST /api/cases/:id/end
func (h *Handler) EndCase(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}

	var req transport.EndCaseRequest
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

	result, err := h.svc.EndCase(c.Request.Context(), id, req, caller)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ListPipeline handles GET /api/cases/pipeline
func (h *Handler) ListPipeline(c *gin.Context) {
	var req transport.ListPipelineRequest
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

	result, err := h.svc.ListPipeline(c.Request.Context(), req, caller)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Board handles GET /api/cases/pipeline/board
func (h *Handler) Board(c *gin.Context) {
	var req transport.BoardRequest
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

	result, err := h.svc.Board(c.Request.Context(), req, caller)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Statistics handles GET /api/cases/pipeline/statistics
func (h *Handler) Statistics(c *gin.Context) {
	var req transport.StatisticsRequest
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

	result, err := h.svc.Statistics(c.Request.Context(), req, caller)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetValidStages handles GET /api/cases/pipeline/stages.
// The lookup needs no tenant data, only authentication.
func (h *Handler) GetValidStages(c *gin.Context) {
	if _, ok := mustCaller(c); !ok {
		return
	}

	httpkit.OK(c, h.svc.GetValidStages(c.Query("category")))
}
