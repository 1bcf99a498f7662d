package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mischa23v/traf3li-backend-sub004/internal/audit/repository"
	casesvc "github.com/mischa23v/traf3li-backend-sub004/internal/cases/service"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/transport"
	"github.com/mischa23v/traf3li-backend-sub004/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidCaseID = "invalid case id"

	defaultLimit = 50
	maxLimit     = 200
)

// CaseAccessChecker gates audit reads on the caller's access to the case.
type CaseAccessChecker interface {
	CheckAccess(ctx context.Context, caseID uuid.UUID, caller casesvc.Caller) error
}

// Handler serves the case audit trail.
type Handler struct {
	repo   repository.Repository
	access CaseAccessChecker
}

// New creates a new audit handler.
func New(repo repository.Repository, access CaseAccessChecker) *Handler {
	return &Handler{repo: repo, access: access}
}

// RegisterRoutes registers the audit routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/audit", h.ListForCase)
}

// ListForCase handles GET /api/cases/:id/audit
func (h *Handler) ListForCase(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCaseID, nil)
		return
	}

	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	caller := casesvc.Caller{UserID: id.UserID(), FirmID: id.FirmID()}

	if err := h.access.CheckAccess(c.Request.Context(), caseID, caller); httpkit.HandleError(c, err) {
		return
	}

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	entries, err := h.repo.ListForCase(c.Request.Context(), caseID, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.AuditEntryResponse, len(entries))
	for i, entry := range entries {
		items[i] = transport.AuditEntryResponse{
			ID:         entry.ID,
			CaseID:     entry.CaseID,
			UserID:     entry.UserID,
			Action:     entry.Action,
			Details:    entry.Details,
			OccurredAt: entry.OccurredAt,
		}
	}

	httpkit.OK(c, gin.H{"items": items})
}
