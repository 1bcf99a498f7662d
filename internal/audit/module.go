// Package audit provides the case audit trail: an event-bus subscriber
// that appends to the append-only audit log, and the read endpoint.
package audit

import (
	"github.com/mischa23v/traf3li-backend-sub004/internal/audit/handler"
	"github.com/mischa23v/traf3li-backend-sub004/internal/audit/repository"
	"github.com/mischa23v/traf3li-backend-sub004/internal/events"
	apphttp "github.com/mischa23v/traf3li-backend-sub004/internal/http"
	"github.com/mischa23v/traf3li-backend-sub004/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the audit bounded context module implementing http.Module.
type Module struct {
	recorder *Recorder
	handler  *handler.Handler
	repo     repository.Repository
}

// NewModule creates the audit module. The access checker gates the read
// endpoint on the caller's access to the underlying case.
func NewModule(pool *pgxpool.Pool, access handler.CaseAccessChecker, log *logger.Logger) *Module {
	repo := repository.New(pool)

	return &Module{
		recorder: NewRecorder(repo, log),
		handler:  handler.New(repo, access),
		repo:     repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// RegisterHandlers subscribes the recorder to the case pipeline events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	m.recorder.RegisterHandlers(bus)
}

// RegisterRoutes mounts the audit read endpoint on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/cases"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
