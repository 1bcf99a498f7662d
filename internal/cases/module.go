// Package cases provides the case pipeline bounded context: stage
// transitions, case ending, kanban/list/statistics queries and notes.
package cases

import (
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/domain"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/handler"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/repository"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases/service"
	apphttp "github.com/mischa23v/traf3li-backend-sub004/internal/http"
	"github.com/mischa23v/traf3li-backend-sub004/platform/cache"
	"github.com/mischa23v/traf3li-backend-sub004/platform/events"
	"github.com/mischa23v/traf3li-backend-sub004/platform/logger"
	"github.com/mischa23v/traf3li-backend-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the case pipeline bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates the cases module with all dependencies wired.
// statsCache may be nil; statistics are then recomputed on every request.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, statsCache *cache.Cache, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, domain.DefaultVocabulary(), statsCache, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "cases"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/cases"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
