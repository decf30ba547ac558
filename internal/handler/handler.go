package handler // handler contains the HTTP handlers of the production planner API

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/budget"
	"github.com/iliyamo/production-planner/internal/callsheet"
	"github.com/iliyamo/production-planner/internal/logging"
	"github.com/iliyamo/production-planner/internal/middleware"
	"github.com/iliyamo/production-planner/internal/queue"
	"github.com/iliyamo/production-planner/internal/repository"
	"github.com/iliyamo/production-planner/internal/schedule"
)

// publishTimeout bounds how long a handler waits on the broker.
const publishTimeout = 3 * time.Second

// ProductionHandler bundles the synchronizers behind the API.
type ProductionHandler struct {
	Schedule   *schedule.Synchronizer
	Conflicts  *schedule.Detector
	Linker     *budget.Linker
	Generator  *budget.Generator
	CallSheets *callsheet.Aggregator
	Events     queue.Publisher
	log        *zap.Logger
}

// NewProductionHandler wires every synchronizer to store.  It panics on a
// nil store; a nil publisher disables sync events.
func NewProductionHandler(store repository.Store, events queue.Publisher, logger *zap.Logger) *ProductionHandler {
	if store == nil {
		panic("nil store passed to NewProductionHandler")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &ProductionHandler{
		Schedule:   schedule.NewSynchronizer(store, logger),
		Conflicts:  schedule.NewDetector(store, logger),
		Linker:     budget.NewLinker(store, logger),
		Generator:  budget.NewGenerator(store, logger),
		CallSheets: callsheet.NewAggregator(store, logger),
		Events:     events,
		log:        logging.WithComponent(logger, "http"),
	}
}

// fail maps domain errors onto HTTP responses.  what names the primary
// subject for 404 messages.
func (h *ProductionHandler) fail(c echo.Context, err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
	case errors.Is(err, budget.ErrUnknownResource), errors.Is(err, repository.ErrInvalidField):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	h.log.Error("request failed", zap.String("path", c.Request().URL.Path), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// publish emits a sync.completed event.  Failures are logged only; the
// sync has already been committed.
func (h *ProductionHandler) publish(c echo.Context, operation, subject, id string, counts map[string]int) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), publishTimeout)
	defer cancel()
	ev := queue.NewSyncCompletedEvent(operation, subject, id, middleware.UserID(c), counts)
	if err := h.Events.PublishSyncCompleted(ctx, ev); err != nil {
		h.log.Warn("sync event not published", zap.String("operation", operation), zap.Error(err))
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
