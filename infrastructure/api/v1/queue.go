package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docubrain/docubrain/application/service"
	"github.com/docubrain/docubrain/infrastructure/api/middleware"
	"github.com/docubrain/docubrain/infrastructure/api/v1/dto"
)

// QueueRouter exposes the task queue depth.
type QueueRouter struct {
	queue  *service.Queue
	logger *slog.Logger
}

// NewQueueRouter creates a new QueueRouter.
func NewQueueRouter(queue *service.Queue, logger *slog.Logger) *QueueRouter {
	return &QueueRouter{
		queue:  queue,
		logger: logger,
	}
}

// Routes returns the chi router for queue endpoints.
func (r *QueueRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.Depth)
	return router
}

// Depth handles GET /api/v1/queue.
func (r *QueueRouter) Depth(w http.ResponseWriter, req *http.Request) {
	pending, err := r.queue.Count(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.QueueResponse{Pending: pending})
}
