package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/docubrain/docubrain/application/service"
	"github.com/docubrain/docubrain/infrastructure/api/middleware"
	"github.com/docubrain/docubrain/infrastructure/api/v1/dto"
)

// RecordsRouter handles record API endpoints.
type RecordsRouter struct {
	records *service.Records
	logger  *slog.Logger
}

// NewRecordsRouter creates a new RecordsRouter.
func NewRecordsRouter(records *service.Records, logger *slog.Logger) *RecordsRouter {
	return &RecordsRouter{
		records: records,
		logger:  logger,
	}
}

// Routes returns the chi router for record endpoints.
func (r *RecordsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.List)
	router.Get("/{id}", r.Get)
	return router
}

// List handles GET /api/v1/records.
// Supports query parameters: institution_id, pending, page, page_size.
func (r *RecordsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	params := &service.RecordListParams{}
	if instStr := req.URL.Query().Get("institution_id"); instStr != "" {
		id, err := strconv.Atoi(instStr)
		if err != nil {
			middleware.WriteJSON(w, http.StatusBadRequest, middleware.DetailResponse{
				Detail: "invalid institution_id",
			})
			return
		}
		params.InstitutionID = &id
	}
	if pending := req.URL.Query().Get("pending"); pending == "true" {
		params.PendingOnly = true
	}

	pagination := ParsePagination(req)
	params.Limit = pagination.Limit()
	params.Offset = pagination.Offset()

	records, err := r.records.List(ctx, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	total, err := r.records.Count(ctx, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.RecordListResponse{
		Data: dto.FromRecords(records),
		Meta: pagination.Meta(total),
	})
}

// Get handles GET /api/v1/records/{id}.
func (r *RecordsRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	id := chi.URLParam(req, "id")

	rec, err := r.records.Get(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.FromRecord(rec))
}
