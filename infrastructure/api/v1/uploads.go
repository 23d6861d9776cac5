package v1

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/docubrain/docubrain/application/service"
	"github.com/docubrain/docubrain/infrastructure/api/middleware"
	"github.com/docubrain/docubrain/infrastructure/api/v1/dto"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

// UploadsRouter handles image upload endpoints.
type UploadsRouter struct {
	ingest             *service.Ingest
	defaultInstitution int
	logger             *slog.Logger
}

// NewUploadsRouter creates a new UploadsRouter.
func NewUploadsRouter(ingest *service.Ingest, defaultInstitution int, logger *slog.Logger) *UploadsRouter {
	return &UploadsRouter{
		ingest:             ingest,
		defaultInstitution: defaultInstitution,
		logger:             logger,
	}
}

// Routes returns the chi router for upload endpoints.
func (r *UploadsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", r.Upload)
	return router
}

// Upload handles POST /upload-images/. It accepts one or more files under
// the "files" multipart field; parts declaring the zip content type are
// expanded server-side. The uploader and institution come from the
// username and hospital headers. The response lists the storage keys
// written.
func (r *UploadsRouter) Upload(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	if err := req.ParseMultipartForm(maxUploadMemory); err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.DetailResponse{
			Detail: fmt.Sprintf("invalid multipart request: %v", err),
		})
		return
	}

	files := req.MultipartForm.File["files"]
	if len(files) == 0 {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.DetailResponse{
			Detail: "no files provided",
		})
		return
	}

	submittedBy := req.Header.Get("username")
	institutionID := r.defaultInstitution
	if hospital := req.Header.Get("hospital"); hospital != "" {
		id, err := strconv.Atoi(hospital)
		if err != nil {
			middleware.WriteJSON(w, http.StatusBadRequest, middleware.DetailResponse{
				Detail: fmt.Sprintf("invalid hospital header %q", hospital),
			})
			return
		}
		institutionID = id
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, header := range files {
		data, err := readMultipartFile(header)
		if err != nil {
			middleware.WriteJSON(w, http.StatusInternalServerError, middleware.DetailResponse{
				Detail: fmt.Sprintf("failed to upload %s: %v", header.Filename, err),
			})
			return
		}
		uploads = append(uploads, service.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	stored, err := r.ingest.Accept(ctx, institutionID, submittedBy, uploads)
	if err != nil {
		middleware.WriteJSON(w, http.StatusInternalServerError, middleware.DetailResponse{
			Detail: err.Error(),
		})
		return
	}

	keys := make([]string, len(stored))
	for i, f := range stored {
		keys[i] = f.StorageKey
	}
	middleware.WriteJSON(w, http.StatusOK, dto.UploadResponse{UploadedFiles: keys})
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
