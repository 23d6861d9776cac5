package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docubrain/docubrain"
	"github.com/docubrain/docubrain/infrastructure/api"
	"github.com/docubrain/docubrain/infrastructure/objectstore"
)

func newTestClient(t *testing.T) *docubrain.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	client, err := docubrain.New(
		docubrain.WithDatabaseURL("sqlite:///:memory:"),
		docubrain.WithObjectStore(objectstore.NewMemoryStore()),
		docubrain.WithLogger(logger),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAPIServer_Health(t *testing.T) {
	handler := api.NewAPIServer(newTestClient(t)).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAPIServer_QueueEmpty(t *testing.T) {
	handler := api.NewAPIServer(newTestClient(t)).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Pending int64 `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Pending)
}

func TestAPIServer_UploadThenList(t *testing.T) {
	handler := api.NewAPIServer(newTestClient(t)).Handler()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", "scan.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-images/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("username", "alice")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var uploadResp struct {
		UploadedFiles []string `json:"uploaded_files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploadResp))
	assert.Equal(t, []string{"scan.jpg"}, uploadResp.UploadedFiles)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/records?pending=true", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Data []struct {
			ID          string `json:"id"`
			SubmittedBy string `json:"submitted_by"`
			Pending     bool   `json:"pending"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data, 1)
	assert.Equal(t, "alice", listResp.Data[0].SubmittedBy)
	assert.True(t, listResp.Data[0].Pending)
}

func TestAPIServer_RecordNotFound(t *testing.T) {
	handler := api.NewAPIServer(newTestClient(t)).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
