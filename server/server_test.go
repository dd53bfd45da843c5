package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/visionguard/visionguard/config"
	"github.com/visionguard/visionguard/metrics"
	"github.com/visionguard/visionguard/server"
	"github.com/visionguard/visionguard/store"
	"github.com/visionguard/visionguard/video"
)

type fixture struct {
	store  *store.Store
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.UploadDir = t.TempDir()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")
	cfg.MaxVideoSizeMB = 10

	st, err := store.Open(cfg.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv, err := server.New(cfg, st, metrics.New())
	require.NoError(t, err)

	return &fixture{store: st, router: srv.Router()}
}

// multipartBody builds a multipart request body with a single "file"
// field.
func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func postVideo(t *testing.T, f *fixture, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRootEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "VisionGuard", body["name"])
	require.Equal(t, "running", body["status"])
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "connected", body["database"])
}

func TestAnalyzeMissingFileField(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "ValidationError", decodeError(t, rec)["error"])
}

func TestAnalyzeUnsupportedFormat(t *testing.T) {
	f := newFixture(t)

	rec := postVideo(t, f, "notes.txt", []byte("just some text, definitely not video"))

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	require.Equal(t, "UnsupportedFormatError", decodeError(t, rec)["error"])
}

func TestAnalyzeTooLarge(t *testing.T) {
	f := newFixture(t)

	content := make([]byte, 11*1024*1024)
	copy(content[4:], []byte("ftypisom"))
	rec := postVideo(t, f, "huge.mp4", content)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "VideoTooLargeError", body["error"])
}

func TestAnalyzeCorruptVideo(t *testing.T) {
	f := newFixture(t)

	// A valid MP4 signature over garbage: passes validation, fails to
	// open as a video.
	content := make([]byte, 4096)
	copy(content[4:], []byte("ftypisom"))
	rec := postVideo(t, f, "broken.mp4", content)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "InvalidVideoError", decodeError(t, rec)["error"])
}

func TestAnalyzeGeneratedVideo(t *testing.T) {
	f := newFixture(t)

	path := filepath.Join(t.TempDir(), "motion.mp4")
	require.NoError(t, video.WriteMotion(path, video.DefaultGeneratorOptions()))
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	rec := postVideo(t, f, "motion.mp4", content)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis store.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	require.NotZero(t, analysis.ID)
	require.True(t, analysis.MotionDetected)
	require.Greater(t, analysis.FramesAnalyzed, 0)
	require.Equal(t, store.StatusCompleted, analysis.Status)

	stored, err := f.store.GetByID(analysis.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.True(t, stored.MotionDetected)
}

func TestListAndGetAnalyses(t *testing.T) {
	f := newFixture(t)

	var lastID int64
	for i := 0; i < 3; i++ {
		a, err := f.store.Create(fmt.Sprintf("clip-%d.mp4", i), i%2 == 0, 10+i, 0.5, store.StatusCompleted, nil)
		require.NoError(t, err)
		lastID = a.ID
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyses?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Total int              `json:"total"`
		Items []store.Analysis `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 3, list.Total)
	require.Len(t, list.Items, 2)

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/analyses/%d", lastID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/99999", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NotFound", decodeError(t, rec)["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "videos_processed_total")
}
