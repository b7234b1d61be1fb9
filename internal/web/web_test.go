package web

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtechcal/internal/config"
)

const sampleText = "Study schedule Autumn semester 2025-09-01 — 2026-01-25\n" +
	"Monday 2025-09-01\n" +
	"1 08:30-10:05 0 Algorithms (ALG) P101 Dr. Jonas Petrauskas Lectures\n"

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	return cfg
}

func TestHealth(t *testing.T) {
	srv := NewServer(testConfig())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestConvertPlainText(t *testing.T) {
	srv := NewServer(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(sampleText))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="schedule.ics"`)
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, rec.Body.String(), "SUMMARY:Lecture: Algorithms")
}

func TestConvertMultipartUpload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "timetable.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(sampleText))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	srv := NewServer(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="timetable_schedule.ics"`)
	assert.Contains(t, rec.Body.String(), "BEGIN:VEVENT")
}

func TestConvertNoEventsIsUnprocessable(t *testing.T) {
	srv := NewServer(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("not a timetable"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "no schedule events")
}

func TestConvertEmptyBody(t *testing.T) {
	srv := NewServer(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("   \n "))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertRejectsGet(t *testing.T) {
	srv := NewServer(testConfig())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/convert", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestConvertUploadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 16

	srv := NewServer(cfg)
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(sampleText))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestBasicAuth(t *testing.T) {
	cfg := testConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "user", Password: "pass"}
	srv := NewServer(cfg)

	t.Run("health stays open", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("convert requires credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(sampleText))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid credentials pass", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(sampleText))
		req.SetBasicAuth("user", "pass")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
