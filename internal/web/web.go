package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"vtechcal/internal/config"
	"vtechcal/internal/convert"
	appLog "vtechcal/internal/log"
	"vtechcal/internal/schedule"
)

// Server exposes the converter over HTTP: /health plus POST /api/convert.
// Uploads carry already-extracted timetable text; document decoding happens
// upstream of this service.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="vtechcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/convert", s.handleConvert)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleConvert accepts extracted timetable text — either as a raw request
// body or as a multipart "file" field — and responds with the generated ICS
// document as an attachment.
//
// A document that yields zero schedule records is a 422; transport-level
// problems (missing body, oversized upload) are 4xx before conversion runs.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	text, name, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		appLog.Error("convert upload read failed", err)
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "empty document text")
		return
	}

	ics, err := convert.Convert(text, s.cfg)
	if err != nil {
		if errors.Is(err, schedule.ErrNoEvents) {
			writeError(w, http.StatusUnprocessableEntity, "no schedule events found in document")
			return
		}
		appLog.Error("conversion failed", err)
		writeError(w, http.StatusInternalServerError, "conversion failed")
		return
	}

	appLog.Info("conversion served", "bytes_in", len(text), "bytes_out", len(ics))

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+outputName(name)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics))
}

// readUpload returns the document text and, for multipart uploads, the
// client's file name.
func readUpload(r *http.Request) (text, name string, err error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", "", err
		}
		defer file.Close()

		body, err := io.ReadAll(file)
		if err != nil {
			return "", "", err
		}
		return string(body), header.Filename, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", "", err
	}
	return string(body), "", nil
}

// outputName derives the download file name from the uploaded one,
// mirroring the CLI's "<input>_schedule.ics" convention.
func outputName(uploaded string) string {
	if uploaded == "" {
		return "schedule.ics"
	}
	base := filepath.Base(uploaded)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "schedule.ics"
	}
	return base + "_schedule.ics"
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errResp{Error: msg}); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}
