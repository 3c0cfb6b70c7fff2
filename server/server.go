// Package server exposes the upload/status/download HTTP surface over a
// job store and its background worker.
package server

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vanorg/vanorg/job"
)

//go:embed home.html
var homeHTML string

//go:embed jobpage.html
var jobPageHTML string

//go:embed wrapper.html
var wrapperHTML string

// Pusher is the slice of the background worker the server needs.
type Pusher interface {
	Push(jid string) error
}

type Server struct {
	cfg    Config
	logger *zap.SugaredLogger
	store  *job.Store
	worker Pusher
	mux    *chi.Mux
}

func New(store *job.Store, worker Pusher, config ...Config) *Server {
	cfg := configDefault(config...)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  store,
		worker: worker,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)
	r.Use(noStore)

	r.Get("/health", s.health)
	r.Head("/health", s.health)
	r.Head("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/", s.home)
	r.Post("/upload", s.upload)

	r.Route("/job/{jid}", func(r chi.Router) {
		r.Get("/", s.jobPage)
		r.Get("/status", s.jobStatus)
		r.Get("/organizer_raw", s.organizerRaw)
		r.Get("/organizer", s.organizerWrapper)
		r.Get("/download/{name}", s.download)
	})

	s.mux = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// noStore disables caching on every response. Mobile caches otherwise
// serve stale status JSON and stale artifacts.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorw("failed to write response", "error", err)
	}
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) home(w http.ResponseWriter, _ *http.Request) {
	writeHTML(w, http.StatusOK, homeHTML)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	f, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer f.Close()

	rec, err := s.store.Create()
	if err != nil {
		s.logger.Errorw("failed to create job", "error", err)
		http.Error(w, "failed to create job", http.StatusInternalServerError)
		return
	}

	dst, err := os.Create(filepath.Join(s.store.Dir(rec.JID), job.InputPDF))
	if err == nil {
		_, err = io.Copy(dst, f)
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		s.logger.Errorw("failed to save upload", "jid", rec.JID, "error", err)
		http.Error(w, "failed to save upload", http.StatusInternalServerError)
		return
	}

	if err := s.worker.Push(rec.JID); err != nil {
		s.logger.Errorw("failed to enqueue job", "jid", rec.JID, "error", err)
		http.Error(w, "failed to enqueue job", http.StatusServiceUnavailable)
		return
	}

	http.Redirect(w, r, "/job/"+rec.JID, http.StatusSeeOther)
}

// progressView returns the job's progress bag with a live pct merged
// in, so the polling page always has something to draw.
func (s *Server) progressView(rec *job.Record) map[string]interface{} {
	prog := map[string]interface{}{}
	for k, v := range rec.Progress {
		prog[k] = v
	}
	pct, text, err := s.store.Percent(rec.JID)
	if err != nil {
		return prog
	}
	prog["pct"] = pct
	if _, ok := prog["msg"]; !ok {
		prog["msg"] = text
	}
	return prog
}

func (s *Server) jobStatus(w http.ResponseWriter, r *http.Request) {
	jid := chi.URLParam(r, "jid")
	rec, err := s.store.Get(jid)
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"status": "missing"})
		return
	}

	dir := s.store.Dir(jid)
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(dir, name))
		return err == nil
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   rec.Status,
		"error":    rec.Error,
		"progress": s.progressView(rec),
		"has_pdf":  exists(job.OutputStacked),
		"has_xlsx": exists(job.OutputXLSX),
		"has_html": exists(job.OutputHTML),
		// stable URLs (client will cache-bust with ?v=)
		"organizer_url": fmt.Sprintf("/job/%s/organizer", jid),
		"pdf_url":       fmt.Sprintf("/job/%s/download/%s", jid, job.OutputStacked),
		"xlsx_url":      fmt.Sprintf("/job/%s/download/%s", jid, job.OutputXLSX),
		"ts":            time.Now().Unix(),
	})
}

func (s *Server) jobPage(w http.ResponseWriter, r *http.Request) {
	jid := chi.URLParam(r, "jid")
	rec, err := s.store.Get(jid)
	if err != nil {
		writeHTML(w, http.StatusNotFound, "<h3>Job not found</h3>")
		return
	}

	prog := s.progressView(rec)
	pct := 0
	if v, ok := prog["pct"].(int); ok {
		pct = v
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	pretty, err := json.MarshalIndent(prog, "", "  ")
	if err != nil {
		pretty = []byte("{}")
	}

	page := strings.NewReplacer(
		"__JID__", jid,
		"__STATUS__", rec.Status,
		"__PCT__", strconv.Itoa(pct),
		"__PROG__", string(pretty),
	).Replace(jobPageHTML)
	writeHTML(w, http.StatusOK, page)
}

func (s *Server) organizerRaw(w http.ResponseWriter, r *http.Request) {
	jid := chi.URLParam(r, "jid")
	raw, err := os.ReadFile(filepath.Join(s.store.Dir(jid), job.OutputHTML))
	if err != nil {
		writeHTML(w, http.StatusNotFound, "Organizer not ready yet.")
		return
	}
	writeHTML(w, http.StatusOK, string(raw))
}

func (s *Server) organizerWrapper(w http.ResponseWriter, r *http.Request) {
	jid := chi.URLParam(r, "jid")
	writeHTML(w, http.StatusOK, strings.ReplaceAll(wrapperHTML, "__JID__", jid))
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	jid := chi.URLParam(r, "jid")
	// Base strips any path tricks in the artifact name.
	name := filepath.Base(chi.URLParam(r, "name"))

	path := filepath.Join(s.store.Dir(jid), name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		writeHTML(w, http.StatusNotFound, "File not ready yet.")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}
