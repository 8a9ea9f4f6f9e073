// Package server is the fmvd HTTP surface: it accepts feature model
// uploads, runs rule generation and minimal working product enumeration,
// and validates client selections against the latest upload.
package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vanderheijden86/fmv/pkg/analysis"
	"github.com/vanderheijden86/fmv/pkg/fmxml"
	"github.com/vanderheijden86/fmv/pkg/logic"
	"github.com/vanderheijden86/fmv/pkg/model"
)

// maxUploadBytes bounds the multipart body; feature model XML files are
// small, anything larger is a mistake.
const maxUploadBytes = 8 << 20

// Server holds the latest analyzed session and its sqlite history.
type Server struct {
	store  *Store
	logger *log.Logger

	mu       sync.RWMutex
	session  *model.Session
	analyzer *logic.Analyzer
	index    *model.Index
}

// New creates a Server backed by the given store. A nil logger falls
// back to the standard logger.
func New(store *Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{store: store, logger: logger}
}

// Handler builds the chi router for the service.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/upload", s.handleUpload)
	r.Post("/validate", s.handleValidate)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/sessions", s.handleSessions)
	r.Get("/sessions/{id}", s.handleSessionPayload)
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleUpload accepts a multipart form with one "file" field holding
// feature model XML. A successful upload replaces the active session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xml") {
		writeError(w, http.StatusBadRequest, "only XML files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	session, analyzer, idx, err := s.analyze(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.session = session
	s.analyzer = analyzer
	s.index = idx
	s.mu.Unlock()

	rec := SessionRecord{
		ID:           session.ID,
		Filename:     header.Filename,
		FeatureCount: idx.Len(),
		RuleCount:    len(session.LogicRules),
		MWPCount:     len(session.MWPs),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.SaveSession(rec, session); err != nil {
		// History is best effort; the upload itself succeeded.
		s.logger.Printf("save session %s: %v", session.ID, err)
	}

	s.logger.Printf("session %s: %d features, %d rules, %d mwps",
		session.ID, rec.FeatureCount, rec.RuleCount, rec.MWPCount)
	writeJSON(w, http.StatusOK, session)
}

// analyze parses the XML and runs the full rule pipeline.
func (s *Server) analyze(filename string, data []byte) (*model.Session, *logic.Analyzer, *model.Index, error) {
	root, constraints, err := fmxml.Parse(data)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	idx := model.NewIndex([]*model.FeatureNode{root})
	analyzer := logic.NewAnalyzer(idx, constraints)

	session := &model.Session{
		ID:          uuid.NewString(),
		Features:    []*model.FeatureNode{root},
		LogicRules:  analyzer.Rules(),
		MWPs:        analyzer.MWPs(),
		Constraints: constraints,
	}
	return session, analyzer, idx, nil
}

type validateRequest struct {
	SelectedFeatures []string `json:"selectedFeatures"`
}

// handleValidate checks a selection against the active session's rules.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.RLock()
	analyzer := s.analyzer
	s.mu.RUnlock()

	if analyzer == nil {
		writeError(w, http.StatusBadRequest, "no feature model uploaded")
		return
	}

	result := analyzer.ValidateSelection(req.SelectedFeatures)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSessions lists upload history from the store.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListSessions(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if recs == nil {
		recs = []SessionRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleSessionPayload returns the stored JSON for one session.
func (s *Server) handleSessionPayload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	payload, err := s.store.SessionPayload(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// Insights computes structural metrics for the active session. Exposed
// for the robot CLI path rather than HTTP.
func (s *Server) Insights() (analysis.Insights, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return analysis.Insights{}, errors.New("no feature model uploaded")
	}
	return analysis.Compute(s.index, s.analyzer.Requires()), nil
}
