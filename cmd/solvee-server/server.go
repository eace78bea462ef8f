package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/njchilds90/solvee"
	"github.com/njchilds90/solvee/collector"
	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
	"github.com/njchilds90/solvee/internal/config"
	"github.com/njchilds90/solvee/operation"
	"github.com/njchilds90/solvee/strategy"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var (
	errSessionNotFound = errors.New("session not found")
	errTooManySessions = errors.New("too many sessions")
)

type entry struct {
	session *solvee.Session
	touched time.Time
}

// server keeps sessions in memory, addressed by random UUIDs.
type server struct {
	cfg   *config.Config
	log   logrus.FieldLogger
	rules []collector.Rule
	now   func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

func newServer(cfg *config.Config, log logrus.FieldLogger, rules []collector.Rule) *server {
	return &server{
		cfg:      cfg,
		log:      log,
		rules:    rules,
		now:      time.Now,
		sessions: map[uuid.UUID]*entry{},
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleCreate)
	mux.HandleFunc("GET /sessions/{id}", s.handleGet)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDelete)
	mux.HandleFunc("POST /sessions/{id}/apply", s.handleApply)
	mux.HandleFunc("POST /sessions/{id}/select", s.handleSelect)
	mux.HandleFunc("POST /sessions/{id}/expand", s.handleExpand)
	mux.HandleFunc("GET /operations", s.handleOperations)
	mux.HandleFunc("GET /strategies", s.handleStrategies)
	mux.HandleFunc("POST /tool", s.handleTool)
	mux.HandleFunc("GET /schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, solvee.ToolSpec())
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		n := len(s.sessions)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"sessions": n,
			"time":     s.now().UTC().Format(time.RFC3339),
		})
	})
	return s.recoverer(mux)
}

func (s *server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.WithFields(logrus.Fields{"path": r.URL.Path, "panic": rec}).Errorf("panic in handler\n%s", debug.Stack())
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ============================================================
// Session registry
// ============================================================

func (s *server) add(sess *solvee.Session) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	if len(s.sessions) >= s.cfg.Server.MaxSessions {
		return uuid.Nil, errTooManySessions
	}
	id := uuid.New()
	s.sessions[id] = &entry{session: sess, touched: s.now()}
	return id, nil
}

func (s *server) lookup(r *http.Request) (uuid.UUID, *solvee.Session, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, nil, errSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return uuid.Nil, nil, errSessionNotFound
	}
	e.touched = s.now()
	return id, e.session, nil
}

// evictLocked drops sessions idle for longer than the configured TTL.
func (s *server) evictLocked() {
	ttl := s.cfg.Server.SessionTTL
	if ttl <= 0 {
		return
	}
	for id, e := range s.sessions {
		if s.now().Sub(e.touched) > ttl {
			delete(s.sessions, id)
			s.log.WithField("session", id).Debug("session expired")
		}
	}
}

// ============================================================
// Handlers
// ============================================================

type createRequest struct {
	Equation   string   `json:"equation"`
	Variable   string   `json:"variable,omitempty"`
	Operations []string `json:"operations,omitempty"`
	Expected   string   `json:"expected,omitempty"`
	Pace       string   `json:"pace,omitempty"`
}

type sessionResponse struct {
	ID       uuid.UUID     `json:"id"`
	Branches []equation.ID `json:"branches,omitempty"`
	Snapshot solvee.View   `json:"snapshot"`
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	pace := s.cfg.Pace
	if req.Pace != "" {
		d, err := time.ParseDuration(req.Pace)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("pace: %w", err))
			return
		}
		pace = d
	}
	ops := req.Operations
	if len(ops) == 0 {
		ops = s.cfg.Operations
	}
	opts := []solvee.Option{
		solvee.WithLogger(s.log),
		solvee.WithPace(pace),
		solvee.WithOperations(ops...),
		solvee.WithRules(s.rules),
	}
	if req.Expected != "" {
		opts = append(opts, solvee.WithExpected(req.Expected))
	}
	sess, err := solvee.New(opts...)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := setEquation(sess, req); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	id, err := s.add(sess)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.log.WithFields(logrus.Fields{"session": id, "equation": req.Equation}).Info("session created")
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Snapshot: sess.Snapshot()})
}

func setEquation(sess *solvee.Session, req createRequest) error {
	if req.Variable == "" {
		return sess.SetEquationText(req.Equation)
	}
	left, right, err := expr.ParseEquation(req.Equation)
	if err != nil {
		return err
	}
	return sess.SetEquation(req.Variable, left, right)
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.lookup(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, sess.Render())
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: sess.Snapshot()})
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, _, err := s.lookup(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type applyRequest struct {
	Operation string `json:"operation"`
	Argument  string `json:"argument,omitempty"`
}

func (s *server) handleApply(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.lookup(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	var req applyRequest
	if !decode(w, r, &req) {
		return
	}
	ids, err := sess.Apply(req.Operation, req.Argument)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Branches: ids, Snapshot: sess.Snapshot()})
}

type selectRequest struct {
	Node equation.ID `json:"node"`
}

func (s *server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.lookup(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	var req selectRequest
	if !decode(w, r, &req) {
		return
	}
	if err := sess.Select(req.Node); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: sess.Snapshot()})
}

type expandRequest struct {
	Strategy string `json:"strategy,omitempty"`
}

func (s *server) handleExpand(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.lookup(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	var req expandRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Strategy == "" {
		req.Strategy = s.cfg.Strategy
	}
	ctx := r.Context()
	if t := s.cfg.Server.WriteTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	if err := sess.Expand(ctx, req.Strategy); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: sess.Snapshot()})
}

func (s *server) handleOperations(w http.ResponseWriter, r *http.Request) {
	kinds := operation.All()
	if preset := r.URL.Query().Get("preset"); preset != "" {
		var err error
		if kinds, err = operation.Preset(preset); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"operations": solvee.DescribeOperations(kinds),
		"presets":    operation.Presets(),
	})
}

func (s *server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	type info struct {
		Name  string `json:"name"`
		Title string `json:"title"`
		Help  string `json:"help"`
	}
	var out []info
	for _, st := range strategy.All() {
		out = append(out, info{st.Name, st.Title, st.Help})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"strategies": out})
}

func (s *server) handleTool(w http.ResponseWriter, r *http.Request) {
	var req solvee.ToolRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, solvee.HandleToolCall(r.Context(), req))
}

// ============================================================
// JSON helpers
// ============================================================

// decode reads one JSON object. An empty body decodes to the zero value.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON: trailing data"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errSessionNotFound), errors.Is(err, operation.ErrUnknownEquation):
		return http.StatusNotFound
	case errors.Is(err, solvee.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, errTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, solvee.ErrOperationDisabled):
		return http.StatusForbidden
	case errors.Is(err, operation.ErrErrorLeaf):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
