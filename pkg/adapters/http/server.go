// Package http exposes mathview sessions over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/mathview"
	"github.com/aretw0/mathview/internal/logging"
	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/sanitize"
	"github.com/aretw0/mathview/pkg/session"
)

// ControllerFactory builds the controller of a new session. The controller
// must typeset and speak through display so the API can report it.
type ControllerFactory func(ctx context.Context, sessionID string, display *memory.Display) (*mathview.Controller, error)

// Server serves the session API.
type Server struct {
	sessions *session.Manager
	Streams  *StreamManager

	mu       sync.Mutex
	displays map[string]*memory.Display
	rules    []domain.RuleFileLoaded

	factory     ControllerFactory
	gatherer    prometheus.Gatherer
	sessionOpts []session.Option
	logger      *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves gatherer at /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithSessionOptions configures the underlying session manager (e.g. a distributed locker).
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *Server) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// NewServer creates a Server. Sessions are created on first write.
func NewServer(factory ControllerFactory, opts ...Option) *Server {
	s := &Server{
		Streams:  NewStreamManager(),
		displays: make(map[string]*memory.Display),
		factory:  factory,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	s.sessions = session.NewManager(s.newController, append([]session.Option{session.WithLogger(s.logger)}, s.sessionOpts...)...)
	return s
}

// NewHandler creates the HTTP handler for the session API.
func NewHandler(factory ControllerFactory, opts ...Option) http.Handler {
	return NewServer(factory, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/events", s.SubscribeEvents)
			r.Post("/input", s.SubmitInput)
			r.Put("/preferences/{key}", s.SetPreference)
			r.Post("/keys", s.PressKey)
			r.Post("/rules", s.LoadRules)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) newController(ctx context.Context, sessionID string) (*mathview.Controller, error) {
	display := memory.NewDisplay()
	c, err := s.factory(ctx, sessionID, display)
	if err != nil {
		return nil, err
	}
	c.Start(ctx)

	s.mu.Lock()
	s.displays[sessionID] = display
	rules := append([]domain.RuleFileLoaded(nil), s.rules...)
	s.mu.Unlock()

	for _, ev := range rules {
		if err := s.applyRuleFile(ctx, c, ev); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadRuleFile applies a rule file to every open session and to every session
// created afterwards.
func (s *Server) LoadRuleFile(ctx context.Context, ev domain.RuleFileLoaded) error {
	s.mu.Lock()
	s.rules = append(s.rules, ev)
	s.mu.Unlock()

	for _, id := range s.sessions.List() {
		err := s.sessions.View(ctx, id, func(ctx context.Context, c *mathview.Controller) error {
			return s.applyRuleFile(ctx, c, ev)
		})
		if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			return err
		}
	}
	return nil
}

func (s *Server) applyRuleFile(ctx context.Context, c *mathview.Controller, ev domain.RuleFileLoaded) error {
	res, err := c.Dispatch(ctx, ev)
	if err != nil {
		return err
	}
	if res.Err != nil {
		s.logger.Warn("rule file rejected", "session_id", c.SessionID(), "name", ev.Name, "err", res.Err)
	}
	return nil
}

func (s *Server) display(sessionID string) memory.DisplayState {
	s.mu.Lock()
	d := s.displays[sessionID]
	s.mu.Unlock()
	if d == nil {
		return memory.DisplayState{}
	}
	return d.State()
}

// SessionView is what every session endpoint returns.
type SessionView struct {
	Header  string              `json:"header"`
	Session domain.Snapshot     `json:"session"`
	Display memory.DisplayState `json:"display"`
	Result  *domain.Result      `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func (s *Server) view(c *mathview.Controller, res *domain.Result) SessionView {
	v := SessionView{
		Header:  c.Header(),
		Session: c.Snapshot(),
		Display: s.display(c.SessionID()),
		Result:  res,
	}
	if res != nil && res.Err != nil {
		v.Error = res.Err.Error()
	}
	return v
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{
		"app":     "mathview-http",
		"version": strings.TrimSpace(mathview.Version),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string][]string{"sessions": s.sessions.List()})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var v SessionView
	err := s.sessions.View(r.Context(), id, func(ctx context.Context, c *mathview.Controller) error {
		v = s.view(c, nil)
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, v)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Close(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	s.mu.Lock()
	delete(s.displays, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type inputRequest struct {
	Text string `json:"text"`
}

// SubmitInput handles POST /sessions/{id}/input.
func (s *Server) SubmitInput(w http.ResponseWriter, r *http.Request) {
	var body inputRequest
	if !s.decode(w, r, &body) {
		return
	}
	text, err := sanitize.Input(body.Text)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, sanitize.ErrInputTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}
	s.dispatch(w, r, domain.SubmitInput{Text: text})
}

type preferenceRequest struct {
	Value string `json:"value"`
}

// SetPreference handles PUT /sessions/{id}/preferences/{key}.
func (s *Server) SetPreference(w http.ResponseWriter, r *http.Request) {
	var body preferenceRequest
	if !s.decode(w, r, &body) {
		return
	}
	key := domain.PreferenceKey(chi.URLParam(r, "key"))
	if !domain.IsPreferenceKey(key) {
		http.Error(w, fmt.Sprintf("unknown preference %q", key), http.StatusNotFound)
		return
	}
	s.dispatch(w, r, domain.SetPreference{Key: key, Value: body.Value})
}

type keyRequest struct {
	Key   string `json:"key"`
	Code  int    `json:"code,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
}

func (k keyRequest) event() domain.KeyEvent {
	ev := domain.KeyFromName(k.Key)
	if k.Code != 0 {
		ev.Code = k.Code
	}
	ev.Shift, ev.Ctrl, ev.Alt, ev.Meta = k.Shift, k.Ctrl, k.Alt, k.Meta
	return ev
}

// PressKey handles POST /sessions/{id}/keys.
func (s *Server) PressKey(w http.ResponseWriter, r *http.Request) {
	var body keyRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Key == "" && body.Code == 0 {
		http.Error(w, "key or code is required", http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, domain.KeyPress{Event: body.event()})
}

type rulesRequest struct {
	Name     string `json:"name"`
	Contents string `json:"contents"`
}

// LoadRules handles POST /sessions/{id}/rules.
func (s *Server) LoadRules(w http.ResponseWriter, r *http.Request) {
	var body rulesRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, domain.RuleFileLoaded{Name: body.Name, Contents: body.Contents})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd domain.Command) {
	id := chi.URLParam(r, "id")
	var v SessionView
	var diff *domain.SnapshotDiff
	err := s.sessions.Open(r.Context(), id, func(ctx context.Context, c *mathview.Controller) error {
		before := c.Snapshot()
		res, err := c.Dispatch(ctx, cmd)
		if err != nil {
			return err
		}
		v = s.view(c, &res)
		diff = domain.Diff(&before, v.Session)
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	if diff != nil {
		if payload, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(payload))
		}
	}

	status := http.StatusOK
	var prefErr *domain.PreferenceError
	if errors.As(v.Result.Err, &prefErr) && errors.Is(prefErr, domain.ErrInvalidPreferenceValue) {
		status = http.StatusBadRequest
	}
	writeJSON(w, s.logger, status, v)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var displayErr *domain.DisplayError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &displayErr):
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.logger.Error("display failure", "err", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.logger.Error("request failed", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
