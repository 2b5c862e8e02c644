package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"chouine/server/agent"
	"chouine/server/engine"
	"chouine/server/session"
	"chouine/server/store"
)

// ResultsReader serves the finished-games ledger; nil when no database is configured.
type ResultsReader interface {
	RecentResults(ctx context.Context, limit int) ([]store.ResultRow, error)
	Summary(ctx context.Context) (store.Summary, error)
}

type RouterDeps struct {
	Games        *session.Service
	Results      ResultsReader
	Log          *zap.Logger
	CORSOrigins  []string
	StoreTimeout time.Duration
}

func Router(d RouterDeps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.StoreTimeout <= 0 {
		d.StoreTimeout = 5 * time.Second
	}
	h := &handlers{RouterDeps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.health)
	r.Get("/api/health", h.health)
	r.Get("/api/results", h.results)
	r.Get("/api/summary", h.summary)

	r.Post("/game/new", h.newGame)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.state)
		r.Post("/lead", h.lead)
		r.Post("/follow", h.follow)
		r.Post("/exchange7", h.exchange7)
	})
	return r
}

type handlers struct {
	RouterDeps
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *handlers) newGame(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Games.Create(r.Context())
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Games.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *handlers) lead(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.Games.Lead)
}

func (h *handlers) follow(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.Games.Follow)
}

type moveFunc func(ctx context.Context, id string, m agent.Move) (agent.PublicState, error)

func (h *handlers) move(w http.ResponseWriter, r *http.Request, play moveFunc) {
	id := chi.URLParam(r, "id")
	var m agent.Move
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&m); err != nil {
		ps, stateErr := h.Games.State(r.Context(), id)
		if stateErr != nil {
			h.fail(w, r, stateErr, nil)
			return
		}
		h.fail(w, r, &badRequest{err}, &ps)
		return
	}
	ps, err := play(r.Context(), id, m)
	if err != nil {
		h.fail(w, r, err, &ps)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *handlers) exchange7(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Games.ExchangeSeven(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, &ps)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *handlers) results(w http.ResponseWriter, r *http.Request) {
	if h.Results == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "results ledger disabled"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ctx, cancel := withTimeout(r.Context(), h.StoreTimeout)
	defer cancel()
	rows, err := h.Results.RecentResults(ctx, limit)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	if h.Results == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "results ledger disabled"})
		return
	}
	ctx, cancel := withTimeout(r.Context(), h.StoreTimeout)
	defer cancel()
	s, err := h.Results.Summary(ctx)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	lo, hi := WilsonCI95(s.PlayerWins, s.Draws, s.Games)
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":            s,
		"player_win_rate_ci": []float64{lo, hi},
	})
}

type badRequest struct{ err error }

func (b *badRequest) Error() string { return "invalid request body: " + b.err.Error() }
func (b *badRequest) Unwrap() error { return b.err }

// errorBody carries the error next to the untouched public state.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	*agent.PublicState
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error, ps *agent.PublicState) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	body := errorBody{Error: err.Error(), Kind: kind}
	if ps != nil && ps.GameID != "" {
		body.PublicState = ps
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, string) {
	var br *badRequest
	switch {
	case errors.Is(err, session.ErrGameNotFound):
		return http.StatusNotFound, "game_not_found"
	case errors.Is(err, session.ErrCapacity):
		return http.StatusServiceUnavailable, "capacity"
	case errors.Is(err, session.ErrMissingCard):
		return http.StatusBadRequest, "missing_card"
	case errors.As(err, &br):
		return http.StatusBadRequest, "bad_request"
	}
	switch kind := engine.Kind(err); kind {
	case "":
		return http.StatusInternalServerError, "internal"
	case "invalid_side":
		return http.StatusBadRequest, kind
	case "game_over", "not_leader", "leader_cannot_follow", "trick_in_progress", "no_lead_to_follow":
		return http.StatusConflict, kind
	default:
		return http.StatusUnprocessableEntity, kind
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug("http",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("took", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
