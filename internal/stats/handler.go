package stats

import (
	"context"
	"net/http"
	"time"

	"github.com/afisha-events/afisha/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const timeFmt = "2006-01-02 15:04:05"

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler { return &Handler{repo: repo} }

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/hit", h.saveHit)
	r.Get("/stats", h.getStats)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	return r
}

type hitRequest struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) saveHit(w http.ResponseWriter, r *http.Request) {
	var req hitRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}
	if req.App == "" || req.URI == "" || req.IP == "" {
		badRequest(w, r, "app, uri and ip are required")
		return
	}

	ts, err := time.Parse(timeFmt, req.Timestamp)
	if err != nil {
		badRequest(w, r, "timestamp must be formatted as "+timeFmt)
		return
	}

	hit := EndpointHit{App: req.App, URI: req.URI, IP: req.IP, Timestamp: ts}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.repo.SaveHit(ctx, hit); err != nil {
		logger.Logger.Error().Err(err).Str("uri", req.URI).Msg("save hit failed")
		internalError(w, r)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, hit)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := time.Parse(timeFmt, q.Get("start"))
	if err != nil {
		badRequest(w, r, "start is required, formatted as "+timeFmt)
		return
	}
	end, err := time.Parse(timeFmt, q.Get("end"))
	if err != nil {
		badRequest(w, r, "end is required, formatted as "+timeFmt)
		return
	}
	if end.Before(start) {
		badRequest(w, r, "end must not be before start")
		return
	}

	unique := q.Get("unique") == "true"
	uris := q["uris"]

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.repo.GetStats(ctx, start, end, uris, unique)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("stats query failed")
		internalError(w, r)
		return
	}

	render.JSON(w, r, out)
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, map[string]string{"error": "internal error"})
}
