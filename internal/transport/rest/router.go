package rest

import (
	"net/http"
	"time"

	"github.com/afisha-events/afisha/internal/security"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
)

type RouterDeps struct {
	Handler  *Handler
	Verifier security.AccessTokenVerifier

	// PublicRateLimit caps anonymous requests per IP per minute;
	// zero disables the limiter.
	PublicRateLimit int
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}
	if d.Verifier == nil {
		panic("rest.NewRouter: nil verifier")
	}

	r := chi.NewRouter()

	// Request ID + structured access log
	r.Use(RequestID)
	r.Use(HTTPLogger)

	// Panic recovery
	r.Use(middleware.Recoverer)

	// Cross-cutting
	r.Use(SecurityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	// Anonymous surface: published events only, rate limited per IP.
	r.Group(func(r chi.Router) {
		if d.PublicRateLimit > 0 {
			r.Use(httprate.LimitByIP(d.PublicRateLimit, time.Minute))
		}

		r.Get("/events", d.Handler.PublicListEvents)
		r.Get("/events/{eventID}", d.Handler.PublicGetEvent)
	})

	// Authenticated surface: organizer and requester operations.
	r.Route("/users", func(r chi.Router) {
		r.Use(AuthMiddleware(d.Verifier))

		r.Post("/events", d.Handler.CreateEvent)
		r.Get("/events", d.Handler.ListMyEvents)
		r.Get("/events/{eventID}", d.Handler.GetMyEvent)
		r.Patch("/events/{eventID}", d.Handler.UpdateMyEvent)

		r.Get("/events/{eventID}/requests", d.Handler.ListEventRequests)
		r.Patch("/events/{eventID}/requests", d.Handler.ModerateRequests)

		r.Post("/requests", d.Handler.CreateRequest)
		r.Get("/requests", d.Handler.ListMyRequests)
		r.Patch("/requests/{requestID}/cancel", d.Handler.CancelRequest)
	})

	// Admin surface: moderation of the events themselves.
	r.Route("/admin", func(r chi.Router) {
		r.Use(AuthMiddleware(d.Verifier))
		r.Use(RequireAdmin)

		r.Get("/events", d.Handler.AdminListEvents)
		r.Patch("/events/{eventID}", d.Handler.AdminUpdateEvent)
	})

	return r
}
