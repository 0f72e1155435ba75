package rest

import (
	"errors"
	"net/http"

	"github.com/afisha-events/afisha/internal/application/event"
	"github.com/afisha-events/afisha/internal/application/registration"
	"github.com/afisha-events/afisha/internal/domain"
	appCtx "github.com/afisha-events/afisha/internal/pkg/context"
	"github.com/afisha-events/afisha/internal/pkg/logger"
	"github.com/afisha-events/afisha/internal/transport/rest/response"
)

type Handler struct {
	events   *event.Service
	requests *registration.Service
}

func NewHandler(events *event.Service, requests *registration.Service) *Handler {
	return &Handler{events: events, requests: requests}
}

func handleErr(w http.ResponseWriter, r *http.Request, err error) {
	var ae *domain.AppError
	if errors.As(err, &ae) {
		switch ae.Code {
		case domain.CodeValidation:
			fail(w, r, http.StatusBadRequest, string(ae.Code), ae.Message, ae.Meta)
			return
		case domain.CodeConflict:
			fail(w, r, http.StatusConflict, string(ae.Code), ae.Message, ae.Meta)
			return
		case domain.CodeNotFound:
			fail(w, r, http.StatusNotFound, string(ae.Code), ae.Message, ae.Meta)
			return
		}
	}

	// Do not leak internal details.
	l := logger.WithCtx(r.Context())
	l.Error().Err(err).Msg("unhandled error")
	fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	reqID := appCtx.GetRequestID(r.Context())
	if reqID == "" {
		reqID = "no-request-id"
	}
	response.Fail(w, status, code, message, meta, reqID)
}

func mustAuth(w http.ResponseWriter, r *http.Request) (AuthContext, bool) {
	auth, ok := GetAuth(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
	}
	return auth, ok
}
