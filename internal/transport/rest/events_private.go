package rest

import (
	"net/http"

	"github.com/afisha-events/afisha/internal/application/event"
	"github.com/afisha-events/afisha/internal/domain"
	"github.com/afisha-events/afisha/internal/transport/rest/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	var req newEventRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	eventDate, err := parseEventDate(req.EventDate)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	// moderation defaults to on when the field is absent
	moderation := true
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}

	e, err := h.events.Create(r.Context(), event.CreateCmd{
		InitiatorID:       auth.UserID,
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		Category:          req.Category,
		EventDate:         eventDate,
		Location:          domain.Location{Lat: req.Location.Lat, Lon: req.Location.Lon},
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: moderation,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusCreated, toEventResponse(event.WithViews{Event: e}))
}

func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	from := parseFrom(r.URL.Query().Get("from"))
	size := parseSize(r.URL.Query().Get("size"))

	out, err := h.events.ListByInitiator(r.Context(), auth.UserID, from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toEventResponses(out))
}

func (h *Handler) GetMyEvent(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventID", map[string]string{
			"event_id": "must be a valid uuid",
		})
		return
	}

	out, err := h.events.GetByInitiator(r.Context(), eventID, auth.UserID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toEventResponse(out))
}

func (h *Handler) UpdateMyEvent(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventID", map[string]string{
			"event_id": "must be a valid uuid",
		})
		return
	}

	var req updateEventRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		handleErr(w, r, err)
		return
	}

	var action domain.UserStateAction
	if req.StateAction != nil {
		action = domain.UserStateAction(*req.StateAction)
	}

	e, err := h.events.OrganizerUpdate(r.Context(), event.OrganizerUpdateCmd{
		EventID:     eventID,
		InitiatorID: auth.UserID,
		Patch:       patch,
		StateAction: action,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toEventResponse(event.WithViews{Event: e}))
}
