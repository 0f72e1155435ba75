package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/afisha-events/afisha/internal/application/event"
	"github.com/afisha-events/afisha/internal/domain"
	"github.com/afisha-events/afisha/internal/transport/rest/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

func (h *Handler) AdminListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := event.AdminFilter{
		From: parseFrom(q.Get("from")),
		Size: parseSize(q.Get("size")),
	}

	for _, s := range splitParam(q.Get("users")) {
		id, err := uuid.Parse(s)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "request.invalid", "invalid users filter", map[string]string{
				"users": "must be a comma-separated list of uuids",
			})
			return
		}
		f.Initiators = append(f.Initiators, id)
	}

	for _, s := range splitParam(q.Get("states")) {
		st := domain.EventState(s)
		if !st.Valid() {
			fail(w, r, http.StatusBadRequest, "request.invalid", "invalid states filter", map[string]string{
				"states": "unknown state " + s,
			})
			return
		}
		f.States = append(f.States, st)
	}

	f.Categories = splitParam(q.Get("categories"))

	var err error
	if f.RangeStart, err = parseOptionalDate(q.Get("range_start")); err != nil {
		handleErr(w, r, err)
		return
	}
	if f.RangeEnd, err = parseOptionalDate(q.Get("range_end")); err != nil {
		handleErr(w, r, err)
		return
	}

	out, err := h.events.ListAdmin(r.Context(), f)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toEventResponses(out))
}

func (h *Handler) AdminUpdateEvent(w http.ResponseWriter, r *http.Request) {
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

	var action domain.AdminStateAction
	if req.StateAction != nil {
		action = domain.AdminStateAction(*req.StateAction)
	}

	e, err := h.events.AdminUpdate(r.Context(), event.AdminUpdateCmd{
		EventID:     eventID,
		Patch:       patch,
		StateAction: action,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toEventResponse(event.WithViews{Event: e}))
}

func splitParam(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := parseEventDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
