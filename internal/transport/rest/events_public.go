package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/afisha-events/afisha/internal/application/event"
	"github.com/afisha-events/afisha/internal/transport/rest/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) PublicListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := event.PublicFilter{
		Text:       strings.TrimSpace(q.Get("text")),
		Categories: splitParam(q.Get("categories")),
		From:       parseFrom(q.Get("from")),
		Size:       parseSize(q.Get("size")),
	}

	if s := q.Get("paid"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "request.invalid", "invalid paid filter", map[string]string{
				"paid": "must be true or false",
			})
			return
		}
		f.Paid = &v
	}

	var err error
	if f.RangeStart, err = parseOptionalDate(q.Get("range_start")); err != nil {
		handleErr(w, r, err)
		return
	}
	if f.RangeEnd, err = parseOptionalDate(q.Get("range_end")); err != nil {
		handleErr(w, r, err)
		return
	}
	f.OnlyAvailable = q.Get("only_available") == "true"

	sortBy := event.SortEventDate
	switch q.Get("sort") {
	case "", string(event.SortEventDate):
	case string(event.SortViews):
		sortBy = event.SortViews
	default:
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid sort", map[string]string{
			"sort": "must be EVENT_DATE or VIEWS",
		})
		return
	}

	out, err := h.events.ListPublic(r.Context(), f, sortBy, r.URL.Path, clientIP(r))
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toEventResponses(out))
}

func (h *Handler) PublicGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventID", map[string]string{
			"event_id": "must be a valid uuid",
		})
		return
	}

	out, err := h.events.GetPublic(r.Context(), eventID, r.URL.Path, clientIP(r))
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toEventResponse(out))
}
