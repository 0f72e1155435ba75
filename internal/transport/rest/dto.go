package rest

import (
	"time"

	"github.com/afisha-events/afisha/internal/application/event"
	"github.com/afisha-events/afisha/internal/domain"
)

// eventDateFmt is the wire format for event dates, local-naive by
// convention and interpreted as UTC.
const eventDateFmt = "2006-01-02 15:04:05"

type locationDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type newEventRequest struct {
	Title             string      `json:"title"`
	Annotation        string      `json:"annotation"`
	Description       string      `json:"description"`
	Category          string      `json:"category"`
	EventDate         string      `json:"event_date"`
	Location          locationDTO `json:"location"`
	Paid              bool        `json:"paid"`
	ParticipantLimit  int         `json:"participant_limit"`
	RequestModeration *bool       `json:"request_moderation"`
}

// updateEventRequest carries a partial update. Absent fields stay
// untouched, so every field is a pointer.
type updateEventRequest struct {
	Title             *string      `json:"title"`
	Annotation        *string      `json:"annotation"`
	Description       *string      `json:"description"`
	Category          *string      `json:"category"`
	EventDate         *string      `json:"event_date"`
	Location          *locationDTO `json:"location"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participant_limit"`
	RequestModeration *bool        `json:"request_moderation"`
	StateAction       *string      `json:"state_action"`
}

func (u updateEventRequest) toPatch() (domain.EventPatch, error) {
	p := domain.EventPatch{
		Title:             u.Title,
		Annotation:        u.Annotation,
		Description:       u.Description,
		Category:          u.Category,
		Paid:              u.Paid,
		ParticipantLimit:  u.ParticipantLimit,
		RequestModeration: u.RequestModeration,
	}
	if u.EventDate != nil {
		t, err := parseEventDate(*u.EventDate)
		if err != nil {
			return domain.EventPatch{}, err
		}
		p.EventDate = &t
	}
	if u.Location != nil {
		p.Location = &domain.Location{Lat: u.Location.Lat, Lon: u.Location.Lon}
	}
	return p, nil
}

func parseEventDate(s string) (time.Time, error) {
	t, err := time.Parse(eventDateFmt, s)
	if err != nil {
		return time.Time{}, domain.ErrValidationMeta("invalid event_date", map[string]string{
			"event_date": "must be formatted as " + eventDateFmt,
		})
	}
	return t.UTC(), nil
}

type eventResponse struct {
	ID                string      `json:"id"`
	InitiatorID       string      `json:"initiator_id"`
	Title             string      `json:"title"`
	Annotation        string      `json:"annotation"`
	Description       string      `json:"description,omitempty"`
	Category          string      `json:"category"`
	EventDate         string      `json:"event_date"`
	Location          locationDTO `json:"location"`
	Paid              bool        `json:"paid"`
	ParticipantLimit  int         `json:"participant_limit"`
	RequestModeration bool        `json:"request_moderation"`
	State             string      `json:"state"`
	PublishedOn       *string     `json:"published_on,omitempty"`
	ConfirmedRequests int         `json:"confirmed_requests"`
	CreatedOn         string      `json:"created_on"`
	Views             int64       `json:"views"`
}

func toEventResponse(v event.WithViews) eventResponse {
	e := v.Event
	out := eventResponse{
		ID:                e.ID.String(),
		InitiatorID:       e.InitiatorID.String(),
		Title:             e.Title,
		Annotation:        e.Annotation,
		Description:       e.Description,
		Category:          e.Category,
		EventDate:         e.EventDate.UTC().Format(eventDateFmt),
		Location:          locationDTO{Lat: e.Location.Lat, Lon: e.Location.Lon},
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		State:             string(e.State),
		ConfirmedRequests: e.ConfirmedRequests,
		CreatedOn:         e.CreatedOn.UTC().Format(time.RFC3339),
		Views:             v.Views,
	}
	if e.PublishedOn != nil {
		s := e.PublishedOn.UTC().Format(time.RFC3339)
		out.PublishedOn = &s
	}
	return out
}

func toEventResponses(vs []event.WithViews) []eventResponse {
	out := make([]eventResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, toEventResponse(v))
	}
	return out
}

type requestResponse struct {
	ID          string `json:"id"`
	EventID     string `json:"event_id"`
	RequesterID string `json:"requester_id"`
	Status      string `json:"status"`
	Created     string `json:"created"`
}

func toRequestResponse(r *domain.ParticipationRequest) requestResponse {
	return requestResponse{
		ID:          r.ID.String(),
		EventID:     r.EventID.String(),
		RequesterID: r.RequesterID.String(),
		Status:      string(r.Status),
		Created:     r.Created.UTC().Format(time.RFC3339),
	}
}

func toRequestResponses(rs []*domain.ParticipationRequest) []requestResponse {
	out := make([]requestResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRequestResponse(r))
	}
	return out
}

type moderationRequest struct {
	RequestIDs []string `json:"request_ids"`
	Status     string   `json:"status"`
}

type moderationResponse struct {
	ConfirmedRequests []requestResponse `json:"confirmed_requests"`
	RejectedRequests  []requestResponse `json:"rejected_requests"`
}

func toModerationResponse(res *domain.ModerationResult) moderationResponse {
	return moderationResponse{
		ConfirmedRequests: toRequestResponses(res.Confirmed),
		RejectedRequests:  toRequestResponses(res.Rejected),
	}
}
