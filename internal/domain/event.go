package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
)

func (s EventState) Valid() bool {
	return s == StatePending || s == StatePublished || s == StateCanceled
}

// Lead times between "now" and the event date required for a transition
// to be legal.
const (
	CreateLeadTime  = 2 * time.Hour
	PublishLeadTime = 1 * time.Hour
)

type Location struct {
	Lat float64
	Lon float64
}

type Event struct {
	ID          uuid.UUID
	InitiatorID uuid.UUID

	Title       string
	Annotation  string
	Description string
	Category    string
	EventDate   time.Time
	Location    Location
	Paid        bool

	// ParticipantLimit 0 means unlimited.
	ParticipantLimit  int
	RequestModeration bool

	State       EventState
	PublishedOn *time.Time

	// ConfirmedRequests is owned exclusively by the event row: only the
	// admission and moderation paths may change it, and only under the
	// row lock.
	ConfirmedRequests int

	CreatedOn time.Time
	UpdatedOn time.Time
}

func NewEvent(initiatorID uuid.UUID, title, annotation, description, category string,
	eventDate time.Time, loc Location, paid bool, participantLimit int,
	requestModeration bool, now time.Time) (*Event, error) {

	title = strings.TrimSpace(title)
	annotation = strings.TrimSpace(annotation)
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)

	if initiatorID == uuid.Nil {
		return nil, ErrValidation("initiator_id is required")
	}
	if title == "" || utf8.RuneCountInString(title) > 120 {
		return nil, ErrValidation("title is required and must be <= 120 chars")
	}
	if annotation == "" || utf8.RuneCountInString(annotation) > 2000 {
		return nil, ErrValidation("annotation is required and must be <= 2000 chars")
	}
	if description == "" || utf8.RuneCountInString(description) > 7000 {
		return nil, ErrValidation("description is required and must be <= 7000 chars")
	}
	if category == "" || utf8.RuneCountInString(category) > 80 {
		return nil, ErrValidation("category is required and must be <= 80 chars")
	}
	if participantLimit < 0 {
		return nil, ErrValidation("participant_limit must be >= 0 (0 means unlimited)")
	}
	if err := validateEventDate(eventDate, now); err != nil {
		return nil, err
	}

	return &Event{
		ID:                uuid.New(),
		InitiatorID:       initiatorID,
		Title:             title,
		Annotation:        annotation,
		Description:       description,
		Category:          category,
		EventDate:         eventDate.UTC(),
		Location:          loc,
		Paid:              paid,
		ParticipantLimit:  participantLimit,
		RequestModeration: requestModeration,
		State:             StatePending,
		ConfirmedRequests: 0,
		CreatedOn:         now.UTC(),
		UpdatedOn:         now.UTC(),
	}, nil
}

func validateEventDate(eventDate, now time.Time) error {
	if eventDate.IsZero() {
		return ErrValidation("event_date is required")
	}
	if eventDate.Before(now.Add(CreateLeadTime)) {
		return ErrValidationMeta("invalid event_date", map[string]string{
			"event_date": "must be at least 2 hours from now",
		})
	}
	return nil
}

// Editable reports whether the initiator may still change the event.
// Once published, organizer edits are forbidden.
func (e *Event) Editable() bool {
	return e.State == StatePending || e.State == StateCanceled
}

// HasCapacity reports whether another confirmation fits under the limit.
func (e *Event) HasCapacity() bool {
	return e.ParticipantLimit == 0 || e.ConfirmedRequests < e.ParticipantLimit
}

// AutoConfirms reports whether new requests bypass moderation: either the
// organizer disabled it or the event has unlimited capacity.
func (e *Event) AutoConfirms() bool {
	return !e.RequestModeration || e.ParticipantLimit == 0
}

// UserStateAction is the organizer-side lifecycle action. The zero value
// means "no state change requested".
type UserStateAction string

const (
	SendToReview UserStateAction = "SEND_TO_REVIEW"
	CancelReview UserStateAction = "CANCEL_REVIEW"
)

// AdminStateAction is the admin-side lifecycle action.
type AdminStateAction string

const (
	PublishEvent AdminStateAction = "PUBLISH_EVENT"
	RejectEvent  AdminStateAction = "REJECT_EVENT"
)

// ApplyUserAction dispatches an organizer action. The state gate
// (PENDING or CANCELED) is checked by the caller before any field patch;
// SEND_TO_REVIEW on an already pending event is an idempotent no-op.
func (e *Event) ApplyUserAction(action UserStateAction, now time.Time) error {
	switch action {
	case SendToReview:
		e.State = StatePending
	case CancelReview:
		e.State = StateCanceled
	default:
		return ErrValidationMeta("unknown state action", map[string]string{
			"state_action": string(action),
		})
	}
	e.UpdatedOn = now.UTC()
	return nil
}

// ApplyAdminAction dispatches an admin action.
func (e *Event) ApplyAdminAction(action AdminStateAction, now time.Time) error {
	switch action {
	case PublishEvent:
		if e.State != StatePending {
			return ErrConflict("cannot publish the event because it's not in the right state: " + string(e.State))
		}
		if e.EventDate.Before(now.Add(PublishLeadTime)) {
			return ErrConflict("cannot publish the event because event date is too soon")
		}
		t := now.UTC()
		e.State = StatePublished
		e.PublishedOn = &t
	case RejectEvent:
		if e.State == StatePublished {
			return ErrConflict("cannot reject the event because it's already published")
		}
		e.State = StateCanceled
	default:
		return ErrValidationMeta("unknown state action", map[string]string{
			"state_action": string(action),
		})
	}
	e.UpdatedOn = now.UTC()
	return nil
}

// EventPatch is a partial field update. Nil pointers leave fields untouched.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	Category          *string
	EventDate         *time.Time
	Location          *Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

// ApplyPatch updates event fields. A new event date is re-validated against
// the creation lead time.
func (e *Event) ApplyPatch(p EventPatch, now time.Time) error {
	if p.Title != nil {
		v := strings.TrimSpace(*p.Title)
		if v == "" || utf8.RuneCountInString(v) > 120 {
			return ErrValidation("title must be non-empty and <= 120 chars")
		}
		e.Title = v
	}
	if p.Annotation != nil {
		v := strings.TrimSpace(*p.Annotation)
		if v == "" || utf8.RuneCountInString(v) > 2000 {
			return ErrValidation("annotation must be non-empty and <= 2000 chars")
		}
		e.Annotation = v
	}
	if p.Description != nil {
		v := strings.TrimSpace(*p.Description)
		if v == "" || utf8.RuneCountInString(v) > 7000 {
			return ErrValidation("description must be non-empty and <= 7000 chars")
		}
		e.Description = v
	}
	if p.Category != nil {
		v := strings.TrimSpace(*p.Category)
		if v == "" || utf8.RuneCountInString(v) > 80 {
			return ErrValidation("category must be non-empty and <= 80 chars")
		}
		e.Category = v
	}
	if p.EventDate != nil {
		if err := validateEventDate(*p.EventDate, now); err != nil {
			return err
		}
		e.EventDate = p.EventDate.UTC()
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		if *p.ParticipantLimit < 0 {
			return ErrValidation("participant_limit must be >= 0 (0 means unlimited)")
		}
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
	e.UpdatedOn = now.UTC()
	return nil
}
