package event

import (
	"context"
	"time"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

type CreateCmd struct {
	InitiatorID uuid.UUID

	Title       string
	Annotation  string
	Description string
	Category    string
	EventDate   time.Time
	Location    domain.Location
	Paid        bool

	ParticipantLimit  int
	RequestModeration bool
}

func (s *Service) Create(ctx context.Context, cmd CreateCmd) (*domain.Event, error) {
	now := s.clock.Now()
	e, err := domain.NewEvent(cmd.InitiatorID, cmd.Title, cmd.Annotation, cmd.Description,
		cmd.Category, cmd.EventDate, cmd.Location, cmd.Paid,
		cmd.ParticipantLimit, cmd.RequestModeration, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	zlog.Debug().
		Str("event_id", e.ID.String()).
		Str("initiator_id", e.InitiatorID.String()).
		Msg("event created")
	return e, nil
}
