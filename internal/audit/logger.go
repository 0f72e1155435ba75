package audit

import (
	"context"

	"github.com/afisha-events/afisha/internal/domain"
	appctx "github.com/afisha-events/afisha/internal/pkg/context"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Logger provides structured audit logging for business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// RequestCreated logs a new participation request and its admission outcome
func (l *Logger) RequestCreated(ctx context.Context, eventID, requesterID, requestID uuid.UUID, status domain.RequestStatus) {
	l.log.Info().
		Str("action", "request_created").
		Str("event_id", eventID.String()).
		Str("requester_id", requesterID.String()).
		Str("request_id", requestID.String()).
		Str("status", string(status)).
		Str("request_trace", appctx.GetRequestID(ctx)).
		Msg("Participation request created")
}

// RequestCanceled logs a requester canceling their own request
func (l *Logger) RequestCanceled(ctx context.Context, eventID, requesterID, requestID uuid.UUID) {
	l.log.Info().
		Str("action", "request_canceled").
		Str("event_id", eventID.String()).
		Str("requester_id", requesterID.String()).
		Str("request_id", requestID.String()).
		Str("request_trace", appctx.GetRequestID(ctx)).
		Msg("Participation request canceled")
}

// ModerationResolved logs the partition produced by a moderation batch
func (l *Logger) ModerationResolved(ctx context.Context, eventID, initiatorID uuid.UUID, decision domain.RequestStatus, confirmed, rejected int) {
	l.log.Info().
		Str("action", "moderation_resolved").
		Str("event_id", eventID.String()).
		Str("initiator_id", initiatorID.String()).
		Str("decision", string(decision)).
		Int("confirmed", confirmed).
		Int("rejected", rejected).
		Str("request_trace", appctx.GetRequestID(ctx)).
		Msg("Moderation batch resolved")
}
