package registration

import (
	"context"

	"github.com/afisha-events/afisha/internal/audit"
	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
)

// Service is the request-per-call surface for participation requests:
// admission control, requester cancel, and organizer bulk moderation.
type Service struct {
	repo  RequestRepo
	audit *audit.Logger
}

func New(repo RequestRepo, audit *audit.Logger) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) Register(ctx context.Context, eventID, requesterID uuid.UUID) (*domain.ParticipationRequest, error) {
	req, err := s.repo.Register(ctx, eventID, requesterID)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.RequestCreated(ctx, req.EventID, req.RequesterID, req.ID, req.Status)
	}
	return req, nil
}

func (s *Service) Cancel(ctx context.Context, requestID, requesterID uuid.UUID) (*domain.ParticipationRequest, error) {
	req, err := s.repo.CancelRequest(ctx, requestID, requesterID)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.RequestCanceled(ctx, req.EventID, req.RequesterID, req.ID)
	}
	return req, nil
}

func (s *Service) Resolve(ctx context.Context, eventID, initiatorID uuid.UUID,
	requestIDs []uuid.UUID, decision domain.RequestStatus) (*domain.ModerationResult, error) {

	if len(requestIDs) == 0 {
		return nil, domain.ErrValidation("request_ids must not be empty")
	}
	if decision != domain.RequestConfirmed && decision != domain.RequestRejected {
		return nil, domain.ErrValidationMeta("unsupported moderation decision", map[string]string{
			"status": string(decision),
		})
	}

	// A request id supplied twice must not be confirmed twice or bump the
	// counter twice. First occurrence keeps its place in line.
	seen := make(map[uuid.UUID]struct{}, len(requestIDs))
	unique := make([]uuid.UUID, 0, len(requestIDs))
	for _, id := range requestIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	res, err := s.repo.ResolveModeration(ctx, eventID, initiatorID, unique, decision)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.ModerationResolved(ctx, eventID, initiatorID, decision, len(res.Confirmed), len(res.Rejected))
	}
	return res, nil
}

func (s *Service) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	return s.repo.ListByRequester(ctx, requesterID)
}

func (s *Service) ListForEvent(ctx context.Context, eventID, initiatorID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	return s.repo.ListForEvent(ctx, eventID, initiatorID)
}
