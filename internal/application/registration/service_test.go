package registration

import (
	"context"
	"testing"
	"time"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mockRepo records the last call so tests can assert validation happens
// before the repository is hit.
type mockRepo struct {
	resolveCalled bool
	resolveIDs    []uuid.UUID
	resolveStatus domain.RequestStatus
	result        *domain.ModerationResult
	err           error
}

func (m *mockRepo) Register(_ context.Context, eventID, requesterID uuid.UUID) (*domain.ParticipationRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return domain.NewParticipationRequest(eventID, requesterID, domain.RequestPending, testCreated), nil
}

func (m *mockRepo) CancelRequest(_ context.Context, requestID, requesterID uuid.UUID) (*domain.ParticipationRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ParticipationRequest{
		ID: requestID, RequesterID: requesterID, Status: domain.RequestCanceled, Created: testCreated,
	}, nil
}

func (m *mockRepo) ResolveModeration(_ context.Context, _, _ uuid.UUID,
	requestIDs []uuid.UUID, decision domain.RequestStatus) (*domain.ModerationResult, error) {

	m.resolveCalled = true
	m.resolveIDs = requestIDs
	m.resolveStatus = decision
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockRepo) ListByRequester(_ context.Context, _ uuid.UUID) ([]*domain.ParticipationRequest, error) {
	return nil, nil
}

func (m *mockRepo) ListForEvent(_ context.Context, _, _ uuid.UUID) ([]*domain.ParticipationRequest, error) {
	return nil, nil
}

var testCreated = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestService_Resolve_Validation(t *testing.T) {
	eventID, initiatorID := uuid.New(), uuid.New()

	t.Run("empty batch never reaches the repo", func(t *testing.T) {
		repo := &mockRepo{}
		svc := New(repo, nil)

		_, err := svc.Resolve(context.Background(), eventID, initiatorID, nil, domain.RequestConfirmed)
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
		assert.False(t, repo.resolveCalled)
	})

	t.Run("decision must be CONFIRMED or REJECTED", func(t *testing.T) {
		repo := &mockRepo{}
		svc := New(repo, nil)

		for _, decision := range []domain.RequestStatus{
			domain.RequestPending, domain.RequestCanceled, domain.RequestStatus("APPROVED"),
		} {
			_, err := svc.Resolve(context.Background(), eventID, initiatorID,
				[]uuid.UUID{uuid.New()}, decision)
			assert.Equal(t, domain.CodeValidation, domain.CodeOf(err), "decision %s", decision)
		}
		assert.False(t, repo.resolveCalled)
	})

	t.Run("repeated ids collapse to first occurrence", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		repo := &mockRepo{result: &domain.ModerationResult{}}
		svc := New(repo, nil)

		_, err := svc.Resolve(context.Background(), eventID, initiatorID,
			[]uuid.UUID{a, b, a, b, a}, domain.RequestConfirmed)
		assert.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a, b}, repo.resolveIDs)
	})

	t.Run("valid batch passes through in order", func(t *testing.T) {
		ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
		repo := &mockRepo{result: &domain.ModerationResult{}}
		svc := New(repo, nil)

		_, err := svc.Resolve(context.Background(), eventID, initiatorID, ids, domain.RequestRejected)
		assert.NoError(t, err)
		assert.True(t, repo.resolveCalled)
		assert.Equal(t, ids, repo.resolveIDs)
		assert.Equal(t, domain.RequestRejected, repo.resolveStatus)
	})
}

func TestService_Register_PassesThroughErrors(t *testing.T) {
	repo := &mockRepo{err: domain.ErrConflict("request already exists")}
	svc := New(repo, nil)

	_, err := svc.Register(context.Background(), uuid.New(), uuid.New())
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}

func TestService_Cancel(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, nil)

	got, err := svc.Cancel(context.Background(), uuid.New(), uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, domain.RequestCanceled, got.Status)
}
