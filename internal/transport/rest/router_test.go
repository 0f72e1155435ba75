package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/afisha-events/afisha/internal/application/event"
	"github.com/afisha-events/afisha/internal/application/registration"
	"github.com/afisha-events/afisha/internal/domain"
	"github.com/afisha-events/afisha/internal/pkg/logger"
	"github.com/afisha-events/afisha/internal/security"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// fakeStore backs both repos with in-process maps so the full HTTP
// surface can be exercised without postgres.
type fakeStore struct {
	events   map[uuid.UUID]*domain.Event
	requests map[uuid.UUID]*domain.ParticipationRequest
	now      time.Time
}

func newFakeStore(now time.Time) *fakeStore {
	return &fakeStore{
		events:   map[uuid.UUID]*domain.Event{},
		requests: map[uuid.UUID]*domain.ParticipationRequest{},
		now:      now,
	}
}

func (s *fakeStore) Create(_ context.Context, e *domain.Event) error {
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	cp := *e
	return &cp, nil
}

func (s *fakeStore) GetByIDAndInitiator(ctx context.Context, id, initiatorID uuid.UUID) (*domain.Event, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil || e.InitiatorID != initiatorID {
		return nil, domain.ErrNotFound("event not found")
	}
	return e, nil
}

func (s *fakeStore) UpdateUnderLock(_ context.Context, id uuid.UUID, mutate func(*domain.Event) error) (*domain.Event, error) {
	stored, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	cp := *stored
	if err := mutate(&cp); err != nil {
		return nil, err
	}
	s.events[id] = &cp
	out := cp
	return &out, nil
}

func (s *fakeStore) ListByInitiator(_ context.Context, initiatorID uuid.UUID, _, _ int) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range s.events {
		if e.InitiatorID == initiatorID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) ListAdmin(_ context.Context, _ event.AdminFilter) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range s.events {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeStore) ListPublic(_ context.Context, _ event.PublicFilter) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range s.events {
		if e.State == domain.StatePublished {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) Register(ctx context.Context, eventID, requesterID uuid.UUID) (*domain.ParticipationRequest, error) {
	ev, ok := s.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}

	hasActive := false
	for _, r := range s.requests {
		if r.EventID == eventID && r.RequesterID == requesterID && r.Status != domain.RequestCanceled {
			hasActive = true
		}
	}

	status, err := domain.AdmitRequest(ev, requesterID, hasActive)
	if err != nil {
		return nil, err
	}

	req := domain.NewParticipationRequest(eventID, requesterID, status, s.now)
	s.requests[req.ID] = req
	if status == domain.RequestConfirmed {
		ev.ConfirmedRequests++
	}
	cp := *req
	return &cp, nil
}

func (s *fakeStore) CancelRequest(_ context.Context, requestID, requesterID uuid.UUID) (*domain.ParticipationRequest, error) {
	r, ok := s.requests[requestID]
	if !ok || r.RequesterID != requesterID {
		return nil, domain.ErrNotFound("request not found")
	}
	r.Status = domain.RequestCanceled
	cp := *r
	return &cp, nil
}

func (s *fakeStore) ResolveModeration(_ context.Context, eventID, initiatorID uuid.UUID,
	requestIDs []uuid.UUID, decision domain.RequestStatus) (*domain.ModerationResult, error) {

	ev, ok := s.events[eventID]
	if !ok || ev.InitiatorID != initiatorID {
		return nil, domain.ErrNotFound("event not found")
	}

	var batch []*domain.ParticipationRequest
	for _, id := range requestIDs {
		r, ok := s.requests[id]
		if !ok || r.EventID != eventID {
			return nil, domain.ErrNotFound("request not found")
		}
		batch = append(batch, r)
	}

	return domain.ResolveModeration(ev, batch, decision)
}

func (s *fakeStore) ListByRequester(_ context.Context, requesterID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	var out []*domain.ParticipationRequest
	for _, r := range s.requests {
		if r.RequesterID == requesterID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) ListForEvent(_ context.Context, eventID, initiatorID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	ev, ok := s.events[eventID]
	if !ok || ev.InitiatorID != initiatorID {
		return nil, domain.ErrNotFound("event not found")
	}
	var out []*domain.ParticipationRequest
	for _, r := range s.requests {
		if r.EventID == eventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type testEnv struct {
	srv   *httptest.Server
	store *fakeStore
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger.InitWithWriter(io.Discard)

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(now)

	events := event.New(store, nil, fixedClock{now: now})
	requests := registration.New(store, nil)

	router := NewRouter(RouterDeps{
		Handler:  NewHandler(events, requests),
		Verifier: security.NewHS256Verifier(testSecret, "afisha-auth"),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: store, now: now}
}

func (e *testEnv) token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  userID.String(),
		"role": role,
		"iss":  "afisha-auth",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Data
}

func (e *testEnv) seedEvent(t *testing.T, initiatorID uuid.UUID, state domain.EventState, limit int, moderation bool) *domain.Event {
	t.Helper()

	ev, err := domain.NewEvent(initiatorID, "Jazz night", "Live jazz downtown", "An evening of live jazz",
		"concerts", e.now.Add(48*time.Hour), domain.Location{Lat: 55.75, Lon: 37.61},
		true, limit, moderation, e.now)
	require.NoError(t, err)
	ev.State = state
	if state == domain.StatePublished {
		p := e.now.Add(-time.Hour)
		ev.PublishedOn = &p
	}
	e.store.events[ev.ID] = ev
	return ev
}

func TestRouter_Auth(t *testing.T) {
	env := newTestEnv(t)

	t.Run("private routes need a token", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/users/events", "", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/users/events", "not-a-jwt", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("admin routes reject plain users", func(t *testing.T) {
		token := env.token(t, uuid.New(), security.RoleUser)
		resp := env.do(t, http.MethodGet, "/admin/events", token, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("public routes work anonymously", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/events", "", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRouter_CreateEvent(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	token := env.token(t, userID, security.RoleUser)

	t.Run("created", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/users/events", token, map[string]any{
			"title":             "Jazz night",
			"annotation":        "Live jazz downtown",
			"description":       "An evening of live jazz",
			"category":          "concerts",
			"event_date":        env.now.Add(3 * time.Hour).Format(eventDateFmt),
			"location":          map[string]float64{"lat": 55.75, "lon": 37.61},
			"paid":              true,
			"participant_limit": 10,
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		got := decodeData[eventResponse](t, resp)
		assert.Equal(t, "PENDING", got.State)
		assert.Equal(t, userID.String(), got.InitiatorID)
		assert.True(t, got.RequestModeration, "moderation defaults to on")
	})

	t.Run("too-soon event date is a 400", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/users/events", token, map[string]any{
			"title":       "Jazz night",
			"annotation":  "Live jazz downtown",
			"description": "An evening of live jazz",
			"category":    "concerts",
			"event_date":  env.now.Add(30 * time.Minute).Format(eventDateFmt),
			"location":    map[string]float64{"lat": 55.75, "lon": 37.61},
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed date is a 400", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/users/events", token, map[string]any{
			"title": "x", "annotation": "x", "description": "x", "category": "x",
			"event_date": "tomorrow evening",
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRouter_OrganizerUpdate(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	stranger := uuid.New()

	ev := env.seedEvent(t, owner, domain.StatePending, 10, true)

	t.Run("stranger sees not_found, not forbidden", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/users/events/"+ev.ID.String(),
			env.token(t, stranger, security.RoleUser), map[string]any{"title": "Mine now"})
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("owner patches and sends to review", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/users/events/"+ev.ID.String(),
			env.token(t, owner, security.RoleUser), map[string]any{
				"title":        "Jazz night, extended",
				"state_action": "SEND_TO_REVIEW",
			})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeData[eventResponse](t, resp)
		assert.Equal(t, "Jazz night, extended", got.Title)
		assert.Equal(t, "PENDING", got.State)
	})

	t.Run("published events take no organizer edits", func(t *testing.T) {
		pub := env.seedEvent(t, owner, domain.StatePublished, 10, true)
		resp := env.do(t, http.MethodPatch, "/users/events/"+pub.ID.String(),
			env.token(t, owner, security.RoleUser), map[string]any{"title": "New title"})
		resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestRouter_AdminPublish(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	admin := env.token(t, uuid.New(), security.RoleAdmin)

	ev := env.seedEvent(t, owner, domain.StatePending, 0, false)

	resp := env.do(t, http.MethodPatch, "/admin/events/"+ev.ID.String(), admin, map[string]any{
		"state_action": "PUBLISH_EVENT",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeData[eventResponse](t, resp)
	assert.Equal(t, "PUBLISHED", got.State)
	assert.NotNil(t, got.PublishedOn)

	t.Run("second publish conflicts", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/admin/events/"+ev.ID.String(), admin, map[string]any{
			"state_action": "PUBLISH_EVENT",
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown action is a 400", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/admin/events/"+ev.ID.String(), admin, map[string]any{
			"state_action": "MAKE_IT_SO",
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRouter_Requests(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	visitor := uuid.New()

	ev := env.seedEvent(t, owner, domain.StatePublished, 0, false)

	t.Run("register auto-confirms on unlimited event", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/users/requests",
			env.token(t, visitor, security.RoleUser), map[string]string{"event_id": ev.ID.String()})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		got := decodeData[requestResponse](t, resp)
		assert.Equal(t, "CONFIRMED", got.Status)
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/users/requests",
			env.token(t, visitor, security.RoleUser), map[string]string{"event_id": ev.ID.String()})
		resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("initiator cannot register", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/users/requests",
			env.token(t, owner, security.RoleUser), map[string]string{"event_id": ev.ID.String()})
		resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown event is a 404", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/users/requests",
			env.token(t, visitor, security.RoleUser), map[string]string{"event_id": uuid.NewString()})
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRouter_Moderation(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	ev := env.seedEvent(t, owner, domain.StatePublished, 10, true)

	var ids []string
	for i := 0; i < 3; i++ {
		resp := env.do(t, http.MethodPost, "/users/requests",
			env.token(t, uuid.New(), security.RoleUser), map[string]string{"event_id": ev.ID.String()})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		got := decodeData[requestResponse](t, resp)
		require.Equal(t, "PENDING", got.Status)
		ids = append(ids, got.ID)
	}

	t.Run("repeated id in the batch confirms once", func(t *testing.T) {
		other := env.seedEvent(t, owner, domain.StatePublished, 10, true)
		resp := env.do(t, http.MethodPost, "/users/requests",
			env.token(t, uuid.New(), security.RoleUser), map[string]string{"event_id": other.ID.String()})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		req := decodeData[requestResponse](t, resp)

		dup := []string{req.ID, req.ID, req.ID}
		resp = env.do(t, http.MethodPatch, fmt.Sprintf("/users/events/%s/requests", other.ID),
			env.token(t, owner, security.RoleUser), moderationRequest{RequestIDs: dup, Status: "CONFIRMED"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeData[moderationResponse](t, resp)
		assert.Len(t, got.ConfirmedRequests, 1)
		assert.Empty(t, got.RejectedRequests)
		assert.Equal(t, 1, env.store.events[other.ID].ConfirmedRequests)
	})

	t.Run("owner confirms the batch", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, fmt.Sprintf("/users/events/%s/requests", ev.ID),
			env.token(t, owner, security.RoleUser), moderationRequest{RequestIDs: ids, Status: "CONFIRMED"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeData[moderationResponse](t, resp)
		assert.Len(t, got.ConfirmedRequests, 3)
		assert.Empty(t, got.RejectedRequests)
	})

	t.Run("resolved requests cannot be moderated again", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, fmt.Sprintf("/users/events/%s/requests", ev.ID),
			env.token(t, owner, security.RoleUser), moderationRequest{RequestIDs: ids, Status: "REJECTED"})
		resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("bad decision is a 400", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, fmt.Sprintf("/users/events/%s/requests", ev.ID),
			env.token(t, owner, security.RoleUser), moderationRequest{RequestIDs: ids, Status: "MAYBE"})
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRouter_PublicSurface(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	pub := env.seedEvent(t, owner, domain.StatePublished, 5, true)
	draft := env.seedEvent(t, owner, domain.StatePending, 5, true)

	t.Run("draft is invisible", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/events/"+draft.ID.String(), "", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("published event is visible", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/events/"+pub.ID.String(), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeData[eventResponse](t, resp)
		assert.Equal(t, pub.ID.String(), got.ID)
		assert.Equal(t, "PUBLISHED", got.State)
	})

	t.Run("invalid sort is a 400", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/events?sort=PRICE", "", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
