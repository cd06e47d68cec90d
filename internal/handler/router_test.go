package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rsvphub/internal/config"
	"rsvphub/internal/model"
	"rsvphub/internal/service"
	jwtpkg "rsvphub/pkg/jwt"
)

// fakeAuthService serves canned users keyed by email.
type fakeAuthService struct {
	users map[string]*model.User
}

func (s *fakeAuthService) Register(_ context.Context, name, email, _ string, isAdmin bool) (*model.User, error) {
	if _, ok := s.users[email]; ok {
		return nil, service.ErrEmailTaken
	}
	user := &model.User{ID: uuid.New(), Name: name, Email: email, IsAdmin: isAdmin}
	s.users[email] = user
	return user, nil
}

func (s *fakeAuthService) Login(_ context.Context, email, password string) (*model.User, string, error) {
	user, ok := s.users[email]
	if !ok || password != "hunter22" {
		return nil, "", service.ErrInvalidCredentials
	}
	return user, "test-token", nil
}

func (s *fakeAuthService) ListUsers(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

// fakeCommunityService holds one community.
type fakeCommunityService struct {
	community *model.Community
}

func (s *fakeCommunityService) Create(_ context.Context, name, description string, adminID uuid.UUID) (*model.Community, error) {
	s.community = &model.Community{
		ID: uuid.New(), Name: name, Description: description,
		Code: "ABC123", AdminID: adminID, Members: []uuid.UUID{adminID},
	}
	return s.community, nil
}

func (s *fakeCommunityService) Join(_ context.Context, code string, userID uuid.UUID) (*model.Community, error) {
	if s.community == nil || s.community.Code != code {
		return nil, service.ErrNotFound
	}
	if !s.community.IsMember(userID) {
		s.community.Members = append(s.community.Members, userID)
	}
	return s.community, nil
}

func (s *fakeCommunityService) GetByCode(_ context.Context, code string) (*model.Community, error) {
	if s.community == nil || s.community.Code != code {
		return nil, service.ErrNotFound
	}
	return s.community, nil
}

func (s *fakeCommunityService) List(_ context.Context) ([]model.Community, error) {
	if s.community == nil {
		return nil, nil
	}
	return []model.Community{*s.community}, nil
}

type fakeEventService struct {
	events []model.Event
}

func (s *fakeEventService) Create(_ context.Context, event *model.Event) (*model.Event, error) {
	event.ID = uuid.New()
	s.events = append(s.events, *event)
	return event, nil
}

func (s *fakeEventService) ListForCommunity(_ context.Context, communityID uuid.UUID) ([]model.Event, error) {
	var out []model.Event
	for _, e := range s.events {
		if e.CommunityID == communityID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeRSVPService struct {
	rsvps map[string]*model.RSVP
}

func (s *fakeRSVPService) Create(_ context.Context, rsvp *model.RSVP) (*model.RSVP, error) {
	if _, ok := s.rsvps[rsvp.Code]; ok {
		return nil, service.ErrCodeTaken
	}
	rsvp.ID = uuid.New()
	s.rsvps[rsvp.Code] = rsvp
	return rsvp, nil
}

func (s *fakeRSVPService) ListForEvent(_ context.Context, eventID, _ uuid.UUID) ([]model.RSVP, error) {
	var out []model.RSVP
	for _, r := range s.rsvps {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeRSVPService) GetForEventAndUser(_ context.Context, eventID, userID uuid.UUID) (*model.RSVP, error) {
	for _, r := range s.rsvps {
		if r.EventID == eventID && r.UserID == userID {
			out := *r
			return &out, nil
		}
	}
	return nil, service.ErrNotFound
}

func (s *fakeRSVPService) GetDetailByCode(_ context.Context, code string) (*model.RSVPDetail, error) {
	r, ok := s.rsvps[code]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &model.RSVPDetail{RSVP: *r}, nil
}

func (s *fakeRSVPService) Scan(_ context.Context, code string, scannedBy uuid.UUID) (*model.ScanResult, error) {
	r, ok := s.rsvps[code]
	if !ok {
		return nil, service.ErrNotFound
	}
	transitioned := !r.Scanned
	if transitioned {
		now := time.Now()
		r.Scanned = true
		r.ScanTimestamp = &now
		r.ScannedBy = &scannedBy
	}
	return &model.ScanResult{RSVP: *r, Transitioned: transitioned}, nil
}

type routerFixture struct {
	router  *gin.Engine
	jwt     *jwtpkg.Manager
	auth    *fakeAuthService
	rsvps   *fakeRSVPService
	userID  uuid.UUID
	bearer  string
	baseCfg *config.Config
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	manager := jwtpkg.NewManager("test-signing-key", "rsvphub-test", time.Hour)

	auth := &fakeAuthService{users: make(map[string]*model.User)}
	rsvps := &fakeRSVPService{rsvps: make(map[string]*model.RSVP)}

	router := SetupRouter(
		cfg, zap.NewNop(), manager,
		NewAuthHandler(auth),
		NewCommunityHandler(&fakeCommunityService{}, &fakeEventService{}),
		NewEventHandler(&fakeEventService{}),
		NewRSVPHandler(rsvps),
	)

	userID := uuid.New()
	token, err := manager.GenerateAccessToken(userID)
	require.NoError(t, err)

	return &routerFixture{
		router:  router,
		jwt:     manager,
		auth:    auth,
		rsvps:   rsvps,
		userID:  userID,
		bearer:  "Bearer " + token,
		baseCfg: cfg,
	}
}

func (f *routerFixture) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", f.bearer)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRouter_RegisterAndLogin(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodPost, "/api/users", map[string]interface{}{
		"name": "Ada", "email": "ada@example.com", "password": "hunter22", "isAdmin": true,
	}, false)
	require.Equal(t, http.StatusCreated, w.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "Ada", user.Name)
	assert.Empty(t, user.PasswordHash)

	// Duplicate email conflicts.
	w = f.do(t, http.MethodPost, "/api/users", map[string]interface{}{
		"name": "Imposter", "email": "ada@example.com", "password": "password1",
	}, false)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/login", map[string]string{
		"email": "ada@example.com", "password": "hunter22",
	}, false)
	require.Equal(t, http.StatusOK, w.Code)
	var loginResp struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	assert.Equal(t, user.ID, loginResp.User.ID)
	assert.Equal(t, "test-token", loginResp.Token)

	w = f.do(t, http.MethodPost, "/api/login", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RegisterValidation(t *testing.T) {
	f := newRouterFixture(t)

	// Short password rejected by binding.
	w := f.do(t, http.MethodPost, "/api/users", map[string]interface{}{
		"name": "Ada", "email": "ada@example.com", "password": "short",
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed email rejected.
	w = f.do(t, http.MethodPost, "/api/users", map[string]interface{}{
		"name": "Ada", "email": "not-an-email", "password": "hunter22",
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodGet, "/api/communities", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/communities", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	w = f.do(t, http.MethodGet, "/api/communities", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CommunityRoutes(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodPost, "/api/communities", map[string]string{
		"name": "Gophers", "description": "weekly meetup",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	var community model.Community
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &community))
	assert.Equal(t, "ABC123", community.Code)
	assert.Equal(t, f.userID, community.AdminID)

	w = f.do(t, http.MethodGet, "/api/communities/ABC123", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/communities/NOPE99", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/communities/ABC123/join", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	// The events route takes the community id in the shared segment.
	w = f.do(t, http.MethodGet, "/api/communities/"+community.ID.String()+"/events", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RSVPAndScan(t *testing.T) {
	f := newRouterFixture(t)
	eventID := uuid.New()

	w := f.do(t, http.MethodPost, "/api/rsvps", map[string]interface{}{
		"eventId": eventID, "userName": "Ada", "code": "AAAAAA",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	var rsvp model.RSVP
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsvp))
	assert.Equal(t, f.userID, rsvp.UserID)
	assert.Equal(t, "AAAAAA", rsvp.Code)

	// Code collisions conflict.
	w = f.do(t, http.MethodPost, "/api/rsvps", map[string]interface{}{
		"eventId": uuid.New(), "userName": "Ben", "code": "AAAAAA",
	}, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/api/rsvps/AAAAAA", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	scanner := uuid.New()
	w = f.do(t, http.MethodPut, "/api/rsvps/AAAAAA/scan", map[string]interface{}{"scannedBy": scanner}, true)
	require.Equal(t, http.StatusOK, w.Code)
	var result model.ScanResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Transitioned)

	w = f.do(t, http.MethodPut, "/api/rsvps/AAAAAA/scan", map[string]interface{}{"scannedBy": scanner}, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Transitioned)

	w = f.do(t, http.MethodPut, "/api/rsvps/ZZZZZZ/scan", map[string]interface{}{"scannedBy": scanner}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_OwnRSVPWithoutAdminRights(t *testing.T) {
	f := newRouterFixture(t)
	eventID := uuid.New()

	w := f.do(t, http.MethodPost, "/api/rsvps", map[string]interface{}{
		"eventId": eventID, "userName": "Ada", "code": "AAAAAA",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	// Any authenticated attendee reads their own record on /rsvps/me.
	w = f.do(t, http.MethodGet, "/api/events/"+eventID.String()+"/rsvps/me", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var rsvp model.RSVP
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsvp))
	assert.Equal(t, f.userID, rsvp.UserID)
	assert.Equal(t, "AAAAAA", rsvp.Code)

	w = f.do(t, http.MethodGet, "/api/events/"+uuid.New().String()+"/rsvps/me", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/events/not-a-uuid/rsvps/me", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture(t)
	w := f.do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}
