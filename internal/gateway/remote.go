package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rsvphub/internal/model"
)

// Remote is the HTTP backend: every Store operation maps to exactly one API
// call. Failed reads degrade to empty/absent results so the app stays usable
// when the service is flaky; failed writes surface ErrBackendUnavailable and
// never pretend success.
type Remote struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

var _ Store = (*Remote)(nil)

func NewRemote(baseURL string, logger *zap.Logger) *Remote {
	return &Remote{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// SetToken installs the bearer token used on subsequent calls, e.g. when
// resuming a persisted session.
func (r *Remote) SetToken(token string) {
	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
}

// Token returns the current bearer token.
func (r *Remote) Token() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.token
}

func (r *Remote) Close() error { return nil }

func (r *Remote) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	status, err := r.do(ctx, http.MethodGet, "/api/users", nil, &users)
	if err != nil || status != http.StatusOK {
		r.degradedRead("list users", status, err)
		return nil, nil
	}
	return users, nil
}

func (r *Remote) CreateUser(ctx context.Context, name, email, password string, isAdmin bool) (*model.User, error) {
	body := map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
		"isAdmin":  isAdmin,
	}
	var user model.User
	status, err := r.do(ctx, http.MethodPost, "/api/users", body, &user)
	if err != nil {
		return nil, ErrBackendUnavailable
	}
	switch status {
	case http.StatusCreated:
		return &user, nil
	case http.StatusConflict:
		return nil, ErrConflict
	default:
		return nil, fmt.Errorf("create user: unexpected status %d", status)
	}
}

func (r *Remote) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	status, err := r.do(ctx, http.MethodPost, "/api/login", body, &resp)
	if err != nil {
		// Unlike other reads this must not degrade: a nil user means the
		// credentials were rejected, not that the service was unreachable.
		r.logger.Warn("login request failed", zap.Error(err))
		return nil, ErrBackendUnavailable
	}
	if status != http.StatusOK {
		return nil, nil
	}
	r.SetToken(resp.Token)
	return &resp.User, nil
}

func (r *Remote) Communities(ctx context.Context) ([]model.Community, error) {
	var communities []model.Community
	status, err := r.do(ctx, http.MethodGet, "/api/communities", nil, &communities)
	if err != nil || status != http.StatusOK {
		r.degradedRead("list communities", status, err)
		return nil, nil
	}
	return communities, nil
}

func (r *Remote) CreateCommunity(ctx context.Context, community *model.Community) (*model.Community, error) {
	body := map[string]string{
		"name":        community.Name,
		"description": community.Description,
	}
	var created model.Community
	status, err := r.do(ctx, http.MethodPost, "/api/communities", body, &created)
	if err != nil {
		return nil, ErrBackendUnavailable
	}
	switch status {
	case http.StatusCreated:
		return &created, nil
	case http.StatusForbidden:
		return nil, ErrForbidden
	case http.StatusConflict:
		return nil, ErrConflict
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("create community: unexpected status %d", status)
	}
}

func (r *Remote) CommunityByCode(ctx context.Context, code string) (*model.Community, error) {
	var community model.Community
	status, err := r.do(ctx, http.MethodGet, "/api/communities/"+code, nil, &community)
	if err != nil || status == http.StatusNotFound {
		if err != nil {
			r.degradedRead("get community", status, err)
		}
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, nil
	}
	return &community, nil
}

func (r *Remote) JoinCommunity(ctx context.Context, code string, _ uuid.UUID) (*model.Community, error) {
	// The server derives the joining user from the bearer token.
	var community model.Community
	status, err := r.do(ctx, http.MethodPost, "/api/communities/"+code+"/join", nil, &community)
	if err != nil {
		return nil, ErrBackendUnavailable
	}
	switch status {
	case http.StatusOK:
		return &community, nil
	case http.StatusNotFound:
		return nil, nil
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("join community: unexpected status %d", status)
	}
}

func (r *Remote) CreateEvent(ctx context.Context, event *model.Event) (*model.Event, error) {
	body := map[string]interface{}{
		"communityId": event.CommunityID,
		"name":        event.Name,
		"date":        event.Date,
		"time":        event.Time,
		"location":    event.Location,
		"description": event.Description,
	}
	var created model.Event
	status, err := r.do(ctx, http.MethodPost, "/api/events", body, &created)
	if err != nil {
		return nil, ErrBackendUnavailable
	}
	switch status {
	case http.StatusCreated:
		return &created, nil
	case http.StatusForbidden:
		return nil, ErrForbidden
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("create event: unexpected status %d", status)
	}
}

func (r *Remote) EventsForCommunity(ctx context.Context, communityID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	status, err := r.do(ctx, http.MethodGet, "/api/communities/"+communityID.String()+"/events", nil, &events)
	if err != nil || status != http.StatusOK {
		r.degradedRead("list events", status, err)
		return nil, nil
	}
	return events, nil
}

func (r *Remote) CreateRSVP(ctx context.Context, rsvp *model.RSVP) (*model.RSVP, error) {
	body := map[string]interface{}{
		"eventId":  rsvp.EventID,
		"userName": rsvp.UserName,
		"code":     rsvp.Code,
	}
	var created model.RSVP
	status, err := r.do(ctx, http.MethodPost, "/api/rsvps", body, &created)
	if err != nil {
		return nil, ErrBackendUnavailable
	}
	switch status {
	case http.StatusCreated:
		return &created, nil
	case http.StatusConflict:
		return nil, ErrConflict
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("create rsvp: unexpected status %d", status)
	}
}

func (r *Remote) RSVPsForEvent(ctx context.Context, eventID uuid.UUID) ([]model.RSVP, error) {
	var rsvps []model.RSVP
	status, err := r.do(ctx, http.MethodGet, "/api/events/"+eventID.String()+"/rsvps", nil, &rsvps)
	if err != nil {
		r.degradedRead("list rsvps", status, err)
		return nil, nil
	}
	if status == http.StatusForbidden {
		return nil, ErrForbidden
	}
	if status != http.StatusOK {
		return nil, nil
	}
	return rsvps, nil
}

func (r *Remote) RSVPForUser(ctx context.Context, eventID, _ uuid.UUID) (*model.RSVP, error) {
	// The server resolves "me" from the bearer token. The aggregate listing
	// is admin-only, so this must not ride RSVPsForEvent.
	var rsvp model.RSVP
	status, err := r.do(ctx, http.MethodGet, "/api/events/"+eventID.String()+"/rsvps/me", nil, &rsvp)
	if err != nil {
		r.degradedRead("get own rsvp", status, err)
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, nil
	}
	return &rsvp, nil
}

func (r *Remote) RSVPByCode(ctx context.Context, code string) (*model.RSVPDetail, error) {
	var detail model.RSVPDetail
	status, err := r.do(ctx, http.MethodGet, "/api/rsvps/"+code, nil, &detail)
	if err != nil {
		r.degradedRead("get rsvp", status, err)
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, nil
	}
	return &detail, nil
}

func (r *Remote) ScanRSVP(ctx context.Context, code string, scannedBy uuid.UUID) (*model.ScanResult, error) {
	body := map[string]interface{}{"scannedBy": scannedBy}
	var result model.ScanResult
	status, err := r.do(ctx, http.MethodPut, "/api/rsvps/"+code+"/scan", body, &result)
	if err != nil {
		return nil, ErrBackendUnavailable
	}
	switch status {
	case http.StatusOK:
		return &result, nil
	case http.StatusNotFound:
		return nil, nil
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("scan rsvp: unexpected status %d", status)
	}
}

// do performs one API call, decoding a 2xx body into out when out is
// non-nil. The returned status is 0 when the transport failed.
func (r *Remote) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := r.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return 0, err
		}
	}
	return resp.StatusCode, nil
}

func (r *Remote) degradedRead(op string, status int, err error) {
	r.logger.Warn("read degraded to empty result",
		zap.String("op", op),
		zap.Int("status", status),
		zap.Error(err),
	)
}
