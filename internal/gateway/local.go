package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"rsvphub/internal/model"
	"rsvphub/internal/session"
	"rsvphub/pkg/crypto"
)

// Collection keys inside the embedded store. Each data key holds the whole
// JSON array for its record type; a mutation rewrites the array.
const (
	keyUsers       = "users"
	keyCommunities = "communities"
	keyEvents      = "events"
	keyRSVPs       = "rsvps"

	keyCurrentUser      = "currentUser"
	keyCurrentCommunity = "currentCommunity"
	keyLastActivity     = "lastActivity"
	keyAuthToken        = "authToken"
)

// Local is the embedded backend: a sqlite key-value area holding one JSON
// collection per record type. A single mutex serializes every operation, so
// read-then-write sequences observe no interleaving.
type Local struct {
	mu sync.Mutex
	db *sql.DB
}

var _ Store = (*Local)(nil)
var _ session.SnapshotStore = (*Local)(nil)

// OpenLocal opens (creating if needed) the embedded store at path. Use
// ":memory:" for an ephemeral store.
func OpenLocal(path string) (*Local, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	// One connection keeps ":memory:" stores coherent across the pool.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS collections (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("init local store: %w", err)
	}
	return &Local{db: db}, nil
}

func (s *Local) Close() error { return s.db.Close() }

func (s *Local) Users(ctx context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []model.User
	if err := s.read(ctx, keyUsers, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

func (s *Local) CreateUser(ctx context.Context, name, email, password string, isAdmin bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []model.User
	if err := s.read(ctx, keyUsers, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return nil, ErrConflict
		}
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	}
	users = append(users, user)
	if err := s.write(ctx, keyUsers, users); err != nil {
		return nil, err
	}
	out := user.Sanitized()
	return &out, nil
}

func (s *Local) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []model.User
	if err := s.read(ctx, keyUsers, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email && crypto.CheckPassword(password, u.PasswordHash) {
			out := u.Sanitized()
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Local) Communities(ctx context.Context) ([]model.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var communities []model.Community
	if err := s.read(ctx, keyCommunities, &communities); err != nil {
		return nil, err
	}
	return communities, nil
}

// CreateCommunity stores a community whose invite code the caller has
// already generated and collision-checked; a stale code still fails with
// ErrConflict here.
func (s *Local) CreateCommunity(ctx context.Context, community *model.Community) (*model.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var communities []model.Community
	if err := s.read(ctx, keyCommunities, &communities); err != nil {
		return nil, err
	}
	for _, c := range communities {
		if c.Code == community.Code {
			return nil, ErrConflict
		}
	}

	stored := *community
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.Members = []uuid.UUID{stored.AdminID}
	communities = append(communities, stored)
	if err := s.write(ctx, keyCommunities, communities); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *Local) CommunityByCode(ctx context.Context, code string) (*model.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var communities []model.Community
	if err := s.read(ctx, keyCommunities, &communities); err != nil {
		return nil, err
	}
	for _, c := range communities {
		if c.Code == code {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Local) JoinCommunity(ctx context.Context, code string, userID uuid.UUID) (*model.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var communities []model.Community
	if err := s.read(ctx, keyCommunities, &communities); err != nil {
		return nil, err
	}
	for i := range communities {
		if communities[i].Code != code {
			continue
		}
		if !communities[i].IsMember(userID) {
			communities[i].Members = append(communities[i].Members, userID)
			if err := s.write(ctx, keyCommunities, communities); err != nil {
				return nil, err
			}
		}
		c := communities[i]
		return &c, nil
	}
	return nil, nil
}

func (s *Local) CreateEvent(ctx context.Context, event *model.Event) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []model.Event
	if err := s.read(ctx, keyEvents, &events); err != nil {
		return nil, err
	}
	stored := *event
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	events = append(events, stored)
	if err := s.write(ctx, keyEvents, events); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *Local) EventsForCommunity(ctx context.Context, communityID uuid.UUID) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []model.Event
	if err := s.read(ctx, keyEvents, &events); err != nil {
		return nil, err
	}
	var out []model.Event
	for _, e := range events {
		if e.CommunityID == communityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Local) CreateRSVP(ctx context.Context, rsvp *model.RSVP) (*model.RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rsvps []model.RSVP
	if err := s.read(ctx, keyRSVPs, &rsvps); err != nil {
		return nil, err
	}
	for _, r := range rsvps {
		// One RSVP per (event, user); creation is idempotent at the storage
		// level as well as in the issuance engine.
		if r.EventID == rsvp.EventID && r.UserID == rsvp.UserID {
			existing := r
			return &existing, nil
		}
		if r.Code == rsvp.Code {
			return nil, ErrConflict
		}
	}

	stored := *rsvp
	stored.ID = uuid.New()
	stored.Scanned = false
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	rsvps = append(rsvps, stored)
	if err := s.write(ctx, keyRSVPs, rsvps); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *Local) RSVPsForEvent(ctx context.Context, eventID uuid.UUID) ([]model.RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rsvps []model.RSVP
	if err := s.read(ctx, keyRSVPs, &rsvps); err != nil {
		return nil, err
	}
	var out []model.RSVP
	for _, r := range rsvps {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Local) RSVPForUser(ctx context.Context, eventID, userID uuid.UUID) (*model.RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rsvps []model.RSVP
	if err := s.read(ctx, keyRSVPs, &rsvps); err != nil {
		return nil, err
	}
	for _, r := range rsvps {
		if r.EventID == eventID && r.UserID == userID {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Local) RSVPByCode(ctx context.Context, code string) (*model.RSVPDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rsvps []model.RSVP
	if err := s.read(ctx, keyRSVPs, &rsvps); err != nil {
		return nil, err
	}
	for _, r := range rsvps {
		if r.Code != code {
			continue
		}
		detail := model.RSVPDetail{RSVP: r}
		var events []model.Event
		if err := s.read(ctx, keyEvents, &events); err != nil {
			return nil, err
		}
		for _, e := range events {
			if e.ID == r.EventID {
				detail.EventName = e.Name
				detail.CommunityID = e.CommunityID
				break
			}
		}
		return &detail, nil
	}
	return nil, nil
}

func (s *Local) ScanRSVP(ctx context.Context, code string, scannedBy uuid.UUID) (*model.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rsvps []model.RSVP
	if err := s.read(ctx, keyRSVPs, &rsvps); err != nil {
		return nil, err
	}
	for i := range rsvps {
		if rsvps[i].Code != code {
			continue
		}
		if rsvps[i].Scanned {
			// Already redeemed; stamps stay as the first scan left them.
			return &model.ScanResult{RSVP: rsvps[i], Transitioned: false}, nil
		}
		now := time.Now()
		by := scannedBy
		rsvps[i].Scanned = true
		rsvps[i].ScanTimestamp = &now
		rsvps[i].ScannedBy = &by
		if err := s.write(ctx, keyRSVPs, rsvps); err != nil {
			return nil, err
		}
		return &model.ScanResult{RSVP: rsvps[i], Transitioned: true}, nil
	}
	return nil, nil
}

// Session snapshot persistence; the guard owns the semantics.

func (s *Local) SaveSnapshot(ctx context.Context, snap *session.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(ctx, keyCurrentUser, snap.User); err != nil {
		return err
	}
	if snap.Community != nil {
		if err := s.write(ctx, keyCurrentCommunity, snap.Community); err != nil {
			return err
		}
	} else if err := s.delete(ctx, keyCurrentCommunity); err != nil {
		return err
	}
	if err := s.write(ctx, keyLastActivity, snap.LastActivity); err != nil {
		return err
	}
	if snap.Token != "" {
		return s.write(ctx, keyAuthToken, snap.Token)
	}
	return s.delete(ctx, keyAuthToken)
}

func (s *Local) LoadSnapshot(ctx context.Context) (*session.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user *model.User
	ok, err := s.readKey(ctx, keyCurrentUser, &user)
	if err != nil {
		return nil, err
	}
	if !ok || user == nil {
		return nil, nil
	}

	snap := &session.Snapshot{User: user}
	if _, err := s.readKey(ctx, keyCurrentCommunity, &snap.Community); err != nil {
		return nil, err
	}
	if _, err := s.readKey(ctx, keyLastActivity, &snap.LastActivity); err != nil {
		return nil, err
	}
	if _, err := s.readKey(ctx, keyAuthToken, &snap.Token); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Local) ClearSnapshot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{keyCurrentUser, keyCurrentCommunity, keyLastActivity, keyAuthToken} {
		if err := s.delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// read unmarshals the collection at key into v, leaving v untouched when the
// key is absent. Callers must hold the mutex.
func (s *Local) read(ctx context.Context, key string, v interface{}) error {
	_, err := s.readKey(ctx, key, v)
	return err
}

func (s *Local) readKey(ctx context.Context, key string, v interface{}) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM collections WHERE key = ?", key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Local) write(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Local) delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE key = ?", key)
	return err
}
