package service_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

// memStore - хранилище в памяти для сценарных тестов сброса пароля.
type memStore struct {
	mu     sync.Mutex
	users  map[string]models.User
	resets map[uuid.UUID]models.PasswordReset
}

func newMemStore(users ...models.User) *memStore {
	s := &memStore{
		users:  make(map[string]models.User),
		resets: make(map[uuid.UUID]models.PasswordReset),
	}
	for _, u := range users {
		s.users[u.Email] = u
	}
	return s
}

func (s *memStore) Create(_ context.Context, name, email, hash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return models.User{}, serr.ErrAlreadyExists
	}
	u := models.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: hash, Role: models.RoleUser}
	s.users[email] = u
	return u, nil
}

func (s *memStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return models.User{}, serr.ErrNotFound
	}
	return u, nil
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, serr.ErrNotFound
}

func (s *memStore) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, u := range s.users {
		if u.ID == id {
			u.Role = role
			s.users[email] = u
			return nil
		}
	}
	return serr.ErrNotFound
}

func (s *memStore) Upsert(_ context.Context, userID uuid.UUID, codeHash []byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[userID] = models.PasswordReset{UserID: userID, CodeHash: codeHash, ExpiresAt: expiresAt}
	return nil
}

func (s *memStore) GetByUserID(_ context.Context, userID uuid.UUID) (models.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.resets[userID]
	if !ok {
		return models.PasswordReset{}, serr.ErrNoPendingRequest
	}
	return pr, nil
}

func (s *memStore) ConsumeAndSetPassword(_ context.Context, userID uuid.UUID, codeHash []byte, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.resets[userID]
	if !ok || !bytes.Equal(pr.CodeHash, codeHash) {
		return serr.ErrNoPendingRequest
	}
	delete(s.resets, userID)
	for email, u := range s.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			s.users[email] = u
			return nil
		}
	}
	return serr.ErrNotFound
}

func (s *memStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, pr := range s.resets {
		if pr.Expired(now) {
			delete(s.resets, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) pending(userID uuid.UUID) (models.PasswordReset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.resets[userID]
	return pr, ok
}

var errSMTPAuth = errors.New("smtp: 535 authentication failed")

// memMailer запоминает отправленные коды.
type memMailer struct {
	mu   sync.Mutex
	sent map[string][]string
	fail bool
}

func newMemMailer() *memMailer {
	return &memMailer{sent: make(map[string][]string)}
}

func (m *memMailer) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errSMTPAuth
	}
	m.sent[to] = append(m.sent[to], code)
	return nil
}

func (m *memMailer) last(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	codes := m.sent[to]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

// fakeClock - управляемое время.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
