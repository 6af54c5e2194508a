package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"concertlog/internal/concert"
)

// Memory keeps concerts and users in process memory. It backs offline mode
// when no database is configured, so nothing survives a restart.
type Memory struct {
	mu       sync.RWMutex
	concerts []concert.Record // insertion order
	users    map[string]memoryUser
	newID    func() string
}

type memoryUser struct {
	user User
	hash []byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]memoryUser),
		newID: uuid.NewString,
	}
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ListConcerts returns copies of every concert, newest first.
func (m *Memory) ListConcerts(_ context.Context) ([]concert.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := slices.Clone(m.concerts)
	if out == nil {
		out = []concert.Record{}
	}
	slices.SortStableFunc(out, func(a, b concert.Record) int {
		return strings.Compare(b.Date, a.Date)
	})
	return out, nil
}

// GetConcert loads one concert by ID.
func (m *Memory) GetConcert(_ context.Context, id string) (concert.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(id); i >= 0 {
		return m.concerts[i], nil
	}
	return concert.Record{}, ErrConcertNotFound
}

// CountConcerts returns the number of stored concerts.
func (m *Memory) CountConcerts(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.concerts), nil
}

// CreateConcert stores r under a new ID.
func (m *Memory) CreateConcert(ctx context.Context, r concert.Record) (concert.Record, error) {
	if err := ctx.Err(); err != nil {
		return concert.Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = m.newID()
	m.concerts = append(m.concerts, r)
	return r, nil
}

// CreateConcerts stores every record.
func (m *Memory) CreateConcerts(ctx context.Context, records []concert.Record) ([]concert.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]concert.Record, 0, len(records))
	for _, r := range records {
		r.ID = m.newID()
		stored = append(stored, r)
	}
	m.concerts = append(m.concerts, stored...)
	return stored, nil
}

// UpdateConcert overwrites the stored fields of r.ID.
func (m *Memory) UpdateConcert(_ context.Context, r concert.Record) (concert.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(r.ID)
	if i < 0 {
		return concert.Record{}, ErrConcertNotFound
	}
	m.concerts[i] = r
	return r, nil
}

// DeleteConcert removes a concert.
func (m *Memory) DeleteConcert(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return ErrConcertNotFound
	}
	m.concerts = slices.Delete(m.concerts, i, i+1)
	return nil
}

// CreateUser registers a user.
func (m *Memory) CreateUser(_ context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, errEmailPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mu := range m.users {
		if mu.user.Email == email {
			return User{}, ErrUserExists
		}
	}
	u := User{ID: m.newID(), Email: email, CreatedAt: time.Now().UTC()}
	m.users[u.ID] = memoryUser{user: u, hash: hash}
	return u, nil
}

// Authenticate validates credentials.
func (m *Memory) Authenticate(_ context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)

	m.mu.RLock()
	var found *memoryUser
	for _, mu := range m.users {
		if mu.user.Email == email {
			mu := mu
			found = &mu
			break
		}
	}
	m.mu.RUnlock()

	if found == nil {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(found.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return found.user, nil
}

// GetUser loads a user by ID.
func (m *Memory) GetUser(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mu, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return mu.user, nil
}

func (m *Memory) indexOf(id string) int {
	return slices.IndexFunc(m.concerts, func(r concert.Record) bool { return r.ID == id })
}
