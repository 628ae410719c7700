package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

// memoryStore mirrors the SQL store: lookups filter on the full scope plus code
// and transitions are compare-and-swap on status under one mutex.
type memoryStore struct {
	mu      sync.Mutex
	seq     int
	records map[string]*entity.Record
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]*entity.Record{}}
}

func (m *memoryStore) Insert(_ context.Context, in entity.NewRecord) (*entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	m.seq++
	rec := &entity.Record{
		ID:        fmt.Sprintf("otp-%06d", m.seq),
		Scope:     in.Scope,
		Code:      in.Code,
		Status:    entity.StatusPending,
		CreatedAt: in.CreatedAt,
		ExpiresAt: in.ExpiresAt,
	}
	m.records[rec.ID] = rec

	out := *rec
	return &out, nil
}

func (m *memoryStore) FindLatestPending(_ context.Context, scope entity.Scope, code string) (*entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	var latest *entity.Record
	for _, rec := range m.records {
		if rec.Scope != scope || rec.Code != code || rec.Status != entity.StatusPending {
			continue
		}
		if latest == nil ||
			rec.CreatedAt.After(latest.CreatedAt) ||
			(rec.CreatedAt.Equal(latest.CreatedAt) && rec.ID > latest.ID) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, goerror.ErrNotFound
	}

	out := *latest
	return &out, nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (*entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	rec, ok := m.records[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	out := *rec
	return &out, nil
}

func (m *memoryStore) transition(id string, to entity.Status, at *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	rec, ok := m.records[id]
	if !ok || !rec.Status.CanTransition(to) {
		return entity.ErrAlreadyTerminal
	}
	rec.Status = to
	rec.VerifiedAt = at
	return nil
}

func (m *memoryStore) MarkExpired(_ context.Context, id string) error {
	return m.transition(id, entity.StatusExpired, nil)
}

func (m *memoryStore) MarkVerified(_ context.Context, id string, at time.Time) error {
	return m.transition(id, entity.StatusVerified, &at)
}

func (m *memoryStore) ExpireStale(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return 0, m.err
	}

	var n int64
	for _, rec := range m.records {
		if rec.Status == entity.StatusPending && rec.ExpiresAt.Before(before) {
			rec.Status = entity.StatusExpired
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) status(id string) entity.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id].Status
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []usecase.OTPIssuedEvent
	err    error
}

func (f *fakePublisher) PublishOTPIssued(_ context.Context, msg usecase.OTPIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, msg)
	return f.err
}

func (f *fakePublisher) last() usecase.OTPIssuedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

type fakeTenant struct {
	members map[string]string // user id -> organization id
	err     error
}

func (f fakeTenant) IsMember(_ context.Context, userID, organizationID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.members[userID] == organizationID, nil
}

// sequenceCode hands out fixed codes in order.
type sequenceCode struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (s *sequenceCode) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return "", s.err
	}
	if len(s.codes) == 0 {
		return "", errors.New("sequence exhausted")
	}
	code := s.codes[0]
	s.codes = s.codes[1:]
	return code, nil
}
