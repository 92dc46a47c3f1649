package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/store"
)

// fixedClock returns the same instant on every call. Tests mutate now to
// move time forward.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// fakeTransactor runs the function inline with a nil transaction; the fake
// stores ignore it.
type fakeTransactor struct {
	err error
}

func (t *fakeTransactor) InTransaction(ctx context.Context, fn store.TxFn) error {
	if t.err != nil {
		return t.err
	}
	return fn(ctx, nil)
}

// fakeSessionStore is an in-memory store.LearningSessionStore. Any of the
// err* fields, when set, is returned instead of touching the map.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.LearningSession

	errCreate error
	errGet    error
	errClose  error
	errFind   error

	lastFilter store.SessionFilter
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*domain.LearningSession)}
}

func (s *fakeSessionStore) Create(ctx context.Context, session *domain.LearningSession) error {
	if s.errCreate != nil {
		return s.errCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *fakeSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningSession, error) {
	if s.errGet != nil {
		return nil, s.errGet
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *fakeSessionStore) Close(
	ctx context.Context,
	id uuid.UUID,
	completedAt time.Time,
	durationSeconds int,
) (*domain.LearningSession, error) {
	if s.errClose != nil {
		return nil, s.errClose
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	// Conditional write: already-closed rows are returned untouched, exactly
	// like the SQL implementation's read-back.
	if !session.IsCompleted {
		if err := session.Close(completedAt, durationSeconds); err != nil {
			return nil, err
		}
	}
	copied := *session
	return &copied, nil
}

func (s *fakeSessionStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.SessionFilter,
) ([]*domain.LearningSession, error) {
	if s.errFind != nil {
		return nil, s.errFind
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = filter

	var result []*domain.LearningSession
	for _, session := range s.sessions {
		if session.UserID != userID {
			continue
		}
		if filter.CompletedOnly && !session.IsCompleted {
			continue
		}
		if filter.ContentType != nil && session.ContentType != *filter.ContentType {
			continue
		}
		if filter.CompletedFrom != nil {
			if session.CompletedAt == nil || session.CompletedAt.Before(*filter.CompletedFrom) {
				continue
			}
		}
		if filter.CompletedTo != nil {
			if session.CompletedAt == nil || !session.CompletedAt.Before(*filter.CompletedTo) {
				continue
			}
		}
		copied := *session
		result = append(result, &copied)
	}
	return result, nil
}

// fakeRecordStore is an in-memory store.LearningRecordStore.
type fakeRecordStore struct {
	mu      sync.Mutex
	records []*domain.LearningRecord

	errCreate error
	errGet    error
	errFind   error
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{}
}

func (s *fakeRecordStore) Create(ctx context.Context, record *domain.LearningRecord) error {
	if s.errCreate != nil {
		return s.errCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records = append(s.records, &copied)
	return nil
}

func (s *fakeRecordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningRecord, error) {
	if s.errGet != nil {
		return nil, s.errGet
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.ID == id {
			copied := *record
			return &copied, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (s *fakeRecordStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.RecordFilter,
) ([]*domain.LearningRecord, error) {
	if s.errFind != nil {
		return nil, s.errFind
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.LearningRecord
	for _, record := range s.records {
		if record.UserID != userID {
			continue
		}
		if filter.ScoredOnly && record.IsCorrect == nil {
			continue
		}
		if len(filter.SessionIDs) > 0 {
			if record.SessionID == nil || !containsID(filter.SessionIDs, *record.SessionID) {
				continue
			}
		}
		copied := *record
		result = append(result, &copied)
	}
	return result, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// fakeStreakStore is an in-memory store.StreakStore. WithTx returns the same
// instance; fake state needs no transaction isolation.
type fakeStreakStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]*domain.StreakState

	errGet    error
	errCreate error
	errUpdate error

	createCalls int
	updateCalls int
}

func newFakeStreakStore() *fakeStreakStore {
	return &fakeStreakStore{states: make(map[uuid.UUID]*domain.StreakState)}
}

func (s *fakeStreakStore) Get(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error) {
	if s.errGet != nil {
		return nil, s.errGet
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[userID]
	if !ok {
		return nil, store.ErrStreakNotFound
	}
	copied := *state
	return &copied, nil
}

func (s *fakeStreakStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error) {
	return s.Get(ctx, userID)
}

func (s *fakeStreakStore) Create(ctx context.Context, state *domain.StreakState) error {
	if s.errCreate != nil {
		return s.errCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if _, ok := s.states[state.UserID]; ok {
		return store.ErrStreakExists
	}
	copied := *state
	s.states[state.UserID] = &copied
	return nil
}

func (s *fakeStreakStore) Update(ctx context.Context, state *domain.StreakState) error {
	if s.errUpdate != nil {
		return s.errUpdate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if _, ok := s.states[state.UserID]; !ok {
		return store.ErrStreakNotFound
	}
	copied := *state
	s.states[state.UserID] = &copied
	return nil
}

func (s *fakeStreakStore) WithTx(tx *sql.Tx) store.StreakStore {
	return s
}
