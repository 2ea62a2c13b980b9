package app

import (
	"errors"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/mbolis/quick-survey-console/draft"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftStore keeps the drafts of the open authoring sessions in memory.
// Nothing is persisted: a restart discards every draft.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[string]*Session
}

// Session is one authoring session. Its mutex serializes every access to
// the draft.
type Session struct {
	ID string

	mu    sync.Mutex
	draft *draft.Draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: map[string]*Session{}}
}

func (s *DraftStore) Create() *Session {
	sess := &Session{
		ID:    uuid.Must(uuid.NewV4()).String(),
		draft: draft.New(),
	}

	s.mu.Lock()
	s.drafts[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

func (s *DraftStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return sess, nil
}

func (s *DraftStore) Discard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[id]; !ok {
		return ErrDraftNotFound
	}
	delete(s.drafts, id)
	return nil
}

func (s *DraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

// Update runs fn on the draft while holding the session lock.
func (sess *Session) Update(fn func(d *draft.Draft) error) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.draft)
}

// Snapshot returns a deep copy of the draft.
func (sess *Session) Snapshot() *draft.Draft {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.draft.Clone()
}
