package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	tripper "github.com/koscakluka/tripper/core"
	gocache "github.com/patrickmn/go-cache"
)

// session is one chat history. mu serializes requests on the same session.
type session struct {
	mu   sync.Mutex
	conv *tripper.Conversation
}

// sessionStore keeps sessions in memory and forgets them after ttl without
// use.
type sessionStore struct {
	ttl   time.Duration
	cache *gocache.Cache
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:   ttl,
		cache: gocache.New(ttl, ttl/2),
	}
}

func (s *sessionStore) create() string {
	id := uuid.NewString()
	s.cache.Set(id, &session{conv: tripper.NewConversation()}, s.ttl)
	return id
}

// get returns the session and extends its lifetime.
func (s *sessionStore) get(id string) (*session, bool) {
	cached, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	sess := cached.(*session)
	s.cache.Set(id, sess, s.ttl)
	return sess, true
}

func (s *sessionStore) delete(id string) bool {
	if _, ok := s.cache.Get(id); !ok {
		return false
	}
	s.cache.Delete(id)
	return true
}

func (s *sessionStore) count() int {
	return s.cache.ItemCount()
}
