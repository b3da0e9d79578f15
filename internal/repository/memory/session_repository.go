package memory

import (
	"time"

	"docchat-be/pkg/chat"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps chat sessions in process memory. A session expires
// ttl after it was saved, together with the token issued for it.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
		ttl:   ttl,
	}
}

func (r *SessionRepository) TTL() time.Duration {
	return r.ttl
}

func (r *SessionRepository) Save(session *chat.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

// Get returns the session. Reads do not extend its lifetime.
func (r *SessionRepository) Get(sessionID string) (*chat.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*chat.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) bool {
	_, found := r.cache.Get(sessionID)
	r.cache.Delete(sessionID)
	return found
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

// OnEvicted registers fn to run when a session expires or is deleted.
func (r *SessionRepository) OnEvicted(fn func(sessionID string)) {
	r.cache.OnEvicted(func(key string, _ interface{}) {
		fn(key)
	})
}
