package memory

import (
	"time"

	"ai-supportdesk-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// SessionCache is a read-through cache in front of the contact_sessions
// table. Entries are short lived so a sliding-expiry refresh written by
// another node becomes visible quickly.
type SessionCache struct {
	cache *cache.Cache
}

func NewSessionCache() *SessionCache {
	c := cache.New(1*time.Minute, 5*time.Minute)
	return &SessionCache{
		cache: c,
	}
}

func (r *SessionCache) Save(session *entity.ContactSession) {
	r.cache.Set(session.Id.String(), session, cache.DefaultExpiration)
}

func (r *SessionCache) Get(sessionId string) (*entity.ContactSession, bool) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*entity.ContactSession), true
	}
	return nil, false
}

func (r *SessionCache) Delete(sessionId string) {
	r.cache.Delete(sessionId)
}
