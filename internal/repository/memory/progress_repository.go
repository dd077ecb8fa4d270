package memory

import (
	"time"

	"trainers-ally-be/pkg/stream"

	"github.com/patrickmn/go-cache"
)

// ProgressRepository keeps the live progress handle of each in-flight
// generation, keyed by thread id. An unsealed handle doubles as the
// in-flight guard: a second generation against the same thread is rejected
// while one is still open, which serializes log appends per session.
type ProgressRepository struct {
	cache *cache.Cache
}

func NewProgressRepository() *ProgressRepository {
	// Sealed handles stay retrievable for a while so late consumers can
	// still read the final value; expired items are purged in the background.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ProgressRepository{
		cache: c,
	}
}

func (r *ProgressRepository) Save(threadID string, s *stream.Streamable) {
	r.cache.Set(threadID, s, cache.DefaultExpiration)
}

func (r *ProgressRepository) Get(threadID string) (*stream.Streamable, bool) {
	if x, found := r.cache.Get(threadID); found {
		return x.(*stream.Streamable), true
	}
	return nil, false
}

// InFlight reports whether the thread has an unsealed handle.
func (r *ProgressRepository) InFlight(threadID string) bool {
	s, found := r.Get(threadID)
	return found && !s.Sealed()
}

func (r *ProgressRepository) Delete(threadID string) {
	r.cache.Delete(threadID)
}
