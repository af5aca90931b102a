package auth

import (
	"context"
	"sync"
	"time"
)

// Revoker remembers logged-out token ids until the tokens would have expired.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type MemoryRevoker struct {
	mtx     sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (r *MemoryRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" || !until.After(r.now()) {
		return nil
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.revoked[tokenID] = until
	return nil
}

func (r *MemoryRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	until, ok := r.revoked[tokenID]
	return ok && until.After(r.now()), nil
}

// Prune drops entries whose tokens have expired and returns how many went.
func (r *MemoryRevoker) Prune(now time.Time) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	removed := 0
	for id, until := range r.revoked {
		if !until.After(now) {
			delete(r.revoked, id)
			removed++
		}
	}
	return removed
}

func (r *MemoryRevoker) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.revoked)
}
