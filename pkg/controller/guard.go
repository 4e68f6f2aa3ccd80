package controller

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInFlight is returned while a submission with the same token runs.
	ErrInFlight = errors.New("controller: submission already in flight")
	// ErrAlreadySubmitted is returned for a token that already succeeded.
	ErrAlreadySubmitted = errors.New("controller: submission already accepted")
)

// NewSubmissionToken returns a token for one rendered form.
func NewSubmissionToken() string {
	return uuid.NewString()
}

type guardEntry struct {
	inFlight bool
	expires  time.Time
}

// Guard rejects a second submission of the same rendered form while the
// first is pending, and after it succeeded for ttl. A failed submission
// releases its token so the user can retry.
type Guard struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]guardEntry
}

// NewGuard creates a guard remembering accepted tokens for ttl.
func NewGuard(ttl time.Duration) *Guard {
	return &Guard{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]guardEntry),
	}
}

// Begin claims token. An empty token is never guarded.
func (g *Guard) Begin(token string) error {
	if g == nil || token == "" {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.prune(now)

	if entry, ok := g.entries[token]; ok {
		if entry.inFlight {
			return ErrInFlight
		}
		return ErrAlreadySubmitted
	}
	g.entries[token] = guardEntry{inFlight: true}
	return nil
}

// Finish releases token. Accepted tokens stay blocked for the ttl.
func (g *Guard) Finish(token string, succeeded bool) {
	if g == nil || token == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !succeeded || g.ttl <= 0 {
		delete(g.entries, token)
		return
	}
	g.entries[token] = guardEntry{expires: g.now().Add(g.ttl)}
}

// Len reports tracked tokens.
func (g *Guard) Len() int {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

func (g *Guard) prune(now time.Time) {
	for token, entry := range g.entries {
		if !entry.inFlight && !now.Before(entry.expires) {
			delete(g.entries, token)
		}
	}
}
