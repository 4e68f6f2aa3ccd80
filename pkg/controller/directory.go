package controller

import (
	"sync"
	"time"

	"github.com/goliatone/go-alohomora/pkg/model"
)

// DirectoryState is the lifecycle of the borrower list behind the loan form.
type DirectoryState int

const (
	// DirectoryLoading is the zero state: nothing fetched yet, or the fetch
	// failed.
	DirectoryLoading DirectoryState = iota
	// DirectoryReady holds a fetched list, possibly empty.
	DirectoryReady
)

func (s DirectoryState) String() string {
	if s == DirectoryReady {
		return "ready"
	}
	return "loading"
}

// Directory is an immutable snapshot of the borrowers known to the loan form.
type Directory struct {
	state     DirectoryState
	borrowers []model.Borrower
	err       error
	fetchedAt time.Time
}

// ReadyDirectory wraps a fetched borrower list.
func ReadyDirectory(borrowers []model.Borrower) Directory {
	list := make([]model.Borrower, len(borrowers))
	copy(list, borrowers)
	return Directory{state: DirectoryReady, borrowers: list, fetchedAt: time.Now()}
}

// FailedDirectory records a fetch failure. The directory stays loading.
func FailedDirectory(err error) Directory {
	return Directory{state: DirectoryLoading, err: err}
}

func (d Directory) State() DirectoryState { return d.state }
func (d Directory) Ready() bool           { return d.state == DirectoryReady }
func (d Directory) Err() error            { return d.err }
func (d Directory) FetchedAt() time.Time  { return d.fetchedAt }
func (d Directory) Len() int              { return len(d.borrowers) }

// Borrowers returns a copy of the list, nil while loading.
func (d Directory) Borrowers() []model.Borrower {
	if !d.Ready() {
		return nil
	}
	out := make([]model.Borrower, len(d.borrowers))
	copy(out, d.borrowers)
	return out
}

// Find looks up a borrower by id. Nothing matches an empty id or a
// directory that is still loading.
func (d Directory) Find(id string) (model.Borrower, bool) {
	if id == "" || !d.Ready() {
		return model.Borrower{}, false
	}
	for _, b := range d.borrowers {
		if b.ID.String() == id {
			return b, true
		}
	}
	return model.Borrower{}, false
}

// Directories remembers the borrower list each rendered loan form was built
// from, keyed by the form's submission token. Entries expire maxAge after
// their fetch.
type Directories struct {
	mu      sync.Mutex
	maxAge  time.Duration
	now     func() time.Time
	entries map[string]Directory
}

// NewDirectories creates an empty store.
func NewDirectories(maxAge time.Duration) *Directories {
	return &Directories{
		maxAge:  maxAge,
		now:     time.Now,
		entries: make(map[string]Directory),
	}
}

// Remember binds dir to token. Loading directories and empty tokens are not
// kept; the submit falls back to a fresh fetch for them.
func (s *Directories) Remember(token string, dir Directory) {
	if s == nil || token == "" || !dir.Ready() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for t, d := range s.entries {
		if s.expired(d, now) {
			delete(s.entries, t)
		}
	}
	s.entries[token] = dir
}

// Lookup returns the directory the form carrying token was rendered with.
func (s *Directories) Lookup(token string) (Directory, bool) {
	if s == nil || token == "" {
		return Directory{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, ok := s.entries[token]
	if !ok {
		return Directory{}, false
	}
	if s.expired(dir, s.now()) {
		delete(s.entries, token)
		return Directory{}, false
	}
	return dir, true
}

// Len reports remembered forms.
func (s *Directories) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Directories) expired(d Directory, now time.Time) bool {
	return s.maxAge > 0 && now.Sub(d.FetchedAt()) >= s.maxAge
}
