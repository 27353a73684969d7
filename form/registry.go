package form

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	state    *State
	lastSeen time.Time
}

// Registry keeps the live form states keyed by page-view id.
type Registry struct {
	mu    sync.Mutex
	forms map[string]*entry
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		forms: make(map[string]*entry),
		now:   time.Now,
	}
}

// Create starts a new page view and returns its id.
func (r *Registry) Create() (string, *State) {
	id := uuid.NewString()
	st := New()

	r.mu.Lock()
	r.forms[id] = &entry{state: st, lastSeen: r.now()}
	r.mu.Unlock()
	return id, st
}

// Get looks up a form and marks it as seen.
func (r *Registry) Get(id string) (*State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.forms[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.state, true
}

// Remove discards a form and closes its state.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	e, ok := r.forms[id]
	delete(r.forms, id)
	r.mu.Unlock()

	if ok {
		e.state.Close()
	}
	return ok
}

// Sweep removes every form not seen for longer than idle and returns how many
// were dropped. A form with a live subscriber counts as seen.
func (r *Registry) Sweep(idle time.Duration) int {
	now := r.now()
	cutoff := now.Add(-idle)

	r.mu.Lock()
	var stale []*State
	for id, e := range r.forms {
		if e.state.Watched() {
			e.lastSeen = now
			continue
		}
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.state)
			delete(r.forms, id)
		}
	}
	r.mu.Unlock()

	for _, st := range stale {
		st.Close()
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}
