// Package form holds the in-memory state of one registration page view and
// notifies subscribers whenever it changes.
package form

import (
	"errors"
	"fmt"
	"sync"

	"nutriflow/models"
)

// Field names a single input on the registration form.
type Field string

const (
	FullName  Field = "full_name"
	Email     Field = "email"
	Password  Field = "password"
	Diet      Field = "diet"
	Allergies Field = "allergies"
	Goal      Field = "goal"
)

// Fields lists every form field in display order.
var Fields = []Field{FullName, Email, Password, Diet, Allergies, Goal}

var ErrUnknownField = errors.New("unknown form field")

// ParseField maps a wire name onto a Field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Values is the raw registration input. Nothing here is validated.
type Values struct {
	FullName  string
	Email     string
	Password  string
	Diet      models.Diet
	Allergies string
	Goal      string
}

// DefaultValues is what a fresh form shows.
func DefaultValues() Values {
	return Values{Diet: models.DefaultDiet}
}

// Get returns the current value of f.
func (v Values) Get(f Field) string {
	switch f {
	case FullName:
		return v.FullName
	case Email:
		return v.Email
	case Password:
		return v.Password
	case Diet:
		return string(v.Diet)
	case Allergies:
		return v.Allergies
	case Goal:
		return v.Goal
	}
	return ""
}

func (v *Values) set(f Field, value string) error {
	switch f {
	case FullName:
		v.FullName = value
	case Email:
		v.Email = value
	case Password:
		v.Password = value
	case Diet:
		v.Diet = models.Diet(value)
	case Allergies:
		v.Allergies = value
	case Goal:
		v.Goal = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
	return nil
}

// Snapshot is handed to subscribers after every change.
type Snapshot struct {
	Values  Values
	Status  string
	Version uint64
}

// State is the observable form state for one page view.
type State struct {
	mu      sync.RWMutex
	values  Values
	status  string
	version uint64
	subs    map[int]func(Snapshot)
	nextSub int
	closed  bool
	done    chan struct{}
}

// New returns a state holding the default values.
func New() *State {
	return &State{
		values: DefaultValues(),
		subs:   make(map[int]func(Snapshot)),
		done:   make(chan struct{}),
	}
}

// Values returns a copy of the current field values.
func (s *State) Values() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

// Status returns the last status message.
func (s *State) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Snapshot returns the current values, status and version together.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// SetField replaces the value of one field and leaves the others alone.
// Any string is accepted.
func (s *State) SetField(f Field, value string) error {
	return s.update(func() error { return s.values.set(f, value) })
}

// SetStatus replaces the status message.
func (s *State) SetStatus(msg string) {
	_ = s.update(func() error {
		s.status = msg
		return nil
	})
}

// Reset restores the default values and clears the status.
func (s *State) Reset() {
	_ = s.update(func() error {
		s.values = DefaultValues()
		s.status = ""
		return nil
	})
}

// Subscribe registers fn to be called after every change. The returned func
// removes the subscription.
func (s *State) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Watched reports whether anyone is subscribed, i.e. the page is still open.
func (s *State) Watched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs) > 0
}

// Close ends the page view. Subscribers are dropped and Done is closed.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.subs = make(map[int]func(Snapshot))
	close(s.done)
}

// Done is closed once the state has been closed.
func (s *State) Done() <-chan struct{} {
	return s.done
}

func (s *State) update(mutate func() error) error {
	s.mu.Lock()
	if err := mutate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.version++
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	// Notify outside the lock so subscribers may read the state back.
	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{Values: s.values, Status: s.status, Version: s.version}
}
