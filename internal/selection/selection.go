// Package selection keeps the admin's currently selected header and footer in
// the session. Each selection is a nullable record plus a loading flag.
package selection

import (
	"errors"
	"fmt"

	"github.com/gin-contrib/sessions"
)

// State is what the admin UI binds to.
type State[T any] struct {
	Record  *T   `json:"record"`
	Loading bool `json:"loading"`
}

// Loader fetches the record for an id.
type Loader[T any] func(id uint) (*T, error)

// Store resolves one kind of selection from the session.
type Store[T any] struct {
	key      string
	load     Loader[T]
	notFound error
}

// NewStore builds a store saving its id under sessionKey. Loads failing with
// notFound clear the stale selection instead of failing.
func NewStore[T any](sessionKey string, load Loader[T], notFound error) *Store[T] {
	return &Store[T]{key: sessionKey, load: load, notFound: notFound}
}

// Pending is the state shown while a selection is being resolved.
func Pending[T any](previous *T) State[T] {
	return State[T]{Record: previous, Loading: true}
}

// SelectedID returns the stored id, or 0 when nothing is selected.
func (s *Store[T]) SelectedID(session sessions.Session) uint {
	switch v := session.Get(s.key).(type) {
	case uint:
		return v
	case int:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}

// Current resolves the stored selection.
func (s *Store[T]) Current(session sessions.Session) (State[T], error) {
	id := s.SelectedID(session)
	if id == 0 {
		return State[T]{}, nil
	}
	return s.resolve(session, id)
}

// Select stores id and returns the resolved record.
func (s *Store[T]) Select(session sessions.Session, id uint) (State[T], error) {
	record, err := s.load(id)
	if err != nil {
		return Pending[T](nil), err
	}

	session.Set(s.key, id)
	if err := session.Save(); err != nil {
		return Pending(record), fmt.Errorf("save selection: %w", err)
	}
	return State[T]{Record: record}, nil
}

// Clear drops the selection.
func (s *Store[T]) Clear(session sessions.Session) (State[T], error) {
	session.Delete(s.key)
	if err := session.Save(); err != nil {
		return State[T]{}, fmt.Errorf("save selection: %w", err)
	}
	return State[T]{}, nil
}

func (s *Store[T]) resolve(session sessions.Session, id uint) (State[T], error) {
	record, err := s.load(id)
	if err != nil {
		if s.notFound != nil && errors.Is(err, s.notFound) {
			return s.Clear(session)
		}
		return Pending[T](nil), err
	}
	return State[T]{Record: record}, nil
}
