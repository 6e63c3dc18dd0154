// Package scene holds the editor's object collection: an ordered, flat
// list of self-describing cad.Objects with snapshot reads, plus scene file
// loading and saving.
package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/chazu/facet/pkg/cad"
)

var (
	ErrNotFound      = errors.New("scene: object not found")
	ErrDuplicateID   = errors.New("scene: duplicate object id")
	ErrImmutableType = errors.New("scene: object type and id cannot change")
)

// Store is a mutable object collection safe for concurrent use. Readers
// always receive deep copies, so exporters can work on a snapshot while
// editing continues.
type Store struct {
	mu      sync.RWMutex
	objects []cad.Object
	factory *cad.Factory
}

// NewStore returns an empty store. A nil factory uses cad.NewFactory().
func NewStore(f *cad.Factory) *Store {
	if f == nil {
		f = cad.NewFactory()
	}
	return &Store{factory: f}
}

// Add creates a default object of kind, named after the number of objects
// of that kind already present, and appends it.
func (s *Store) Add(kind cad.PrimitiveType) cad.Object {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := lo.CountBy(s.objects, func(o cad.Object) bool { return o.Type == kind })
	obj := s.factory.Create(kind, count)
	s.objects = append(s.objects, obj)
	return obj.Clone()
}

// Append adds a copy of obj at the end of the collection.
func (s *Store) Append(obj cad.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, ok := s.find(obj.ID); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, obj.ID)
	}
	s.objects = append(s.objects, obj.Clone())
	return nil
}

// Get returns a copy of the object with the given id.
func (s *Store) Get(id string) (cad.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, _, ok := s.find(id)
	if !ok {
		return cad.Object{}, false
	}
	return obj.Clone(), true
}

// Update edits an object in place through fn. fn works on a copy that is
// committed only if it keeps the object's id and type.
func (s *Store) Update(id string, fn func(*cad.Object)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, i, ok := s.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	edited := obj.Clone()
	fn(&edited)
	if edited.ID != obj.ID || edited.Type != obj.Type {
		return fmt.Errorf("%w: %s", ErrImmutableType, id)
	}
	s.objects[i] = edited
	return nil
}

// Remove deletes the object with the given id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, i, ok := s.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	return nil
}

// Len returns the number of objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Snapshot returns a deep copy of the collection in order. An empty store
// yields an empty, non-nil slice.
func (s *Store) Snapshot() []cad.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.objects) == 0 {
		return []cad.Object{}
	}
	return cad.CloneAll(s.objects)
}

// Counts returns the number of objects per kind.
func (s *Store) Counts() map[cad.PrimitiveType]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.CountValuesBy(s.objects, func(o cad.Object) cad.PrimitiveType { return o.Type })
}

// Replace swaps the whole collection for a copy of objects.
func (s *Store) Replace(objects []cad.Object) error {
	if dups := lo.FindDuplicatesBy(objects, func(o cad.Object) string { return o.ID }); len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, dups[0].ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = cad.CloneAll(objects)
	return nil
}

func (s *Store) find(id string) (cad.Object, int, bool) {
	return lo.FindIndexOf(s.objects, func(o cad.Object) bool { return o.ID == id })
}
