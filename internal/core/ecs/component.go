package ecs

// Store is a generic id-indexed store that remembers insertion order.
// Iteration order is deterministic, which the simulation relies on for
// seed-reproducible games. No reflect, no interface{}.
type Store[T any] struct {
	data  map[EntityID]*T
	order []EntityID
}

func NewStore[T any](capacity int) *Store[T] {
	return &Store[T]{
		data:  make(map[EntityID]*T, capacity),
		order: make([]EntityID, 0, capacity),
	}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.order = append(s.order, id)
	}
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; !ok {
		return
	}
	delete(s.data, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// Each visits entries in insertion order. fn may remove entries, including the
// one being visited; entries removed before their turn are skipped.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	ids := make([]EntityID, len(s.order))
	copy(ids, s.order)
	for _, id := range ids {
		if c, ok := s.data[id]; ok {
			fn(id, c)
		}
	}
}

// Clear drops every entry.
func (s *Store[T]) Clear() {
	clear(s.data)
	s.order = s.order[:0]
}
