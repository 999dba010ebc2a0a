package tree

// Signal is a synchronous, ordered list of subscribers.
type Signal[T any] struct {
	next int
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe adds fn and returns a function that removes it again.
func (s *Signal[T]) Subscribe(fn func(T)) func() {
	s.next++
	id := s.next
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every subscriber in subscription order before returning.
func (s *Signal[T]) Emit(v T) {
	subs := s.subs
	for _, sub := range subs {
		sub.fn(v)
	}
}

func (s *Signal[T]) Len() int {
	return len(s.subs)
}

func (s *Signal[T]) reset() {
	s.subs = nil
}
