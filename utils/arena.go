package utils

// Arena hands out zeroed scratch slices for the duration of one assembly pass.
// Reset releases everything at once; slices must not be retained past Reset.
type Arena[T Scalar] struct {
	buf  []T
	used int
}

func NewArena[T Scalar](capacity int) *Arena[T] {
	return &Arena[T]{buf: make([]T, capacity)}
}

func (a *Arena[T]) Alloc(n int) (s []T) {
	if a.used+n > len(a.buf) {
		// Outstanding slices keep the old buffer alive
		newCap := 2 * (len(a.buf) + n)
		a.buf = make([]T, newCap)
		a.used = 0
	}
	s = a.buf[a.used : a.used+n : a.used+n]
	a.used += n
	var zero T
	for i := range s {
		s[i] = zero
	}
	return
}

func (a *Arena[T]) Reset() { a.used = 0 }

// InUse returns the number of elements handed out since the last Reset
func (a *Arena[T]) InUse() int { return a.used }
