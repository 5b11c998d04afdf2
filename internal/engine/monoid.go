package engine

// Monoid describes an associative binary operation with a two-sided
// identity element, used to fold segment tree leaves. Combine must not
// assume commutativity: callers always pass the left-subtree value as a
// and the right-subtree value as b, so a non-commutative instance (e.g.
// string concatenation) still produces the correct in-order fold.
type Monoid[T any] interface {
	Empty() T
	Combine(a, b T) T
}

// IntSum is the Monoid instance used by the segment tree in this package:
// non-negative integer addition under zero.
type IntSum struct{}

func (IntSum) Empty() int { return 0 }

func (IntSum) Combine(a, b int) int { return a + b }
