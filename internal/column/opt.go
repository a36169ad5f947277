package column

// Opt is an optional value. The zero Opt is absent.
// Fields are exported so that codecs can serialise it directly.
type Opt[T any] struct {
	Val   T
	Valid bool
}

// Some returns a present Opt.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Val: v, Valid: true}
}

// None returns an absent Opt.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.Val, o.Valid
}

// Or returns the value when present and def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.Valid {
		return o.Val
	}
	return def
}
