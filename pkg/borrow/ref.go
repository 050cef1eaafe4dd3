package borrow

// Ref is a shared borrow of a field. The borrow is registered when the Ref
// is created and removed by the first call to Release.
type Ref[T any] struct {
	value T
	state *byte
	field Field
	done  bool
}

// TryRef acquires a shared borrow of f and captures value() under it.
func TryRef[T any](state *byte, f Field, value func() T) (*Ref[T], error) {
	if err := Acquire(state, f); err != nil {
		return nil, err
	}
	return &Ref[T]{value: value(), state: state, field: f}, nil
}

// Value returns the borrowed value. It panics once the guard has been
// released or consumed by Map.
func (r *Ref[T]) Value() T {
	if r.done {
		panic("borrow: use of released Ref")
	}
	return r.value
}

func (r *Ref[T]) Field() Field { return r.field }

// Release gives up the borrow. Calls after the first are no-ops.
func (r *Ref[T]) Release() {
	if r == nil || r.done {
		return
	}
	r.done = true
	release(r.state, r.field)
}

// Map consumes orig and returns a guard over f(value) that carries the
// same borrow. The state byte is not touched.
func Map[T, U any](orig *Ref[T], f func(T) U) *Ref[U] {
	v := f(orig.Value())
	orig.done = true
	return &Ref[U]{value: v, state: orig.state, field: orig.field}
}

// FilterMap is Map with a fallible projection. On success the new guard is
// returned and orig is consumed; on failure orig is returned still holding
// its borrow. Exactly one of the results is non-nil.
func FilterMap[T, U any](orig *Ref[T], f func(T) (U, bool)) (*Ref[U], *Ref[T]) {
	v, ok := f(orig.Value())
	if !ok {
		return nil, orig
	}
	orig.done = true
	return &Ref[U]{value: v, state: orig.state, field: orig.field}, nil
}

// RefMut is an exclusive borrow of a field.
type RefMut[T any] struct {
	value T
	state *byte
	field Field
	done  bool
}

// TryRefMut acquires an exclusive borrow of f and captures value() under it.
func TryRefMut[T any](state *byte, f Field, value func() T) (*RefMut[T], error) {
	if err := AcquireMut(state, f); err != nil {
		return nil, err
	}
	return &RefMut[T]{value: value(), state: state, field: f}, nil
}

func (r *RefMut[T]) Value() T {
	if r.done {
		panic("borrow: use of released RefMut")
	}
	return r.value
}

func (r *RefMut[T]) Field() Field { return r.field }

func (r *RefMut[T]) Release() {
	if r == nil || r.done {
		return
	}
	r.done = true
	releaseMut(r.state, r.field)
}

func MapMut[T, U any](orig *RefMut[T], f func(T) U) *RefMut[U] {
	v := f(orig.Value())
	orig.done = true
	return &RefMut[U]{value: v, state: orig.state, field: orig.field}
}

func FilterMapMut[T, U any](orig *RefMut[T], f func(T) (U, bool)) (*RefMut[U], *RefMut[T]) {
	v, ok := f(orig.Value())
	if !ok {
		return nil, orig
	}
	orig.done = true
	return &RefMut[U]{value: v, state: orig.state, field: orig.field}, nil
}
