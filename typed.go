package nodes

// TypedHandle wraps a Handle with a generic return type, so call sites
// don't need a type assertion on every read. This is the typed edge over
// the untyped core the same way pumped-fn's Controller[T] wraps an
// untyped Scope entry: the Registry/Node/Handle machinery stores
// interface{} throughout (it has to — one Registry interns nodes across
// arbitrarily many unrelated object/method/value types), and a thin
// generic layer recovers type safety at the call site.
type TypedHandle[V any] struct {
	*Handle
}

// Typed wraps h for type-safe access to a V-valued computation.
func Typed[V any](h *Handle) TypedHandle[V] {
	return TypedHandle[V]{Handle: h}
}

// receiveHandle lets Bind wire a TypedHandle[V] struct field the same way
// it wires a plain Handle field, by reflecting on handleReceiver.
func (t *TypedHandle[V]) receiveHandle(h *Handle) { t.Handle = h }

// Get evaluates the handle and type-asserts the result to V.
func (t TypedHandle[V]) Get(args ...interface{}) (V, error) {
	var zero V
	value, err := t.Call(args...)
	if err != nil {
		return zero, err
	}
	v, ok := value.(V)
	if !ok {
		return zero, newError(KindTypeMismatch, "nodes: value %v is not of type %T", value, zero)
	}
	return v, nil
}
