package nodes

import "reflect"

// Handle is the per-instance, per-method binding between a graph object
// and one of its registered computations — the Go equivalent of the
// original's GraphInstanceMethod. Calling a Handle evaluates (and memoizes)
// its node; Set/ClearSet/Overlay/ClearOverlay mutate it through the owning
// Registry, which enforces the same guards as direct Registry calls.
type Handle struct {
	registry *Registry
	object   interface{}
	method   *MethodDescriptor
}

// NewHandle binds method to object under registry. Bind is the usual
// entry point; NewHandle is exposed for callers building their own
// object-construction conventions.
func NewHandle(registry *Registry, object interface{}, method *MethodDescriptor) *Handle {
	return &Handle{registry: registry, object: object, method: method}
}

// Node returns (creating if necessary) the underlying node for args,
// for introspection.
func (h *Handle) Node(args ...interface{}) *Node {
	return h.registry.Lookup(h.object, h.method, args, true)
}

// Call evaluates the handle with args, computing through the registry and
// recording dependency edges against whichever node is currently active.
func (h *Handle) Call(args ...interface{}) (interface{}, error) {
	return h.registry.call(h.object, h.method, args)
}

// Set assigns value directly, or — if the method has a write delegate —
// rewrites the assignment into the delegate's returned NodeChange list and
// applies each of those instead.
func (h *Handle) Set(value interface{}, args ...interface{}) error {
	if h.method.DelegatesChanges() {
		changes, err := h.method.delegate(h.object, value, args)
		if err != nil {
			return err
		}
		for _, change := range changes {
			if err := h.registry.SetValue(change.node(h.registry), change.Value); err != nil {
				return err
			}
		}
		return nil
	}
	return h.registry.SetValue(h.Node(args...), value)
}

// ClearSet clears a previously set value.
func (h *Handle) ClearSet(args ...interface{}) error {
	return h.registry.ClearSet(h.Node(args...))
}

// Overlay applies a context-scoped override through the active context.
func (h *Handle) Overlay(value interface{}, args ...interface{}) error {
	return h.registry.OverlayValue(h.Node(args...), value)
}

// ClearOverlay withdraws a context-scoped override through the active
// context.
func (h *Handle) ClearOverlay(args ...interface{}) error {
	return h.registry.ClearOverlay(h.Node(args...))
}

// GraphObject is implemented by types that expose registered computations.
// GraphMethods returns the full set of descriptors that Bind should create
// handles for. Implementations normally build this slice once at package
// init and return the same slice every call.
type GraphObject interface {
	GraphMethods() []*MethodDescriptor
}

// ForbiddenInit is a marker interface a graph object type must not
// implement. Go has no metaclass to intercept "did this type define its
// own constructor", so this interface is the substitute: a type whose
// author deliberately marks it (by implementing DisallowedInit) is
// rejected at Bind time with ErrInvalidInitializer, the same way the
// original's GraphType metaclass rejected a subclass that defined
// __init__.
type ForbiddenInit interface {
	DisallowedInit()
}

// handleReceiver is implemented by *Handle and *TypedHandle[V] so Bind can
// wire a freshly-built Handle into a matching struct field by reflection,
// without the struct field's type needing a non-generic shape Bind could
// switch on directly.
type handleReceiver interface {
	receiveHandle(*Handle)
}

func (h *Handle) receiveHandle(other *Handle) { *h = *other }

// Bind produces one Handle per descriptor returned by object's
// GraphMethods, keyed by descriptor name, the same way the original's
// GraphObject.__init__ loop binds a GraphInstanceMethod for every
// GraphMethod found on the class. Returns ErrInvalidInitializer if object
// implements ForbiddenInit.
//
// Bind additionally wires each Handle into object's own field of the same
// name, if one exists and its address implements handleReceiver (a Handle
// or TypedHandle[V] field; a *Handle field is not wired) — the Go substitute for the original's
// self.B()-style cross-method calls, which relied on every
// GraphInstanceMethod living as a plain bound attribute on self. A graph
// object written in this idiom declares one field per registered method
// and calls through it from inside a sibling method's function body; Bind
// is what makes those fields usable before the object's own constructor
// returns.
func Bind(registry *Registry, object GraphObject) (map[string]*Handle, error) {
	if _, forbidden := object.(ForbiddenInit); forbidden {
		return nil, newError(KindInvalidInitializer, "graph object %T must not implement ForbiddenInit", object)
	}
	handles := make(map[string]*Handle)
	for _, method := range object.GraphMethods() {
		handle := NewHandle(registry, object, method)
		handles[method.Name()] = handle
		wireField(object, method.Name(), handle)
	}
	return handles, nil
}

// wireField looks up a field named name on the struct object points to and,
// if it's addressable and implements handleReceiver, hands it handle.
// Anything else — no such field, a field of an unrelated type, object not a
// pointer to struct — is silently skipped: field wiring is an opt-in
// convenience, not a requirement every GraphObject must satisfy.
func wireField(object interface{}, name string, handle *Handle) {
	v := reflect.ValueOf(object)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	field := v.Elem().FieldByName(name)
	if !field.IsValid() || !field.CanAddr() {
		return
	}
	receiver, ok := field.Addr().Interface().(handleReceiver)
	if !ok {
		return
	}
	receiver.receiveHandle(handle)
}

// SavedMethods returns the subset of object's registered computations
// flagged Settable and Serializable — the methods a serializer should
// extract when snapshotting object's state.
func SavedMethods(object GraphObject) []*MethodDescriptor {
	var saved []*MethodDescriptor
	for _, method := range object.GraphMethods() {
		if method.Flags().IsSaved() {
			saved = append(saved, method)
		}
	}
	return saved
}

// ToDict returns a mapping from saved-method name to current value,
// computed through the normal read path (and so honoring any active
// overlay), the Go equivalent of the original's GraphObject.toDict.
func ToDict(registry *Registry, object GraphObject) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	for _, method := range SavedMethods(object) {
		value, err := registry.call(object, method, nil)
		if err != nil {
			return nil, err
		}
		out[method.Name()] = value
	}
	return out, nil
}

// ObjectStore is the minimal persistence seam the engine needs: an opaque
// store of graph objects by path. No implementation is provided here —
// persistence is out of scope for this module — this interface only
// documents the extension point, mirroring the original's placeholder DB
// class (new/exists/read/readMany/write, all unimplemented).
type ObjectStore interface {
	Exists(path string) bool
	Read(path string) (GraphObject, error)
	ReadMany(paths []string) ([]GraphObject, error)
	Write(object GraphObject) error
}
