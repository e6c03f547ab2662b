package nodes

import (
	"fmt"
	"reflect"

	"github.com/someahole/nodes/internal"
)

// Flags is a bitset over the per-method capabilities a registered
// computation can carry.
type Flags int

const (
	// Settable marks a node as writable via Handle.Set/ClearSet.
	Settable Flags = 1 << iota
	// Serializable marks a node's value as part of an object's exported
	// state (see SavedMethods and ToDict).
	Serializable
)

// Saved is the convenience union of Settable and Serializable: a graph
// method whose value is both user-assignable and worth persisting.
const Saved = Settable | Serializable

func (f Flags) IsSettable() bool     { return f&Settable != 0 }
func (f Flags) IsSerializable() bool { return f&Serializable != 0 }
func (f Flags) IsSaved() bool        { return f&Saved == Saved }

// WriteDelegateFunc rewrites a set operation on its owning node into a list
// of NodeChange records to apply instead. It runs outside of evaluation and
// is subject to the same mutation guards as a direct set.
type WriteDelegateFunc func(object interface{}, value interface{}, args []interface{}) ([]NodeChange, error)

// MethodDescriptor is the immutable metadata for a single registered
// computation. One MethodDescriptor is shared by every Node computed
// through it, the same way the original's GraphMethod is a single
// class-level descriptor shared by every GraphInstanceMethod bound to it.
type MethodDescriptor struct {
	name     string
	flags    Flags
	callable reflect.Value
	argsIn   []reflect.Type // the argument types the callable expects, after object/error
	delegate WriteDelegateFunc
}

// MethodOption configures a MethodDescriptor at registration time.
type MethodOption func(*MethodDescriptor)

// WithDelegate attaches a write delegate to a method: setting the bound
// handle calls the delegate instead of writing the node directly.
func WithDelegate(fn WriteDelegateFunc) MethodOption {
	return func(d *MethodDescriptor) { d.delegate = fn }
}

// NewMethod registers a computation. fn must be a function of the shape
// func(*O, args...) (V, error) or func(*O, args...) V; O is the graph
// object's underlying struct type. The signature is validated by
// reflection, the same technique schemabuilder.funcContext uses to
// validate GraphQL field resolvers before wrapping them.
func NewMethod(name string, flags Flags, fn interface{}, opts ...MethodOption) *MethodDescriptor {
	val := reflect.ValueOf(fn)
	typ := val.Type()
	if typ.Kind() != reflect.Func {
		panic(fmt.Sprintf("nodes: method %q: fn must be a function, got %s", name, typ))
	}
	if typ.NumIn() < 1 {
		panic(fmt.Sprintf("nodes: method %q: fn must take the graph object as its first argument", name))
	}
	if typ.NumOut() != 1 && typ.NumOut() != 2 {
		panic(fmt.Sprintf("nodes: method %q: fn must return (value) or (value, error)", name))
	}
	if typ.NumOut() == 2 && typ.Out(1) != reflect.TypeOf((*error)(nil)).Elem() {
		panic(fmt.Sprintf("nodes: method %q: fn's second return value must be error", name))
	}

	argsIn := make([]reflect.Type, typ.NumIn()-1)
	for i := 1; i < typ.NumIn(); i++ {
		argsIn[i-1] = typ.In(i)
	}

	d := &MethodDescriptor{
		name:     name,
		flags:    flags,
		callable: val,
		argsIn:   argsIn,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the registered computation's printable identifier.
func (d *MethodDescriptor) Name() string { return d.name }

// Flags returns the descriptor's capability bitset.
func (d *MethodDescriptor) Flags() Flags { return d.flags }

// DelegatesChanges reports whether setting this method is rewritten by a
// WriteDelegateFunc instead of writing the node directly.
func (d *MethodDescriptor) DelegatesChanges() bool { return d.delegate != nil }

// call invokes the underlying callable with the graph object and the
// argument tuple, returning (value, error). A fn without an error return
// always reports a nil error.
func (d *MethodDescriptor) call(object interface{}, args []interface{}) (interface{}, error) {
	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, reflect.ValueOf(object))
	for i, a := range args {
		if a == nil && i < len(d.argsIn) {
			in = append(in, reflect.Zero(d.argsIn[i]))
			continue
		}
		v := reflect.ValueOf(a)
		if i < len(d.argsIn) {
			pt := d.argsIn[i]
			if v.Type() != pt && internal.TypesIdenticalOrScalarAliases(v.Type(), pt) {
				v = v.Convert(pt)
			}
		}
		in = append(in, v)
	}

	out := d.callable.Call(in)
	value := out[0].Interface()
	if len(out) == 2 && !out[1].IsNil() {
		return value, out[1].Interface().(error)
	}
	return value, nil
}

// NodeChange is a pending rewrite of a set operation onto another node, as
// returned by a WriteDelegateFunc: instead of writing the node the user
// called Set on, the engine writes Value onto the node identified by
// (Object, Method, Args).
type NodeChange struct {
	Object interface{}
	Method *MethodDescriptor
	Args   []interface{}
	Value  interface{}
}

// node resolves the NodeChange's target, creating it if necessary.
func (c NodeChange) node(r *Registry) *Node {
	return r.Lookup(c.Object, c.Method, c.Args, true)
}
