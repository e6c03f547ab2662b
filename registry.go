package nodes

import "github.com/someahole/nodes/internal"

// nodeKey uniquely identifies a Node by object identity, method identity,
// and the argument tuple. Object identity is whatever comparable value the
// caller passes as object — normally a pointer to the graph object's
// underlying struct, so two handles to the same instance collide on the
// same key. Method identity is the descriptor's own pointer, since one
// descriptor is shared by every instance's bound handle. argsKey turns the
// variadic argument slice into a comparable fixed-size array via
// internal.ToArray, the same conversion used to key argument-dependent
// caches by value rather than by slice identity.
type nodeKey struct {
	object  interface{}
	method  *MethodDescriptor
	argsKey interface{}
}

func argsKey(args []interface{}) interface{} {
	return internal.ToArray(args)
}

// Registry is the graph: it uniquely interns nodes by identity, tracks the
// currently-evaluating node, and holds the active context stack pointer.
//
// Registry is not safe for concurrent use. Its only concurrency discipline
// is the no-mutation-during-computation check against the active node,
// which assumes a single goroutine drives evaluation and mutation.
type Registry struct {
	nodes map[nodeKey]*Node

	// activeChain is the stack of nodes currently being computed,
	// topmost last. Its contents also drive cycle detection: a read of a
	// node already present anywhere in the chain is a re-entrant read.
	activeChain []*Node

	activeContext *Context

	logger        Logger
	detectCycles  bool
	recoverPanics bool

	onInvalidate []func(*Node)
}

// RegistryOption configures a Registry at construction time.
type RegistryOption func(*Registry)

// WithLogger installs a Logger that receives Debug-level trace events for
// compute, invalidate, set, and overlay apply/withdraw.
func WithLogger(l Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// WithCycleDetection enables or disables the EvaluationCycle check
// performed on every read (on by default). Disabling it trades a
// RuntimeError-shaped guard for the original's documented open behavior —
// an unchecked re-entrant read recurses until Go's own stack-overflow
// crash, which is never desirable outside of benchmarking the guard's
// overhead.
func WithCycleDetection(enabled bool) RegistryOption {
	return func(r *Registry) { r.detectCycles = enabled }
}

// WithPanicRecovery enables or disables recovering a panic raised by a
// method's callable during ReadValue (on by default). When enabled, such a
// panic is converted into a KindPanic error instead of crashing the
// process, matching spec.md §7's "errors surfaced immediately to the
// caller" policy. Disabling it restores the original's documented
// open behavior — a panic is the caller's problem to debug directly.
func WithPanicRecovery(enabled bool) RegistryOption {
	return func(r *Registry) { r.recoverPanics = enabled }
}

// WithInvalidationListener registers f to be called once for every node
// whose cache is invalidated, across every Set/ClearSet/Overlay/
// ClearOverlay the registry processes. Multiple listeners may be
// registered; each receives every invalidation. This is the seam the
// watch package's Server uses to turn graph invalidation into outbound
// websocket events without the core engine importing anything about
// transport.
func WithInvalidationListener(f func(*Node)) RegistryOption {
	return func(r *Registry) { r.onInvalidate = append(r.onInvalidate, f) }
}

// notify logs invalidation of n and fans it out to every registered
// listener.
func (r *Registry) notify(n *Node) {
	r.logger.Debug("invalidate", "node", n.String())
	for _, f := range r.onInvalidate {
		f(n)
	}
}

// NewRegistry creates an empty graph.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		nodes:         make(map[nodeKey]*Node),
		logger:        noopLogger{},
		detectCycles:  true,
		recoverPanics: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the Node for (object, method, args), computing its key
// from object identity, method identity, and the argument tuple. If no
// such node exists and create is true, a fresh Node is interned and
// returned; otherwise Lookup returns nil.
func (r *Registry) Lookup(object interface{}, method *MethodDescriptor, args []interface{}, create bool) *Node {
	key := nodeKey{object: object, method: method, argsKey: argsKey(args)}
	if n, ok := r.nodes[key]; ok {
		return n
	}
	if !create {
		return nil
	}
	n := newNode(object, method, args)
	r.nodes[key] = n
	return n
}

// activeNode returns the node currently being computed, or nil.
func (r *Registry) activeNode() *Node {
	if len(r.activeChain) == 0 {
		return nil
	}
	return r.activeChain[len(r.activeChain)-1]
}

// IsComputing reports whether the registry is in the middle of evaluating
// some node.
func (r *Registry) IsComputing() bool {
	return r.activeNode() != nil
}

// SetValue writes an explicit value to node, failing with
// ErrMutationDuringCompute if the registry is currently evaluating.
func (r *Registry) SetValue(node *Node, value interface{}) error {
	if r.IsComputing() {
		return newError(KindMutationDuringComputation, "cannot set %s while computing %s", node, r.activeNode())
	}
	if err := node.writeSet(value, r.notify); err != nil {
		return err
	}
	r.logger.Debug("set", "node", node.String())
	return nil
}

// ClearSet clears a previously set value, failing with
// ErrMutationDuringCompute if the registry is currently evaluating.
func (r *Registry) ClearSet(node *Node) error {
	if r.IsComputing() {
		return newError(KindMutationDuringComputation, "cannot clear-set %s while computing %s", node, r.activeNode())
	}
	if err := node.clearSet(r.notify); err != nil {
		return err
	}
	r.logger.Debug("clear_set", "node", node.String())
	return nil
}

// OverlayValue delegates to the active context, failing with
// ErrMutationDuringCompute or ErrNoActiveContext as appropriate.
func (r *Registry) OverlayValue(node *Node, value interface{}) error {
	if r.IsComputing() {
		return newError(KindMutationDuringComputation, "cannot overlay %s while computing %s", node, r.activeNode())
	}
	if r.activeContext == nil {
		return newError(KindNoActiveContext, "cannot overlay %s outside a context", node)
	}
	r.activeContext.overlayValue(node, value)
	r.logger.Debug("overlay", "node", node.String())
	return nil
}

// ClearOverlay delegates to the active context, failing with
// ErrMutationDuringCompute or ErrNoActiveContext as appropriate.
func (r *Registry) ClearOverlay(node *Node) error {
	if r.IsComputing() {
		return newError(KindMutationDuringComputation, "cannot clear overlay on %s while computing %s", node, r.activeNode())
	}
	if r.activeContext == nil {
		return newError(KindNoActiveContext, "cannot clear overlay on %s outside a context", node)
	}
	r.activeContext.clearOverlay(node)
	r.logger.Debug("clear_overlay", "node", node.String())
	return nil
}
