package nodes

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// Node stores the per-computation state for one (object, method, args)
// triple: its set/overlay/cached values and validity flags, and the edges
// to the nodes it last read from and the nodes that last read it.
//
// At most one of {overlay, set, cache} is consulted per read, in that
// precedence order. Edge management (AddInput/AddOutput) is driven by the
// Evaluator, not by Node itself — a Node never decides when it is being
// read, only what happens once it is.
type Node struct {
	object interface{}
	method *MethodDescriptor
	args   []interface{}

	overlayValue interface{}
	isOverlayed  bool

	setValue interface{}
	isSet    bool

	cachedValue interface{}
	isCached    bool

	inputs  map[*Node]struct{}
	outputs map[*Node]struct{}
}

func newNode(object interface{}, method *MethodDescriptor, args []interface{}) *Node {
	return &Node{
		object:  object,
		method:  method,
		args:    args,
		inputs:  make(map[*Node]struct{}),
		outputs: make(map[*Node]struct{}),
	}
}

// Method returns the descriptor this node was computed through.
func (n *Node) Method() *MethodDescriptor { return n.method }

// Object returns the graph object this node belongs to.
func (n *Node) Object() interface{} { return n.object }

// Args returns the argument tuple this node was keyed on.
func (n *Node) Args() []interface{} { return n.args }

// AddInput records that n read input during its last computation.
// Idempotent.
func (n *Node) AddInput(input *Node) {
	n.inputs[input] = struct{}{}
}

// AddOutput records that output read n during output's last computation.
// Idempotent.
func (n *Node) AddOutput(output *Node) {
	n.outputs[output] = struct{}{}
}

// Validity reports whether the node holds a value without needing
// recomputation: an overlay, a set value, or a cached value.
func (n *Node) Validity() bool {
	return n.isOverlayed || n.isSet || n.isCached
}

// IsOverlayed reports whether a context overlay currently shadows this
// node's set/cached value.
func (n *Node) IsOverlayed() bool { return n.isOverlayed }

// IsSet reports whether the node holds an explicit user-assigned value.
func (n *Node) IsSet() bool { return n.isSet }

// IsCached reports whether the node holds a memoized computation result.
func (n *Node) IsCached() bool { return n.isCached }

// read returns the node's value according to overlay > set > cache
// precedence, computing the node via compute if none of the three is
// present. It does not itself mutate any other node's validity; the
// dependency-tracking side effects live in the Evaluator.
func (n *Node) read(compute func() (interface{}, error)) (interface{}, error) {
	if n.isOverlayed {
		return n.overlayValue, nil
	}
	if n.isSet {
		return n.setValue, nil
	}
	if n.isCached {
		return n.cachedValue, nil
	}
	value, err := compute()
	if err != nil {
		return nil, err
	}
	n.cachedValue = value
	n.isCached = true
	return value, nil
}

// writeSet stores an explicit value, invalidating transitive outputs.
// Fails with ErrReadOnly if the method isn't Settable.
func (n *Node) writeSet(value interface{}, notify func(*Node)) error {
	if !n.method.Flags().IsSettable() {
		return newError(KindReadOnly, "cannot set read-only node %s", n)
	}
	n.invalidateOutputs(notify)
	n.setValue = value
	n.isSet = true
	return nil
}

// clearSet removes a previously set value, invalidating transitive outputs
// if a value was actually cleared. A no-op if the node isn't set.
func (n *Node) clearSet(notify func(*Node)) error {
	if !n.method.Flags().IsSettable() {
		return newError(KindReadOnly, "cannot clear read-only node %s", n)
	}
	if !n.isSet {
		return nil
	}
	n.invalidateOutputs(notify)
	n.isSet = false
	n.setValue = nil
	return nil
}

// writeOverlay stores a context-scoped override, invalidating transitive
// outputs. Unlike writeSet, this is never gated on Settable: an overlay is
// a temporary scope effect, not a permanent write to the object's state.
func (n *Node) writeOverlay(value interface{}, notify func(*Node)) {
	n.invalidateOutputs(notify)
	n.overlayValue = value
	n.isOverlayed = true
}

// clearOverlay removes the node's overlay, invalidating transitive outputs
// if an overlay was actually cleared. A no-op if the node isn't overlayed.
func (n *Node) clearOverlay(notify func(*Node)) {
	if !n.isOverlayed {
		return
	}
	n.invalidateOutputs(notify)
	n.isOverlayed = false
	n.overlayValue = nil
}

// readOverlay returns the node's overlay value, failing with
// ErrNotOverlayed if the node has none.
func (n *Node) readOverlay() (interface{}, error) {
	if !n.isOverlayed {
		return nil, newError(KindNotOverlayed, "node %s is not overlayed", n)
	}
	return n.overlayValue, nil
}

// invalidateCache clears this node's cached value, then propagates
// invalidation to every output. Setting or overlaying never clears another
// node's is_set/is_overlayed — invalidation is monotone against is_cached
// only. notify, if non-nil, is called once for every node actually
// invalidated, letting a caller (e.g. the watch package) observe
// invalidation as it cascades without the Node type itself knowing
// anything about subscribers.
func (n *Node) invalidateCache(notify func(*Node)) {
	if !n.isCached {
		return
	}
	n.isCached = false
	n.cachedValue = nil
	if notify != nil {
		notify(n)
	}
	n.invalidateOutputs(notify)
}

// invalidateOutputs walks this node's outputs, invalidating the cache of
// each. Order is unobservable (callers never depend on it). The walk has no
// visited set of its own; it terminates even on a cyclic output graph
// because invalidateCache clears isCached before recursing and stops at any
// node that is already uncached.
func (n *Node) invalidateOutputs(notify func(*Node)) {
	for output := range n.outputs {
		output.invalidateCache(notify)
	}
}

// String renders a debug representation, mirroring the original Python
// Node.__str__: object, method name, args, and the three validity flags.
func (n *Node) String() string {
	return fmt.Sprintf("<Node %T.%s(%s) isSet=%v isOverlayed=%v isCached=%v>",
		n.object, n.method.Name(), spew.Sdump(n.args), n.isSet, n.isOverlayed, n.isCached)
}
