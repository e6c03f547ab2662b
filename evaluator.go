package nodes

// ReadValue computes node's value if necessary and returns it, recording a
// dependency edge from whichever node is currently being computed (if any)
// to node.
//
// The edge is recorded before node computes, so that even a computation
// which fails partway leaves an edge that will be refreshed on retry — this
// is safe because a failed computation leaves no cached state behind to
// have been computed from stale inputs.
//
// A panic raised by the underlying method's callable (a user bug, or a
// reflect.Call argument mismatch surfaced from MethodDescriptor.call) is, by
// default, recovered here and converted into a KindPanic error, matching
// spec.md §7's "errors surfaced immediately to the caller" policy. A caller
// that wants the original crash-on-panic behavior instead — for example to
// let a test harness's own panic/recover machinery see the real value —
// can disable this with WithPanicRecovery(false).
func (r *Registry) ReadValue(node *Node) (value interface{}, err error) {
	parent := r.activeNode()
	if parent != nil {
		parent.AddInput(node)
		node.AddOutput(parent)
	}

	if r.detectCycles {
		for _, onChain := range r.activeChain {
			if onChain == node {
				return nil, newError(KindEvaluationCycle, "re-entrant read of %s", node)
			}
		}
	}

	r.activeChain = append(r.activeChain, node)
	defer func() {
		r.activeChain = r.activeChain[:len(r.activeChain)-1]
	}()
	if r.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				value, err = nil, newError(KindPanic, "panic computing %s: %v", node, p)
			}
		}()
	}

	value, err = node.read(func() (interface{}, error) {
		r.logger.Debug("compute", "node", node.String())
		return node.method.call(node.object, node.args)
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// call is the entry point a Handle uses to evaluate itself.
func (r *Registry) call(object interface{}, method *MethodDescriptor, args []interface{}) (interface{}, error) {
	return r.ReadValue(r.Lookup(object, method, args, true))
}
