package nodes

import (
	"fmt"

	"github.com/google/uuid"
)

// Context is a stacked scope holding a set of overlays that can be applied
// on entry and withdrawn on exit, nesting with well-defined precedence: an
// inner context's overlay for a node shadows an outer context's overlay for
// the same node, and withdrawing the inner context restores the outer
// one.
type Context struct {
	id     string
	registry *Registry
	parent *Context

	overlays map[*Node]interface{}
	saved    map[*Node]interface{}
	applied  map[*Node]struct{}

	active bool

	// parentForRestore is the registry's active context from before Enter,
	// restored on Exit. It is independent of parent: a context can be
	// entered under whichever context is active at the time, not only the
	// one it was constructed with.
	parentForRestore *Context
}

// NewContext creates a context scoped under registry, optionally nested
// under parent. A nil parent makes this a root context.
func NewContext(registry *Registry, parent *Context) *Context {
	return &Context{
		id:       uuid.NewString(),
		registry: registry,
		parent:   parent,
		overlays: make(map[*Node]interface{}),
		saved:    make(map[*Node]interface{}),
		applied:  make(map[*Node]struct{}),
	}
}

// ID returns a debug-only identifier for this context, logged on enter and
// exit so that interleaved nested-context traces can be told apart.
func (c *Context) ID() string { return c.id }

// AddOverlay records an overlay value for node without applying it. Use
// OverlayValue to record and apply in one step.
func (c *Context) AddOverlay(node *Node, value interface{}) {
	c.overlays[node] = value
}

// RemoveOverlay erases node's recorded overlay without un-applying it from
// the node itself.
func (c *Context) RemoveOverlay(node *Node) {
	delete(c.overlays, node)
}

// overlayValue records value for node and immediately applies it if the
// context is currently active.
func (c *Context) overlayValue(node *Node, value interface{}) {
	c.AddOverlay(node, value)
	if c.active {
		c.applyOverlay(node)
	}
}

// applyOverlay computes this context's effective value for node (its own
// value if present, else inherited from parent) and writes it to the node.
// If the node was already overlayed by an enclosing scope and this context
// hasn't yet recorded the prior value, it's stashed in saved so exit can
// restore it.
func (c *Context) applyOverlay(node *Node) {
	value := c.EffectiveOverlay(node, true)
	if node.IsOverlayed() && !c.isAppliedHere(node) {
		if _, shadowed := c.saved[node]; !shadowed {
			prior, _ := node.readOverlay()
			c.saved[node] = prior
		}
	}
	node.writeOverlay(value, c.registry.notify)
	c.applied[node] = struct{}{}
}

// clearOverlay withdraws this context's assertion of node's overlay: if
// this context shadowed an outer overlay, that outer value is reasserted;
// otherwise the node's overlay is cleared outright.
func (c *Context) clearOverlay(node *Node) {
	if !c.isAppliedHere(node) {
		return
	}
	if prior, shadowed := c.saved[node]; shadowed {
		node.writeOverlay(prior, c.registry.notify)
		delete(c.saved, node)
	} else {
		node.clearOverlay(c.registry.notify)
	}
	delete(c.applied, node)
}

func (c *Context) isAppliedHere(node *Node) bool {
	_, ok := c.applied[node]
	return ok
}

// HasOverlay reports whether node has a recorded overlay in this context,
// or (if includeParent) in any enclosing context.
func (c *Context) HasOverlay(node *Node, includeParent bool) bool {
	if _, ok := c.overlays[node]; ok {
		return true
	}
	if includeParent && c.parent != nil {
		return c.parent.HasOverlay(node, true)
	}
	return false
}

// EffectiveOverlay returns this context's value for node if present, else
// the nearest enclosing context's value. Panics if no context in the
// chain has an overlay for node — callers should guard with HasOverlay.
func (c *Context) EffectiveOverlay(node *Node, includeParent bool) interface{} {
	if v, ok := c.overlays[node]; ok {
		return v
	}
	if includeParent && c.parent != nil {
		return c.parent.EffectiveOverlay(node, true)
	}
	panic(fmt.Sprintf("nodes: no overlay recorded for %s", node))
}

// AllOverlays returns the merged overlay map visible from this context:
// parent entries, overridden by this context's own entries.
func (c *Context) AllOverlays(includeParent bool) map[*Node]interface{} {
	if !includeParent || c.parent == nil {
		out := make(map[*Node]interface{}, len(c.overlays))
		for n, v := range c.overlays {
			out[n] = v
		}
		return out
	}
	out := c.parent.AllOverlays(true)
	for n, v := range c.overlays {
		out[n] = v
	}
	return out
}

// Enter pushes c onto the registry's context stack and applies every
// recorded overlay, returning c so callers can write
//
//	ctx := nodes.NewContext(registry, nil).Enter()
//	defer ctx.Exit()
//
// Entering a context that is already active panics with
// ErrContextAlreadyActive: re-entering the same record while it's active
// would corrupt saved (see Open Question decisions in DESIGN.md), so this
// is treated as caller misuse rather than a recoverable error.
func (c *Context) Enter() *Context {
	if c.active {
		panic(ErrContextAlreadyActive)
	}
	c.registry.logger.Debug("context_enter", "context", c.id)
	c.parentForRestore = c.registry.activeContext
	c.registry.activeContext = c
	c.active = true
	for node := range c.AllOverlays(true) {
		c.applyOverlay(node)
	}
	return c
}

// Exit withdraws every overlay this context applied and restores the
// registry's active context to whatever it was before Enter. A context may
// be re-entered any number of times after exiting.
func (c *Context) Exit() {
	for node := range c.AllOverlays(true) {
		c.clearOverlay(node)
	}
	c.registry.activeContext = c.parentForRestore
	c.active = false
	c.registry.logger.Debug("context_exit", "context", c.id)
}

// In runs f with c entered, guaranteeing Exit runs even if f panics.
func (c *Context) In(f func()) {
	c.Enter()
	defer c.Exit()
	f()
}
