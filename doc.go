// Package nodes implements a reactive dependency-graph object model: a
// runtime that lets user-defined objects expose methods whose return values
// are memoized, tracked as dependencies, overridable in stacked contexts,
// and invalidated when their inputs change.
//
// A Registry interns one Node per (object, method, args) triple. Reading a
// node through the Registry records an edge from whichever node is
// currently being computed to the node being read; writing a node (directly
// via Set, or temporarily via a Context's overlay) invalidates every node
// transitively downstream of it.
//
// The engine is single-goroutine: a Registry makes no attempt to
// synchronize concurrent evaluation or mutation. See Registry for details.
package nodes
