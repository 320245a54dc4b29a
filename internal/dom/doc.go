// Package dom provides the in-process document tree that block content is
// composed from: elements with attributes, class lists, text, and ordered
// children, plus subtree mutation observation and focusable-input scanning.
//
// The package is deliberately not goroutine-safe. The editor core is
// single-threaded and cooperative: all mutations of one tree happen on one
// execution context, and observers are invoked synchronously on the mutating
// goroutine at the close of the outermost mutation scope. Callers that need
// to coordinate with timers do so above this package.
//
// # Mutation observation
//
// An Observer registered on a subtree root receives every structural change
// inside that subtree as a batch of Records. A single mutating call (for
// example AppendChild) delivers a one-record batch; Batch groups several
// calls into one multi-record batch:
//
//	dom.Batch(root, func() {
//	    root.AppendChild(a)
//	    root.AppendChild(b)
//	})
//
// # Mutation-free marker
//
// Elements carrying the MutationFreeAttr attribute set to "true" signal that
// their insertion or removal is internal bookkeeping, not a content edit.
// The marker is an attribute convention only; interpretation is up to the
// observer's consumer.
package dom
