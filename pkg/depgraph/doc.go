// Package depgraph implements the directed dependency graph used for
// resolution and merge-order computation.
//
// A [Graph] stores opaque, comparable node keys and directed child→parent
// edges, where an edge means "child depends on parent". Each edge carries a
// multiset of priorities describing the hardness of the relationship
// (buildtime, runtime, optional, ...). Traversal and query operations accept
// an optional [Filter] that excludes soft edges, which is how the resolver
// relaxes the graph when looking for something safe to merge next.
//
// All externally observable iteration (AllNodes, LeafNodes, ChildNodes, BFS,
// Cycles, ...) follows first-insertion order rather than Go map order, so
// results are reproducible across runs and hash seeds. This property is
// required for reproducible builds and is relied on by the cycle reporter.
//
// A Graph is not safe for concurrent use. Callers that share a graph across
// goroutines must synchronize externally or work on a [Graph.Clone].
package depgraph
