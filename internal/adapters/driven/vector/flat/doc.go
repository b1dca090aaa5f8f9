// Package flat provides an exact, in-memory vector index that keeps entries
// in insertion order. It implements driven.VectorIndex and is enough for
// per-document and per-batch indexes, which are persisted rather than queried.
package flat
