// Package domain defines the core business entities for docvault.
//
// This package is part of the hexagonal architecture's innermost layer.
// Its only external dependency is github.com/google/uuid, and it defines
// the fundamental types:
//
//   - Chunk: a semantically coherent slice of a source document
//   - SourceFile: the index row tracking a vault path's processing state
//   - EmbeddingRow: the vector attached to a chunk
//   - ProcessingTask / FileChangeEvent: the queue's units of work
//   - ProcessingError: the structured error taxonomy crossing package
//     boundaries
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import the Go
// standard library (plus google/uuid, which is pinned to these types'
// deterministic-ID contract, not to any adapter). All other packages
// depend on domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, github.com/google/uuid
//   - Cannot Import: Any internal/ package, any adapter
package domain
