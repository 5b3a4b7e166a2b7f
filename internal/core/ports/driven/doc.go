// Package driven defines the interfaces that core calls OUT to
// infrastructure: the "driven" or "secondary" ports in hexagonal
// architecture. Core services depend on these interfaces; adapters
// implement them.
//
//   - TextExtractor: turns a file or byte stream into extracted text
//   - EmbeddingService: maps text to L2-normalized vectors
//   - ChunkArchive: serialises/deserialises a source's chunks to a
//     self-contained columnar file
//   - Index: the relational store over source files, chunks and
//     embeddings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven
