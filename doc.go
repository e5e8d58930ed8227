// Package jnosql maps Go domain objects onto document-oriented NoSQL
// storage. It converts registered structs to generic document entities
// and back, executes a small text query language over any store, and
// models graph traversals whose paths collapse into entity trees.
//
// # Layers
//
// The framework separates mapping from storage:
//
//	┌─────────────────────────────────────┐
//	│            Template                 │  CRUD, text queries,
//	│   (insert, find, query, prepare)    │  caching, bulk writes
//	└─────────────────────────────────────┘
//	           ↓ converts via
//	┌─────────────────────────────────────┐
//	│      Metadata + Converter           │  struct ↔ DocumentEntity,
//	│   (fields, ids, discriminators)     │  inheritance groups
//	└─────────────────────────────────────┘
//	           ↓ reads and writes
//	┌─────────────────────────────────────┐
//	│          entity.Manager             │  natskv (JetStream KV),
//	│    (insert, update, delete, select) │  in-memory for tests
//	└─────────────────────────────────────┘
//
// Domain objects register once with a metadata.Registry, which records
// entity names, field mappings, identifier fields, and inheritance
// discriminators. Everything above the manager interface is storage
// agnostic; the natskv driver persists entities as ordered JSON in a
// NATS JetStream key-value bucket.
//
// # Queries
//
// The query package parses a compact text language (insert, update,
// delete, select) with named placeholders bound through prepared
// statements. The graph package offers Gremlin-style traversals over an
// in-memory property graph, and the tree package folds traversal paths
// into trees queried by depth or leaf.
package jnosql
