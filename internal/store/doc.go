// Package store persists file integrity records in SQLite and owns every
// row the indexer and verifier exchange.
//
// The Store manages the database connection, schema initialization, the
// write lock that enforces the single-writer rule, and the point/hash/full
// lookups both run modes need. All writes flow through a Batch, which groups
// upserts and last-seen touches into bounded transactions so an interrupted
// index run loses at most the open batch and never corrupts committed data.
//
// Records are never deleted here. Disappearance is discovered at verify time
// by a record with no corresponding filesystem entry; pruning is left to
// external tooling.
package store
