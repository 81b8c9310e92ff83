// Package replay captures raw provider traffic for diagnosis.
//
// When a provider is configured with debug: true, the pipeline hands every
// exchange to a Recorder: the JSON request exactly as sent and each raw
// inbound payload (the batch body or every stream line) before any
// transform. Recording only observes; a failing recorder is logged and the
// run continues unchanged.
//
// Backends:
//
//   - log: one structured log record per exchange
//   - sqlite: a queryable store (github.com/mattn/go-sqlite3) with
//     retention-based pruning, listed by "conduit replay list"
package replay
