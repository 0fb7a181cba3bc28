// Package store provides the SQLite-backed plan catalog.
//
// The catalog records every plan the CLI compiles so that later runs can
// look a plan up by fingerprint or list the plans of a model.
//
// # Identity
//
// Plans are keyed by fingerprint (ir.PlanFingerprint). Saving a plan whose
// fingerprint is already present is a no-op, so the first recorded plan ID
// wins.
//
// # Ordering
//
// Every insert gets a monotonically increasing seq. List queries order by
// seq ASC, fingerprint ASC COLLATE BINARY so results are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
