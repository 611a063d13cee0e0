// Package repositories implements SQLite persistence for the practice book.
//
// Key Implementations:
//   - [RegimentRepository] : regiments with their ordered pieces and logs, created in one transaction
//   - [PieceRepository] : piece lookups used to validate the active-piece marker
//   - [LogRepository] : append-only BPM samples per piece
//   - [ActivePieceRepository] : the single-row active piece marker
//
// Regiments are soft deleted via deleted_at and excluded from queries by default.
// Sequence numbers provide stable, human-readable ordering (e.g., regiment #15) independent of UUIDs.
// The [NextSequence] function increments the per-table counter inside the caller's transaction.
package repositories
