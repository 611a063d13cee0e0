// Package models defines the practice-tracking domain entities and the payload schema exchanged with the backend.
//
// Entities:
//   - [Regiment] : a dated (weekly) collection of pieces to rehearse
//   - [Piece] : a named piece within a regiment, owning its BPM history
//   - [Log] : a single BPM sample recorded against a piece
//   - [ActivePiece] : the process-wide marker naming the piece that receives live samples
//
// Identifiers are assigned by the backend. Drafts built client-side carry a provisional DraftID
// (see [NewDraftID] and [IsProvisional]) which is never stored as an ID; the backend echoes it
// back so the caller can swap its draft for the persisted record.
//
// Payloads use one explicit schema, a JSON array of regiments decoded by [DecodeRegiments].
// Temporal fields are typed, so revival does not depend on field names.
// [DecodeLegacyRegiments] accepts the older string-wrapped array and validates it the same way.
package models
