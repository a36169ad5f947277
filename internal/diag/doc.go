// Package diag defines the diagnostic model shared by every parsing layer.
//
// Readers never stop on recoverable problems: a field that cannot be coerced,
// an unknown record type or an orphan sub-record becomes a Diagnostic and the
// pass continues. Fatal per-file conditions (unterminated blocks, stride
// mismatches, load failures) are returned as typed errors by the readers and
// recorded here as SevError entries by the caller.
//
// # Data model
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – numeric identifier with a stable string form (COL, REC, BLK, BIN,
//     REG, XRF, IO, OBS ranges, see codes.go).
//   - Primary – byte span in a source.File; file, line and column are resolved
//     through the FileSet only when rendering.
//   - Expected / Excerpt – expected format and offending raw text, set for
//     coercion findings.
//   - Notes – optional secondary spans, e.g. the first definition of a
//     duplicated key.
//
// # Emitting diagnostics
//
// Producers take a Reporter. ReportError/ReportWarning/ReportInfo build a
// diagnostic fluently and Emit sends it once. BagReporter stores into a Bag,
// which is safe for concurrent Add, sortable and dedupable.
//
// Rendering lives in internal/diagfmt; the one-line short format used by the
// CLI and by tests is FormatShortDiagnostics.
package diag
