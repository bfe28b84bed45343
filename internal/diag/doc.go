// Package diag defines the diagnostic model shared by the engine, the
// checkers and the sink.
//
// # Purpose
//
//   - Provide deterministic data structures for findings produced by checkers
//     and for failures of the analyzer core itself.
//   - Offer light-weight utilities (Reporter, ReportBuilder, Bag) so that
//     producers can emit diagnostics without coupling to storage.
//   - Define the fingerprint used for session-wide deduplication.
//
// # Scope
//
// Package diag performs no IO and no suppression. Deduplication across a
// session and suppression filtering live in internal/sink; rendering lives in
// the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – debug, information, style, performance, portability,
//     warning, error (ascending importance).
//   - ID – stable check identifier ("nullPointer", "unusedFunction", ...).
//     Core failures use Code.ID().
//   - Message – human oriented text.
//   - Locations – the call/inclusion chain; the first entry is primary.
//   - Unit / Configs – the source unit and every build configuration the
//     finding is attributed to.
//
// Fingerprint hashes ID, the normalised message and the primary location.
// Configuration names are deliberately excluded: the same defect reached from
// several configurations must collapse into one finding.
package diag
