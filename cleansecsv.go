// # CleanseCSV: Streaming Repair for Delimited Data
//
// CleanseCSV sanitizes delimited text (CSV/TSV) so that line-oriented UNIX tools can safely consume it. It parses a stream under a configurable dialect, repairs every field in place, and re-serializes valid delimited output while reporting each repair.
//
// # Repairs
//
// - Delimiter bytes embedded in a field value are replaced with spaces (`DelimiterReplacement`).
// - Line terminators embedded in a field value are replaced with spaces (`TerminatorReplacement`).
// - Invalid UTF-8 bytes are each replaced with U+FFFD (`FixedEncoding`).
//
// # Features
//
// - Streaming byte-oriented reader with custom field and quote separators and minimal copying.
// - Buffered writer with configurable delimiters, newline policy, and forced quoting.
// - Structured error reporting via `ParseError`, `ErrBareQuote`, and `ErrUnterminatedQuote`; malformed dialect structure aborts the run, dirty cell data never does.
// - Audit reporting of every repaired field through a pluggable `Reporter`; `LogReporter` emits one zap log line per repair.
// - `Run` drives the whole pull-based pipeline with memory bounded to one record.
//
// # Getting Started
//
// The module path is `github.com/oleg578/cleansecsv`. The `cmd/cleansecsv` command wraps the library for file and stdin/stdout use.
package cleansecsv
