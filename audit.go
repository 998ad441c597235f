package cleansecsv

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// RepairKind identifies one class of field repair.
type RepairKind uint8

const (
	// DelimiterReplacement: delimiter bytes in the value were replaced with spaces.
	DelimiterReplacement RepairKind = iota
	// TerminatorReplacement: line terminators in the value were replaced with spaces.
	TerminatorReplacement
	// FixedEncoding: invalid UTF-8 bytes were replaced with U+FFFD.
	FixedEncoding
)

func (k RepairKind) String() string {
	switch k {
	case DelimiterReplacement:
		return "DelimiterReplacement"
	case TerminatorReplacement:
		return "TerminatorReplacement"
	case FixedEncoding:
		return "FixedEncoding"
	}
	return fmt.Sprintf("RepairKind(%d)", uint8(k))
}

// AuditEntry describes the repairs applied to a single field. Record and
// Field are 1-based; Repairs lists the kinds that fired, in rule order.
// Entries exist only for fields where at least one repair fired.
type AuditEntry struct {
	Record  int
	Field   int
	Repairs []RepairKind
}

// Reporter consumes audit entries as repaired fields are written. The
// pipeline calls Report once per repaired field, in processing order,
// which is (record, field) lexicographic order by construction.
type Reporter interface {
	Report(AuditEntry)
}

// NopReporter discards all entries.
type NopReporter struct{}

func (NopReporter) Report(AuditEntry) {}

// LogReporter emits one info-level log line per repaired field.
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter creates a LogReporter on logger; a nil logger reports
// into the void.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{logger: logger}
}

// Report logs the entry. The message carries the human-facing numbers,
// the structured fields carry the same data for machine filtering.
func (r *LogReporter) Report(e AuditEntry) {
	names := make([]string, len(e.Repairs))
	for i, k := range e.Repairs {
		names[i] = k.String()
	}
	r.logger.Info(
		fmt.Sprintf("Record number %d, field number %d: [%s]", e.Record, e.Field, strings.Join(names, ", ")),
		zap.Int("record", e.Record),
		zap.Int("field", e.Field),
		zap.Strings("repairs", names),
	)
}
