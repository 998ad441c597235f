package cleansecsv

import (
	"bytes"
	"unicode/utf8"
)

// Structural bytes removed from a field value are replaced with a plain
// space so surrounding text stays readable.
const repairByte = ' '

// Sanitizer repairs field values so they can no longer be confused with
// record or field structure under its dialect. It is pure: it performs
// no I/O, holds no per-field state, and is total over all byte inputs.
type Sanitizer struct {
	dialect Dialect
}

// NewSanitizer creates a Sanitizer for dialect d. Zero dialect bytes fall
// back to the defaults.
func NewSanitizer(d Dialect) *Sanitizer {
	return &Sanitizer{dialect: d.normalized()}
}

// repairRule is one step of the repair chain: it takes the current field
// bytes and returns the (possibly rewritten) bytes plus whether anything
// changed.
type repairRule struct {
	kind  RepairKind
	apply func(*Sanitizer, []byte) ([]byte, bool)
}

// The rules run in this order, unconditionally, each against the output
// of the previous one. Delimiter and terminator repair must come first:
// they work on raw byte values, and removing those bytes can change
// which sequences the UTF-8 pass sees.
var repairRules = []repairRule{
	{DelimiterReplacement, (*Sanitizer).repairDelimiter},
	{TerminatorReplacement, (*Sanitizer).repairTerminator},
	{FixedEncoding, (*Sanitizer).repairEncoding},
}

// Sanitize repairs one field value and reports which repair kinds fired,
// in rule order. The input slice is never modified; when no rule fires
// the returned bytes alias the input and kinds is nil.
func (s *Sanitizer) Sanitize(field []byte) ([]byte, []RepairKind) {
	out := field
	var kinds []RepairKind
	for _, rule := range repairRules {
		var changed bool
		out, changed = rule.apply(s, out)
		if changed {
			kinds = append(kinds, rule.kind)
		}
	}
	return out, kinds
}

func (s *Sanitizer) repairDelimiter(field []byte) ([]byte, bool) {
	return replaceAllByte(field, s.dialect.Comma, repairByte)
}

func (s *Sanitizer) repairTerminator(field []byte) ([]byte, bool) {
	return replaceAllByte(field, '\n', repairByte)
}

// repairEncoding rewrites malformed UTF-8, giving every offending byte
// its own U+FFFD. Runs of invalid bytes are not collapsed, so the repair
// preserves how much data was lost.
func (s *Sanitizer) repairEncoding(field []byte) ([]byte, bool) {
	if utf8.Valid(field) {
		return field, false
	}
	out := make([]byte, 0, len(field)+utf8.UTFMax)
	for i := 0; i < len(field); {
		r, size := utf8.DecodeRune(field[i:])
		if r == utf8.RuneError && size <= 1 {
			out = utf8.AppendRune(out, utf8.RuneError)
			i++
			continue
		}
		out = append(out, field[i:i+size]...)
		i += size
	}
	return out, true
}

// replaceAllByte substitutes every occurrence of old, copying the field
// only when a replacement is actually needed. Substituting a byte for
// itself changes nothing, so it reports no repair; this happens when the
// dialect's delimiter is itself the space byte.
func replaceAllByte(field []byte, old, sub byte) ([]byte, bool) {
	if old == sub {
		return field, false
	}
	i := bytes.IndexByte(field, old)
	if i < 0 {
		return field, false
	}
	out := append([]byte(nil), field...)
	for ; i < len(out); i++ {
		if out[i] == old {
			out[i] = sub
		}
	}
	return out, true
}
