package cleansecsv

import (
	"errors"
	"fmt"
)

var (
	// ErrDelimiterReserved is returned when the delimiter collides with a record terminator.
	ErrDelimiterReserved = errors.New("cleansecsv: delimiter may not be a line terminator")
	// ErrQuoteReserved is returned when the quote character collides with a record terminator.
	ErrQuoteReserved = errors.New("cleansecsv: quote may not be a line terminator")
	// ErrDelimiterQuoteEqual is returned when delimiter and quote share one byte.
	ErrDelimiterQuoteEqual = errors.New("cleansecsv: delimiter and quote must differ")
)

// Dialect describes how a byte stream maps to records and fields: the
// field delimiter, the quote character, and the serialization policy the
// writer applies. A Dialect is a value; copies are independent and a
// configured Dialect never changes during a run.
type Dialect struct {
	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// UseCRLF writes records terminated with \r\n when set.
	UseCRLF bool
	// AlwaysQuote forces quoting for all fields when writing.
	AlwaysQuote bool
}

// DefaultDialect returns the RFC 4180 defaults: comma-delimited,
// double-quote quoted, LF-terminated.
func DefaultDialect() Dialect {
	return Dialect{Comma: ',', Quote: '"'}
}

// Validate reports whether the dialect can round-trip through the reader
// and writer. Zero bytes are allowed; they fall back to the defaults.
func (d Dialect) Validate() error {
	n := d.normalized()
	switch {
	case n.Comma == '\n' || n.Comma == '\r':
		return fmt.Errorf("%w: %q", ErrDelimiterReserved, n.Comma)
	case n.Quote == '\n' || n.Quote == '\r':
		return fmt.Errorf("%w: %q", ErrQuoteReserved, n.Quote)
	case n.Comma == n.Quote:
		return fmt.Errorf("%w: both are %q", ErrDelimiterQuoteEqual, n.Comma)
	}
	return nil
}

// normalized fills unset bytes with the defaults so callers can leave the
// zero value alone for standard CSV.
func (d Dialect) normalized() Dialect {
	if d.Comma == 0 {
		d.Comma = ','
	}
	if d.Quote == 0 {
		d.Quote = '"'
	}
	return d
}
