package cleansecsv

import (
	"errors"
	"fmt"
	"io"
)

const defaultBufferSize = 1 << 10 // 1024 bytes

var (
	// ErrBareQuote is returned when an unexpected quote is found in an unquoted field.
	ErrBareQuote = errors.New("cleansecsv: bare quote in non-quoted field")
	// ErrUnterminatedQuote is returned when a quoted field is not closed before EOF.
	ErrUnterminatedQuote = errors.New("cleansecsv: unterminated quoted field")
)

// ParseError contains location information for dialect parsing errors.
// Any ParseError is fatal to a run: it means the input is not the claimed
// dialect, not that a cell contains dirty data.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("cleansecsv: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Record is one parsed row: the decoded field values plus the row's
// 1-based position in the stream. Field bytes are the logical values,
// with quote and escape characters already stripped and any legally
// quoted delimiter or terminator bytes kept verbatim.
type Record struct {
	Number int
	Fields [][]byte
}

// Reader parses a delimited byte stream into Records under a fixed
// Dialect. It is streaming: each Read consumes exactly one record and
// holds no more than that record in memory.
type Reader struct {
	src     io.Reader
	dialect Dialect

	// ReuseRecord indicates whether Read may reuse the backing storage of
	// the returned fields. When set, field bytes are valid only until the
	// next Read.
	ReuseRecord bool

	buf    []byte
	bufPos int
	bufLen int
	bufErr error

	fields      [][]byte
	dataBuf     []byte
	fieldBounds []int
	finished    bool
	line        int
	records     int
}

// NewReader creates a Reader that consumes delimited data from src using
// dialect d, panicking if src is nil. Zero dialect bytes fall back to the
// defaults.
func NewReader(src io.Reader, d Dialect) *Reader {
	if src == nil {
		panic("cleansecsv: reader source cannot be nil")
	}
	return &Reader{
		src:         src,
		dialect:     d.normalized(),
		buf:         make([]byte, defaultBufferSize),
		fields:      make([][]byte, 0, 16),
		dataBuf:     make([]byte, 0, 512),
		fieldBounds: make([]int, 0, 32),
		line:        1,
	}
}

// Read parses the next record from the underlying stream. io.EOF signals
// that no more records remain. A *ParseError means the stream does not
// conform to the dialect and the reader will produce nothing further.
func (r *Reader) Read() (Record, error) {
	if r == nil || r.src == nil || r.finished {
		return Record{}, io.EOF
	}

	comma := r.dialect.Comma
	quote := r.dialect.Quote

	// Reset state for assembling the next record, reusing slices when allowed.
	if r.ReuseRecord {
		r.fields = r.fields[:0]
	} else {
		r.fields = nil
	}
	r.dataBuf = r.dataBuf[:0]
	r.fieldBounds = r.fieldBounds[:0]

	inQuotes := false
	sawQuotedField := false
	column := 1
	fieldStart := 0

	for {
		// Ensure the working buffer has data before parsing the next byte.
		if r.bufPos >= r.bufLen {
			if r.bufErr != nil {
				err := r.bufErr
				r.bufErr = nil
				r.finished = true
				if err != io.EOF {
					return Record{}, err
				}
				// Unterminated quotes at EOF are invalid.
				if inQuotes {
					return Record{}, &ParseError{Line: r.line, Column: column, Err: ErrUnterminatedQuote}
				}
				// Flush a trailing field if data ended without a terminator.
				if len(r.fieldBounds) > 0 || len(r.dataBuf) > 0 || sawQuotedField {
					r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
					return r.buildRecord(), nil
				}
				return Record{}, io.EOF
			}

			// Pull the next chunk from the source.
			n, err := r.src.Read(r.buf)
			if n == 0 {
				if err != nil {
					r.bufErr = err
				}
				continue
			}
			r.bufPos = 0
			r.bufLen = n
			r.bufErr = err
		}

		curColumn := column
		b := r.buf[r.bufPos]
		r.bufPos++

		if inQuotes {
			switch b {
			case quote:
				// Doubled quote inside quotes represents an escaped quote.
				next, err := r.peekByte()
				if err == nil && next == quote {
					r.bufPos++
					r.dataBuf = append(r.dataBuf, quote)
					column = curColumn + 2
					continue
				}
				if err != nil && err != io.EOF {
					r.finished = true
					return Record{}, err
				}
				inQuotes = false
				column = curColumn + 1
			case '\n':
				// Track logical line numbers for embedded newlines.
				r.dataBuf = append(r.dataBuf, b)
				r.line++
				column = 1
			default:
				// Append contiguous plain bytes within the quoted field.
				r.dataBuf = append(r.dataBuf, b)
				column = curColumn + 1 + r.appendRun(quote, '\n')
			}
			continue
		}

		switch b {
		case comma:
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			fieldStart = len(r.dataBuf)
			sawQuotedField = false
			column = curColumn + 1
		case '\n':
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			r.line++
			return r.buildRecord(), nil
		case '\r':
			// Support CRLF by peeking ahead for '\n' and consuming it too.
			next, err := r.peekByte()
			if err == nil && next == '\n' {
				r.bufPos++
			}
			if err != nil && err != io.EOF {
				r.finished = true
				return Record{}, err
			}
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			r.line++
			return r.buildRecord(), nil
		case quote:
			// A quote starts a quoted field only at the start of the field.
			if len(r.dataBuf) == fieldStart && !sawQuotedField {
				inQuotes = true
				sawQuotedField = true
				column = curColumn + 1
				continue
			}
			r.finished = true
			return Record{}, &ParseError{Line: r.line, Column: curColumn, Err: ErrBareQuote}
		default:
			// Copy consecutive plain bytes before the next structural byte.
			r.dataBuf = append(r.dataBuf, b)
			column = curColumn + 1 + r.appendRun(comma, quote, '\n', '\r')
		}
	}
}

// ReadAll exhausts the reader, repeatedly calling Read to collect records
// until io.EOF, returning the accumulated records plus the first non-EOF
// error encountered.
func (r *Reader) ReadAll() (records []Record, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// appendRun copies buffered bytes into the record data until one of the
// stop bytes is found or the buffer drains, and reports how many bytes
// were consumed. The caller's outer loop handles refills.
func (r *Reader) appendRun(stops ...byte) int {
	data := r.buf[r.bufPos:r.bufLen]
	n := 0
scan:
	for ; n < len(data); n++ {
		c := data[n]
		for _, s := range stops {
			if c == s {
				break scan
			}
		}
	}
	if n > 0 {
		r.dataBuf = append(r.dataBuf, data[:n]...)
		r.bufPos += n
	}
	return n
}

// buildRecord maps the accumulated fieldBounds onto the data buffer,
// respecting ReuseRecord, and stamps the record with its 1-based number.
func (r *Reader) buildRecord() Record {
	fieldCount := len(r.fieldBounds) / 2

	data := r.dataBuf
	fields := r.fields
	if r.ReuseRecord {
		if cap(fields) < fieldCount {
			fields = make([][]byte, fieldCount)
		}
		fields = fields[:fieldCount]
	} else {
		data = append([]byte(nil), r.dataBuf...)
		fields = make([][]byte, fieldCount)
	}

	for i := 0; i < fieldCount; i++ {
		start := r.fieldBounds[2*i]
		end := r.fieldBounds[2*i+1]
		fields[i] = data[start:end:end]
	}

	r.fields = fields
	r.records++
	return Record{Number: r.records, Fields: fields}
}

// peekByte returns the next buffered byte (refilling from src as needed)
// and propagates any read error.
func (r *Reader) peekByte() (byte, error) {
	for {
		if r.bufPos < r.bufLen {
			return r.buf[r.bufPos], nil
		}
		if r.bufErr != nil {
			return 0, r.bufErr
		}

		n, err := r.src.Read(r.buf)
		if n == 0 && err != nil {
			return 0, err
		}
		if n == 0 {
			continue
		}
		r.bufPos = 0
		r.bufLen = n
		r.bufErr = err
	}
}
