package cleansecsv

import (
	"bufio"
	"errors"
	"io"
)

var (
	errNilWriter      = errors.New("cleansecsv: writer is nil")
	errWriterNoTarget = errors.New("cleansecsv: writer destination cannot be nil")
)

// Writer re-serializes records into a dialect's wire format. A field is
// quoted only when its content requires it under the dialect, or always
// when the dialect forces quoting, so output written here re-parses with
// the same Reader. The first write failure is sticky: every later call
// returns it, and it is fatal to a run.
type Writer struct {
	dst     *bufio.Writer
	dialect Dialect

	err error
}

// NewWriter creates a Writer emitting dialect d to w, with internal
// buffering tuned for bulk writes. Zero dialect bytes fall back to the
// defaults.
func NewWriter(w io.Writer, d Dialect) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{
		dst:     bufio.NewWriterSize(w, defaultBufferSize),
		dialect: d.normalized(),
	}
}

// Write emits a single record, terminated with the dialect's newline
// sequence.
func (w *Writer) Write(fields [][]byte) error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}

	comma := w.dialect.Comma
	quote := w.dialect.Quote

	for i := range fields {
		if i > 0 {
			if err := w.dst.WriteByte(comma); err != nil {
				w.err = err
				return err
			}
		}
		if err := w.writeField(fields[i], comma, quote); err != nil {
			w.err = err
			return err
		}
	}

	if w.dialect.UseCRLF {
		if _, err := w.dst.Write([]byte{'\r', '\n'}); err != nil {
			w.err = err
			return err
		}
	} else {
		if err := w.dst.WriteByte('\n'); err != nil {
			w.err = err
			return err
		}
	}
	return nil
}

// WriteAll writes multiple records, stopping at the first error.
func (w *Writer) WriteAll(records []Record) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := w.Write(record.Fields); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

func (w *Writer) writeField(field []byte, comma, quote byte) error {
	needsQuote := w.dialect.AlwaysQuote || fieldNeedsQuote(field, comma, quote)
	if !needsQuote {
		_, err := w.dst.Write(field)
		return err
	}
	if err := w.dst.WriteByte(quote); err != nil {
		return err
	}

	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] == quote {
			if start < i {
				if _, err := w.dst.Write(field[start:i]); err != nil {
					return err
				}
			}
			if _, err := w.dst.Write([]byte{quote, quote}); err != nil {
				return err
			}
			start = i + 1
		}
	}
	if start < len(field) {
		if _, err := w.dst.Write(field[start:]); err != nil {
			return err
		}
	}
	return w.dst.WriteByte(quote)
}

func fieldNeedsQuote(field []byte, comma, quote byte) bool {
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case quote, comma, '\n', '\r':
			return true
		}
	}
	return false
}
