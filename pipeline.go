package cleansecsv

import (
	"context"
	"io"
)

// Run streams delimited data from src to dst, repairing every field and
// reporting each repaired field to rep. The pipeline is pull-based and
// strictly sequential: one record is read, sanitized, written, and
// reported before the next is read, so memory stays bounded to a single
// record regardless of input size.
//
// Parse errors and I/O errors abort the run immediately; dirty field
// data never does. Output already flushed before a fatal error remains
// written. A nil rep suppresses reporting.
func Run(ctx context.Context, src io.Reader, dst io.Writer, d Dialect, rep Reporter) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if rep == nil {
		rep = NopReporter{}
	}

	reader := NewReader(src, d)
	reader.ReuseRecord = true
	writer := NewWriter(dst, d)
	sanitizer := NewSanitizer(d)

	var pending []AuditEntry
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		pending = pending[:0]
		for i, field := range record.Fields {
			repaired, kinds := sanitizer.Sanitize(field)
			record.Fields[i] = repaired
			if len(kinds) > 0 {
				pending = append(pending, AuditEntry{
					Record:  record.Number,
					Field:   i + 1,
					Repairs: kinds,
				})
			}
		}

		if err := writer.Write(record.Fields); err != nil {
			return err
		}
		// Report only after the repaired fields have been written.
		for _, entry := range pending {
			rep.Report(entry)
		}
	}
	return writer.Flush()
}
