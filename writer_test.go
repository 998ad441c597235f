package cleansecsv

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWriterWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records [][]string
		dialect Dialect
		want    string
	}{
		{
			name:    "basic",
			records: [][]string{{"a", "b", "c"}},
			want:    "a,b,c\n",
		},
		{
			name: "multipleRecords",
			records: [][]string{
				{"alpha", "beta"},
				{"gamma", "delta"},
			},
			want: "alpha,beta\ngamma,delta\n",
		},
		{
			name:    "emptyField",
			records: [][]string{{"", "b"}},
			want:    ",b\n",
		},
		{
			name:    "commaForcesQuote",
			records: [][]string{{"alpha,beta"}},
			want:    "\"alpha,beta\"\n",
		},
		{
			name: "quoteEscaping",
			records: [][]string{
				{"he said \"hello\"", "plain"},
			},
			want: "\"he said \"\"hello\"\"\",plain\n",
		},
		{
			name: "newlineForcesQuote",
			records: [][]string{
				{"multi\nline", "z"},
			},
			want: "\"multi\nline\",z\n",
		},
		{
			name: "alwaysQuote",
			records: [][]string{
				{"alpha", "beta"},
			},
			dialect: Dialect{AlwaysQuote: true},
			want:    "\"alpha\",\"beta\"\n",
		},
		{
			name: "tabDelimiter",
			records: [][]string{
				{"a\tb", "c"},
			},
			dialect: Dialect{Comma: '\t'},
			want:    "\"a\tb\"\tc\n",
		},
		{
			name: "customQuote",
			records: [][]string{
				{"alpha'beta", "plain"},
			},
			dialect: Dialect{Quote: '\''},
			want:    "'alpha''beta',plain\n",
		},
		{
			name: "useCRLF",
			records: [][]string{
				{"a"},
				{"b"},
			},
			dialect: Dialect{UseCRLF: true},
			want:    "a\r\nb\r\n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			w := NewWriter(&buf, tc.dialect)
			for _, rec := range tc.records {
				if err := w.Write(stringsToFields(rec)); err != nil {
					t.Fatalf("Write() error = %v", err)
				}
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("unexpected output:\n got: %q\nwant: %q", got, tc.want)
			}
		})
	}
}

func TestWriterRoundTrip(t *testing.T) {
	t.Parallel()

	// Clean logical data must survive write-then-read byte for byte.
	records := []Record{
		{Number: 1, Fields: stringsToFields([]string{"plain", "with,comma", "with\"quote"})},
		{Number: 2, Fields: stringsToFields([]string{"", "multi\nline", "end"})},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultDialect())
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	r := NewReader(&buf, DefaultDialect())
	parsed, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(parsed) != len(records) {
		t.Fatalf("round trip record count = %d, want %d", len(parsed), len(records))
	}
	for i := range records {
		got := fieldsToStrings(parsed[i].Fields)
		want := fieldsToStrings(records[i].Fields)
		if strings.Join(got, "\x00") != strings.Join(want, "\x00") {
			t.Fatalf("round trip record %d = %q, want %q", i+1, got, want)
		}
	}
}

func TestWriterStickyError(t *testing.T) {
	t.Parallel()

	w := NewWriter(failingWriter{}, DefaultDialect())
	// First failure surfaces once the internal buffer spills.
	var err error
	for i := 0; i < 64 && err == nil; i++ {
		err = w.Write(stringsToFields([]string{strings.Repeat("x", 64)}))
	}
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		t.Fatalf("expected write failure to surface")
	}
	if w.Error() == nil {
		t.Fatalf("Error() should report the sticky failure")
	}
	if got := w.Write(stringsToFields([]string{"again"})); !errors.Is(got, err) {
		t.Fatalf("Write() after failure = %v, want sticky %v", got, err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("sink closed")
}

func stringsToFields(rec []string) [][]byte {
	out := make([][]byte, len(rec))
	for i, s := range rec {
		out[i] = []byte(s)
	}
	return out
}
