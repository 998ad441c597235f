package cleansecsv

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func benchmarkCleanData() []byte {
	return []byte(strings.Repeat(`xxxxxxxxxxxxxxxx,yyyyyyyyyyyyyyyy,zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz,wwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwww
xxxxxxxxxxxxxxxxxxxxxxxx,yyyyyyyyyyyyyyyyyyyyyyyyyyyyyyyy,zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz,vvvv
,,zzzz,wwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwww
`, 64))
}

func benchmarkDirtyData() []byte {
	return []byte(strings.Repeat("plain,\"em,bedded\",\"multi\nline\",tail\xff\n", 256))
}

func BenchmarkReader(b *testing.B) {
	data := benchmarkCleanData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		r := NewReader(bytes.NewReader(data), DefaultDialect())
		r.ReuseRecord = true

		for {
			if _, err := r.Read(); err != nil {
				if err == io.EOF {
					break
				}
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkRunClean(b *testing.B) {
	data := benchmarkCleanData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		if err := Run(context.Background(), bytes.NewReader(data), io.Discard, DefaultDialect(), nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRunDirty(b *testing.B) {
	data := benchmarkDirtyData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		if err := Run(context.Background(), bytes.NewReader(data), io.Discard, DefaultDialect(), nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSanitizeDirtyField(b *testing.B) {
	field := []byte("one,two\nthree\xff\x80four")
	s := NewSanitizer(DefaultDialect())
	b.ReportAllocs()
	b.SetBytes(int64(len(field)))

	for i := 0; i < b.N; i++ {
		if _, kinds := s.Sanitize(field); len(kinds) != 3 {
			b.Fatalf("expected 3 repairs, got %v", kinds)
		}
	}
}
