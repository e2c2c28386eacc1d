package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"runtime"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// countingReader tracks bytes pulled from the underlying file.
type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n)
	return n, err
}

// openSource wraps a station file in a decompressor when its leading bytes
// identify gzip or zstd. Plain files pass through unchanged.
func openSource(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReaderSize(r, 256*1024)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, nil, err
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := pgzip.NewReaderN(br, 256*1024, runtime.NumCPU())
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return dec, dec.Close, nil
	}
	return br, func() {}, nil
}
