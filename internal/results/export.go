package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Export streams the raw JSONL hit file to w, zstd-compressing when
// compress is true. Returns the number of uncompressed bytes exported.
func (s *Store) Export(w io.Writer, compress bool) (int64, error) {
	if err := s.Flush(); err != nil {
		return 0, err
	}
	f, err := os.Open(s.hitsPath)
	if err != nil {
		return 0, fmt.Errorf("results: open for export: %w", err)
	}
	defer f.Close()

	if !compress {
		return io.Copy(w, bufio.NewReaderSize(f, 256<<10))
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, fmt.Errorf("results: zstd writer: %w", err)
	}
	n, err := io.Copy(enc, bufio.NewReaderSize(f, 256<<10))
	if err != nil {
		enc.Close()
		return n, fmt.Errorf("results: export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return n, fmt.Errorf("results: finish zstd stream: %w", err)
	}
	return n, nil
}

// ExportFile exports to path, compressing when the name ends in .zst.
func (s *Store) ExportFile(path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("results: create %s: %w", path, err)
	}
	n, err := s.Export(f, strings.HasSuffix(path, ".zst"))
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("results: close %s: %w", path, cerr)
	}
	return n, err
}
