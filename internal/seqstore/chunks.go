package seqstore

import (
	"fmt"
	"io"
	"os"
)

// ChunkFunc receives one chunk of sequence text with its global coordinates
// (start inclusive, end exclusive). The chunk buffer is reused between
// calls; callers that retain it must copy.
type ChunkFunc func(chunk []byte, start, end int) error

// Chunks streams id's sequence as overlapping windows of chunkSize bytes.
// Every non-final step advances by chunkSize-overlap; the last chunk may be
// shorter. Exactly one chunk is resident at a time. Each chunk is validated
// byte-for-byte to contain no whitespace; a violation fails with
// ErrCorruptStorage.
func (s *Store) Chunks(id string, chunkSize, overlap int, fn ChunkFunc) error {
	if chunkSize <= 0 {
		return fmt.Errorf("seqstore: chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return fmt.Errorf("seqstore: overlap %d must be in [0,%d)", overlap, chunkSize)
	}

	f, err := os.Open(s.seqPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("seqstore: open sequence: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("seqstore: stat sequence: %w", err)
	}
	length := int(fi.Size())

	step := chunkSize - overlap
	buf := make([]byte, chunkSize)
	for start := 0; start < length; start += step {
		end := start + chunkSize
		if end > length {
			end = length
		}
		b := buf[:end-start]
		if _, err := f.ReadAt(b, int64(start)); err != nil && err != io.EOF {
			return fmt.Errorf("seqstore: read chunk at %d: %w", start, err)
		}
		if err := CheckSanitized(b); err != nil {
			return fmt.Errorf("%w (id %s, chunk at %d)", err, id, start)
		}
		if err := fn(b, start, end); err != nil {
			return err
		}
		if end == length {
			break
		}
	}
	return nil
}

// CheckSanitized verifies that b holds no whitespace. Stored sequences are
// sanitized on save, so a violation is ErrCorruptStorage.
func CheckSanitized(b []byte) error {
	for i, c := range b {
		if isSpace(c) {
			return fmt.Errorf("%w (offset %d)", ErrCorruptStorage, i)
		}
	}
	return nil
}

// ChunkBounds computes the chunk boundaries Chunks would produce for a
// sequence of the given length without reading any data. Bounds use the
// same half-open convention as Chunks.
func ChunkBounds(length, chunkSize, overlap int) [][2]int {
	if chunkSize <= 0 || length <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil
	}
	step := chunkSize - overlap
	var bounds [][2]int
	for start := 0; start < length; start += step {
		end := start + chunkSize
		if end > length {
			end = length
		}
		bounds = append(bounds, [2]int{start, end})
		if end == length {
			break
		}
	}
	return bounds
}
