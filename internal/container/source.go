package container

import "fmt"

// BoundsError reports a range check failure; callers translate it to
// ResultCorruptData. A short stream read is reported as *ErrShortRead
// instead.
type BoundsError struct {
	Offset, Length, Limit int64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("container: read of %d bytes at offset %d exceeds limit %d", e.Length, e.Offset, e.Limit)
}

// inBounds reports whether [offset, offset+length) fits within [0, limit),
// without overflowing when offset approaches the int64 maximum.
func inBounds(offset, length, limit int64) bool {
	if length < 0 || offset < 0 || length > limit {
		return false
	}
	return offset <= limit-length
}

// Stream is a caller-supplied random-access byte source, mirroring the ZEL
// stream callback contract (§6): Read must return exactly len(dst) on
// success, or any other value (together with a non-nil error) on failure.
// Close is optional and is invoked at most once, when the owning Decoder is
// closed.
type Stream struct {
	Read  func(user interface{}, offset int64, dst []byte) (int, error)
	Close func(user interface{}) error
	User  interface{}
	Size  int64
}

// Source is the bounds-checked random-access byte region every parser in
// this package reads through. Its core operation is ReadAt: copy length
// bytes from an absolute offset into a caller-provided destination; Size
// and Slice support it.
type Source interface {
	// ReadAt copies len(dst) bytes starting at offset into dst. It fails
	// with *BoundsError if the range does not fit the source, with the
	// stream's own error if the stream callback returned one, or with
	// *ErrShortRead if the callback returned a count other than len(dst).
	ReadAt(dst []byte, offset int64) error

	// Size returns the total number of bytes in the source.
	Size() int64

	// Slice returns a zero-copy view of length bytes at offset when the
	// source is backed by owned memory, and ok is true. Stream-backed
	// sources always return ok == false; callers fall back to ReadAt into
	// a scratch buffer.
	Slice(offset, length int64) (data []byte, ok bool)
}

// MemorySource is a Source backed by a borrowed, caller-owned byte slice.
// The caller must not mutate or free the slice while the source is in use.
type MemorySource struct {
	Bytes []byte
}

func (m *MemorySource) Size() int64 { return int64(len(m.Bytes)) }

func (m *MemorySource) ReadAt(dst []byte, offset int64) error {
	limit := m.Size()
	length := int64(len(dst))
	if !inBounds(offset, length, limit) {
		return &BoundsError{Offset: offset, Length: length, Limit: limit}
	}
	copy(dst, m.Bytes[offset:offset+length])
	return nil
}

func (m *MemorySource) Slice(offset, length int64) ([]byte, bool) {
	limit := m.Size()
	if !inBounds(offset, length, limit) {
		return nil, false
	}
	return m.Bytes[offset : offset+length], true
}

// ErrShortRead is returned when a stream callback reports a byte count
// other than the requested length.
type ErrShortRead struct {
	Requested, Got int
}

func (e *ErrShortRead) Error() string {
	return fmt.Sprintf("container: stream read returned %d bytes, want %d", e.Got, e.Requested)
}

// StreamSource is a Source backed by a caller-supplied Stream callback.
type StreamSource struct {
	Stream Stream
}

func (s *StreamSource) Size() int64 { return s.Stream.Size }

func (s *StreamSource) ReadAt(dst []byte, offset int64) error {
	limit := s.Size()
	length := int64(len(dst))
	if !inBounds(offset, length, limit) {
		return &BoundsError{Offset: offset, Length: length, Limit: limit}
	}
	if length == 0 {
		return nil
	}
	n, err := s.Stream.Read(s.Stream.User, offset, dst)
	if err != nil {
		return err
	}
	if n != len(dst) {
		return &ErrShortRead{Requested: len(dst), Got: n}
	}
	return nil
}

func (s *StreamSource) Slice(offset, length int64) ([]byte, bool) {
	return nil, false
}

// CloseStream invokes the stream's optional Close callback exactly once.
func CloseStream(s Stream) error {
	if s.Close == nil {
		return nil
	}
	return s.Close(s.User)
}
