// Package buffer implements the random-access byte region backing a
// dictionary (spec.md §2 "Buffer abstraction"): bounded reads, bounded
// writes, and an append region used by the mutable body. A buffer is
// either a plain in-memory byte slice (new, in-memory dictionaries) or a
// memory-mapped file region (opened dictionaries, updatable or not).
package buffer

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrOutOfRange is returned by Read/Write when the requested region
// falls outside the buffer's current extent.
var ErrOutOfRange = errors.New("buffer: region out of range")

// ErrReadOnly is returned by Write/Append on a buffer opened read-only.
var ErrReadOnly = errors.New("buffer: write on read-only buffer")

// Buffer is a random-access byte region with a logical size that may
// grow past its backing capacity via Append.
type Buffer struct {
	data     []byte // backing storage: mmap'd region or plain slice
	size     int    // logical size in use, size <= len(data)
	writable bool
	mmapped  bool
	file     *os.File
}

// NewInMemory creates a writable buffer with no backing file, used for
// freshly-constructed dictionaries before their first flush.
func NewInMemory(initialCapacity int) *Buffer {
	return &Buffer{
		data:     make([]byte, 0, initialCapacity),
		size:     0,
		writable: true,
	}
}

// OpenFile memory-maps path and wraps it in a Buffer. updatable controls
// whether the mapping is writable; a non-updatable buffer rejects Write
// and Append.
func OpenFile(path string, updatable bool) (*Buffer, error) {
	flags := os.O_RDONLY
	prot := unix.PROT_READ
	if updatable {
		flags = os.O_RDWR
		prot |= unix.PROT_WRITE
	}

	file, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "buffer: open %s", path)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "buffer: stat %s", path)
	}
	size := int(info.Size())
	if size == 0 {
		file.Close()
		return nil, errors.Errorf("buffer: %s is empty", path)
	}

	mapFlags := unix.MAP_SHARED
	data, err := unix.Mmap(int(file.Fd()), 0, size, prot, mapFlags)
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "buffer: mmap %s", path)
	}

	return &Buffer{
		data:     data,
		size:     size,
		writable: updatable,
		mmapped:  true,
		file:     file,
	}, nil
}

// Size returns the buffer's current logical size in bytes.
func (b *Buffer) Size() int {
	return b.size
}

// Writable reports whether the buffer accepts Write/Append.
func (b *Buffer) Writable() bool {
	return b.writable
}

// Mmapped reports whether the buffer is backed by a memory-mapped file
// rather than a plain in-memory slice.
func (b *Buffer) Mmapped() bool {
	return b.mmapped
}

// Read returns a view of length n starting at offset. The returned
// slice aliases the buffer; callers must not retain it past a
// subsequent Write/Append/Close on the same buffer.
func (b *Buffer) Read(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > b.size {
		return nil, ErrOutOfRange
	}
	return b.data[offset : offset+n], nil
}

// ReadByte reads a single byte at offset.
func (b *Buffer) ReadByte(offset int) (byte, error) {
	view, err := b.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return view[0], nil
}

// Write copies src into the buffer starting at offset. offset+len(src)
// must not exceed the current logical size; use Append to grow it.
func (b *Buffer) Write(offset int, src []byte) error {
	if !b.writable {
		return ErrReadOnly
	}
	if offset < 0 || offset+len(src) > b.size {
		return ErrOutOfRange
	}
	copy(b.data[offset:], src)
	return nil
}

// Append grows the buffer's logical size by len(src) and copies src
// into the new region, returning the offset it was written at. An
// mmap'd buffer has a fixed-size backing region (its file's size at
// open time) and never grows in place; the façade only appends to
// in-memory buffers, flushing a grown dictionary out to a fresh file
// instead of extending the mapping.
func (b *Buffer) Append(src []byte) (int, error) {
	if !b.writable {
		return 0, ErrReadOnly
	}
	if b.mmapped {
		return 0, errors.New("buffer: cannot append to a memory-mapped buffer")
	}
	offset := b.size
	if offset+len(src) > cap(b.data) {
		grown := make([]byte, offset, growCapacity(cap(b.data), offset+len(src)))
		copy(grown, b.data[:offset])
		b.data = grown
	}
	b.data = b.data[:offset+len(src)]
	copy(b.data[offset:], src)
	b.size = offset + len(src)
	return offset, nil
}

// Truncate shrinks the buffer's logical size to n, used by flushWithGC
// to drop a freshly-rewritten region's stale tail.
func (b *Buffer) Truncate(n int) error {
	if !b.writable {
		return ErrReadOnly
	}
	if n < 0 || n > b.size {
		return ErrOutOfRange
	}
	b.size = n
	b.data = b.data[:n]
	return nil
}

// Bytes returns the buffer's in-use region. The returned slice aliases
// the buffer and must be treated as read-only by callers that did not
// obtain it to perform further Writes through this Buffer.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.size]
}

// Close releases the buffer's backing resources (spec.md §3 lifecycle
// "close releases the buffer").
func (b *Buffer) Close() error {
	if b.mmapped {
		if err := unix.Munmap(b.data[:cap(b.data)]); err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(b.file.Close())
	}
	return nil
}

// growCapacity picks the next backing capacity for an in-memory
// buffer: double until it covers need, same doubling policy as the
// standard append() growth heuristic.
func growCapacity(current, need int) int {
	if current == 0 {
		current = 64
	}
	for current < need {
		current *= 2
	}
	return current
}
