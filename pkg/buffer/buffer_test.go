package buffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryWriteReadRoundTrip(t *testing.T) {
	b := NewInMemory(4)
	off, err := b.Append([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 0, off)

	got, err := b.Read(0, 5)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
	require.Equal(t, 5, b.Size())
}

func TestWriteInPlace(t *testing.T) {
	b := NewInMemory(0)
	b.Append([]byte("hello"))
	require.NoError(t, b.Write(0, []byte("H")))

	got, _ := b.Read(0, 5)
	require.Equal(t, "Hello", string(got))
}

func TestReadOutOfRange(t *testing.T) {
	b := NewInMemory(0)
	b.Append([]byte("hi"))
	_, err := b.Read(0, 10)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestWriteRejectedOnReadOnlyBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	b, err := OpenFile(path, false)
	require.NoError(t, err)
	defer b.Close()

	require.False(t, b.Writable())
	err = b.Write(0, []byte("x"))
	require.ErrorIs(t, err, ErrReadOnly)

	_, err = b.Append([]byte("x"))
	require.ErrorIs(t, err, ErrReadOnly)
}

func TestOpenFileUpdatableAllowsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	b, err := OpenFile(path, true)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Write(0, []byte("X")))
	got, err := b.Read(0, 1)
	require.NoError(t, err)
	require.Equal(t, "X", string(got))
}

func TestOpenFileAppendRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	b, err := OpenFile(path, true)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Append([]byte("x"))
	require.Error(t, err)
}

func TestOpenFileRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := OpenFile(path, false)
	require.Error(t, err)
}

func TestOpenFileRejectsMissingFile(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "nope.bin"), false)
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	b := NewInMemory(0)
	b.Append([]byte("hello world"))
	require.NoError(t, b.Truncate(5))
	require.Equal(t, "hello", string(b.Bytes()))
}
