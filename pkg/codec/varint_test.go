package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 300, 1 << 20, 1<<32 - 1} {
		enc := PutUvarint(nil, v)
		got, n, err := Uvarint(enc)
		require.NoError(t, err)
		require.Equal(t, len(enc), n)
		require.Equal(t, v, got)
		require.LessOrEqual(t, len(enc), MaxVarintBytes)
	}
}

func TestUvarintTruncated(t *testing.T) {
	_, _, err := Uvarint([]byte{0x80, 0x80})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestUvarintTruncatedBeyondMaxBytes(t *testing.T) {
	_, _, err := Uvarint([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestCodepointsUTF8RoundTrip(t *testing.T) {
	word := []rune("héllo wörld")
	b := CodepointsToUTF8(word)
	require.True(t, IsValidUTF8(b))
	require.Equal(t, word, UTF8ToCodepoints(b))
}

func TestIsValidUTF8RejectsBadBytes(t *testing.T) {
	require.False(t, IsValidUTF8([]byte{0xff, 0xfe}))
}
