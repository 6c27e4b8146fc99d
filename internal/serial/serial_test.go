package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedASCIIRoundTrip(t *testing.T) {
	w := NewWriter()
	w.FixedASCII("hello", 16)
	r := NewReader(w.Bytes())
	require.Equal(t, 16, r.Remaining())
	require.Equal(t, "hello", r.FixedASCII(16))
}

func TestFixedASCIITruncates(t *testing.T) {
	w := NewWriter()
	w.FixedASCII("this string is far too long for four bytes", 4)
	require.Len(t, w.Bytes(), 4)
}

func TestFixedUTF16RoundTrip(t *testing.T) {
	w := NewWriter()
	w.FixedUTF16("Nova", 16)
	require.Len(t, w.Bytes(), 32)
	r := NewReader(w.Bytes())
	require.Equal(t, "Nova", r.FixedUTF16(16))
}

func TestVarUTF16RoundTrip(t *testing.T) {
	w := NewWriter()
	w.VarUTF16("Hello")
	r := NewReader(w.Bytes())
	require.Equal(t, "Hello", r.VarUTF16())
}

func TestFixedBytesZeroPadsShort(t *testing.T) {
	w := NewWriter()
	w.FixedBytes([]byte{1, 2, 3}, 8)
	require.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, w.Bytes())
}

func TestIPv4RoundTrip(t *testing.T) {
	w := NewWriter()
	addr := [4]byte{127, 0, 0, 1}
	w.IPv4(addr)
	r := NewReader(w.Bytes())
	require.Equal(t, addr, r.IPv4())
}

func TestIntegerEndianness(t *testing.T) {
	w := NewWriter()
	w.U16(0x1234)
	w.U32BE(0x89ABCDEF)
	r := NewReader(w.Bytes())
	require.Equal(t, uint16(0x1234), r.U16())
	require.Equal(t, uint32(0x89ABCDEF), r.U32BE())
}

func TestShortReadPanics(t *testing.T) {
	r := NewReader([]byte{1, 2})
	require.Panics(t, func() { r.U32() })
}
