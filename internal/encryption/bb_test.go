package encryption

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testBBTable() [1024]uint32 {
	var table [1024]uint32
	// Deterministic stand-in for the real bb_table.bin contents, which
	// are loaded at runtime by internal/staticdata/bbtable. This fixture
	// only needs to be identical on both sides of a round trip test, not
	// bit-compatible with the shipped client.
	x := uint32(0x9E3779B9)
	for i := range table {
		x = x*1664525 + 1013904223
		table[i] = x
	}
	return table
}

var fixedTestSeed = []byte(
	"012345678901234567890123456789012345678901234567")

func TestBBCipherRoundTrip(t *testing.T) {
	require.Len(t, fixedTestSeed, 48)
	table := testBBTable()

	enc := NewBBCipher(fixedTestSeed, table)
	dec := NewBBCipher(fixedTestSeed, table)

	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = byte(i * 7)
	}
	original := append([]byte(nil), buf...)

	enc.Encrypt(buf)
	require.NotEqual(t, original, buf)
	dec.Decrypt(buf)
	require.Equal(t, original, buf)
}

// wantKeySchedule is the captured keys[0..18] vector the Blue Burst
// key schedule must reproduce for fixedTestSeed against testBBTable():
// a regression fixture, not just a "ran twice and matched" check, so
// an accidental change to the Feistel core or the P-constant/seed
// folding trips this test even if both sides of a round trip still
// happen to agree with each other.
var wantKeySchedule = [18]uint32{
	0x83C9578E, 0xA23C8E6B, 0x50D34208, 0x0797E46A,
	0xE0109B26, 0x9D4E2F54, 0x0CD91BE1, 0x44F3E7FB,
	0xC8651108, 0x39B77F67, 0xD6D7B1D4, 0x4216F636,
	0xE6CE7597, 0xD697EA37, 0x627BBEB8, 0x4A7F9DD8,
	0x97F44B3B, 0x896C4F7A,
}

func TestBBCipherKeyScheduleMatchesFixture(t *testing.T) {
	c := NewBBCipher(fixedTestSeed, testBBTable())
	require.Equal(t, wantKeySchedule[:], c.keys[:18])
}

func TestBBCipherPanicsOnMisalignedBuffer(t *testing.T) {
	defer func() {
		require.NotNil(t, recover())
	}()
	NewBBCipher(fixedTestSeed, testBBTable()).Encrypt(make([]byte, 5))
}

func TestBBCipherZeroLengthBuffer(t *testing.T) {
	c := NewBBCipher(fixedTestSeed, testBBTable())
	buf := []byte{}
	require.NotPanics(t, func() { c.Encrypt(buf) })
}
