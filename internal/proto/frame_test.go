package proto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcrodman/archon/internal/encryption"
)

func TestPCFramingNoPaddingNeeded(t *testing.T) {
	frame := EncodePC(0x10, []byte{1, 2, 3, 4})
	require.Len(t, frame, 8)
	require.Equal(t, uint16(8), uint16(frame[0])|uint16(frame[1])<<8)
}

func TestPCFramingRoundTripPlain(t *testing.T) {
	payload := []byte("hello!") // 6 bytes -> pads to 8
	frame := EncodePC(0x11, payload)

	d := NewPCDecoder()
	frames, consumed, err := d.Feed(frame)
	require.NoError(t, err)
	require.Equal(t, len(frame), consumed)
	require.Len(t, frames, 1)
	require.Equal(t, uint16(0x11), frames[0].Type)
	// The length field counts the padding, so the two pad bytes come back.
	require.Equal(t, append(append([]byte(nil), payload...), 0, 0), frames[0].Payload)
}

func TestPCFramingRoundTripEncrypted(t *testing.T) {
	payload := []byte("a longer message body here")
	serverCipher := encryption.NewPCCipher(0xCAFEBABE)
	clientCipher := encryption.NewPCCipher(0xCAFEBABE)

	frame := EncodePC(0x20, payload) // 26 bytes -> pads to 28
	// The length field counts the padding, so the header and the whole
	// padded body are the bytes the PC cipher covers.
	header := frame[:PCHeaderSize]
	content := frame[PCHeaderSize:]
	serverCipher.Encrypt(header)
	serverCipher.Encrypt(content)

	d := NewPCDecoder()
	d.SetCipher(clientCipher)
	frames, _, err := d.Feed(frame)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, append(append([]byte(nil), payload...), 0, 0), frames[0].Payload)
}

func TestPCFramingSplitAcrossReads(t *testing.T) {
	payload := []byte("split me across two feeds") // 25 bytes -> pads to 28
	frame := EncodePC(0x30, payload)

	d := NewPCDecoder()
	frames, _, err := d.Feed(frame[:5])
	require.NoError(t, err)
	require.Empty(t, frames)

	frames, _, err = d.Feed(frame[5:])
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, append(append([]byte(nil), payload...), 0, 0, 0), frames[0].Payload)
}

func TestBBFramingZeroLengthBody(t *testing.T) {
	frame := EncodeBB(0x03, 0, nil)
	require.Len(t, frame, BBHeaderSize)

	d := NewBBDecoder()
	frames, consumed, err := d.Feed(frame)
	require.NoError(t, err)
	require.Equal(t, BBHeaderSize, consumed)
	require.Len(t, frames, 1)
	require.Empty(t, frames[0].Payload)
}

func TestBBFramingPaddingIsCiphered(t *testing.T) {
	payload := []byte("12345") // 5 bytes -> total 13 -> padded to 16
	frame := EncodeBB(0x04, 7, payload)
	require.Len(t, frame, 16)

	table := testTable()
	seed := []byte("012345678901234567890123456789012345678901234567"[:48])
	serverCipher := encryption.NewBBCipher(seed, table)
	clientCipher := encryption.NewBBCipher(seed, table)

	serverCipher.Encrypt(frame) // header + full padded body, per BB framing rule

	d := NewBBDecoder()
	d.SetCipher(clientCipher)
	frames, _, err := d.Feed(frame)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, uint16(0x04), frames[0].Type)
	require.Equal(t, uint32(7), frames[0].Flags)
	require.Equal(t, payload, frames[0].Payload)
}

func TestRedirectUsesBigEndian(t *testing.T) {
	body := EncodeRedirectBody([4]byte{127, 0, 0, 1}, 0x2AF9)
	require.Equal(t, []byte{0x7F, 0x00, 0x00, 0x01, 0x2A, 0xF9, 0x00, 0x00}, body)

	ip, port := DecodeRedirectBody(body)
	require.Equal(t, [4]byte{127, 0, 0, 1}, ip)
	require.Equal(t, uint16(0x2AF9), port)
}

func testTable() [1024]uint32 {
	var table [1024]uint32
	x := uint32(0x9E3779B9)
	for i := range table {
		x = x*1664525 + 1013904223
		table[i] = x
	}
	return table
}
