package encryption

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPCCipherRoundTrip(t *testing.T) {
	seeds := []uint32{0, 1, 0xDEADBEEF, 0x12345678}
	for _, seed := range seeds {
		enc := NewPCCipher(seed)
		dec := NewPCCipher(seed)

		rng := rand.New(rand.NewSource(int64(seed)))
		buf := make([]byte, 256)
		rng.Read(buf)
		original := append([]byte(nil), buf...)

		enc.Encrypt(buf)
		require.NotEqual(t, original, buf)
		dec.Decrypt(buf)
		require.Equal(t, original, buf)
	}
}

func TestPCCipherPanicsOnMisalignedBuffer(t *testing.T) {
	defer func() {
		require.NotNil(t, recover())
	}()
	NewPCCipher(1).Encrypt(make([]byte, 5))
}

func TestPCCipherMixesEvery55Keys(t *testing.T) {
	c := NewPCCipher(42)
	buf := make([]byte, 55*4)
	c.Encrypt(buf)
	// After 55 words the cursor sits at pcKeyCount-1 (56), still inside
	// [1, pcKeyCount); the next word triggers a mix and resets it to 1.
	require.GreaterOrEqual(t, c.pos, 1)
	require.Less(t, c.pos, pcKeyCount)
}
