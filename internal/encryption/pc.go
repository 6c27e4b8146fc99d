/*
* Archon PSO Server
* Copyright (C) 2014 Andrew Rodman
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
* ---------------------------------------------------------------------
* The PC/Dreamcast stream cipher used by the patch and data services.
 */
package encryption

import "encoding/binary"

const pcKeyCount = 57

// PCCipher implements the 57-word key-schedule stream cipher used by the
// PSO PC/Dreamcast patch and data protocol. It operates on the input
// 4 bytes at a time; buffers whose length isn't a multiple of 4 are a
// protocol error and panic.
type PCCipher struct {
	keys []uint32
	pos  int
	seed uint32
}

// NewPCCipher builds the key schedule for the given 32-bit seed. The
// same seed, sent by the server in the unencrypted Welcome packet,
// must be used to construct the peer's matching cipher instance.
func NewPCCipher(seed uint32) *PCCipher {
	c := &PCCipher{keys: genPCKeys(seed), pos: pcKeyCount - 1, seed: seed}
	return c
}

// Seed returns the value the cipher was constructed with.
func (c *PCCipher) Seed() uint32 { return c.seed }

func (c *PCCipher) nextKey() uint32 {
	if c.pos == pcKeyCount-1 {
		mixPCKeys(c.keys)
		c.pos = 1
	}
	k := c.keys[c.pos]
	c.pos++
	return k
}

// Encrypt and Decrypt are identical: the cipher XORs each input word
// with the next keystream word.
func (c *PCCipher) Encrypt(buf []byte) { c.process(buf) }
func (c *PCCipher) Decrypt(buf []byte) { c.process(buf) }

func (c *PCCipher) process(buf []byte) {
	if len(buf)%4 != 0 {
		panic("pc cipher: buffer length must be a multiple of 4")
	}
	for i := 0; i < len(buf); i += 4 {
		word := binary.LittleEndian.Uint32(buf[i : i+4])
		word ^= c.nextKey()
		binary.LittleEndian.PutUint32(buf[i:i+4], word)
	}
}

// genPCKeys builds the 57-word schedule from the seed, then mixes it
// four times before first use, as required by the client.
func genPCKeys(seed uint32) []uint32 {
	keys := make([]uint32, pcKeyCount)

	esi := uint32(1)
	ebx := seed
	keys[56] = ebx
	keys[55] = ebx

	for edi := 0x15; edi <= 0x46E; edi += 0x15 {
		edx := edi % 55
		oldEsi := esi
		keys[edx] = oldEsi
		esi = ebx - oldEsi
		ebx = keys[edx]
	}

	for i := 0; i < 4; i++ {
		mixPCKeys(keys)
	}
	return keys
}

// mixPCKeys permutes the schedule in place. Invoked once every 55
// consumed keys (i.e. every time the cursor wraps).
func mixPCKeys(keys []uint32) {
	for i := 1; i <= 0x18; i++ {
		keys[i] -= keys[i+0x1F]
	}
	for i := 0x19; i <= 0x37; i++ {
		keys[i] -= keys[i-0x18]
	}
}
