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
* PC framing, used by the patch and data services: a 4-byte header
* followed by a payload zero-padded to a multiple of 4. The header
* (but not the padding) is ciphered.
 */
package proto

import (
	"encoding/binary"
	"fmt"

	"github.com/dcrodman/archon/internal/encryption"
)

const PCHeaderSize = 4

// EncodePC builds a complete wire-ready PC frame: header + payload
// padded to a multiple of 4. It does not encrypt; callers encrypt the
// returned buffer with the connection's server cipher before writing
// it to the socket (or not at all before the cipher is installed, as
// with the very first Welcome packet).
func EncodePC(msgType uint16, payload []byte) []byte {
	padded := padTo(len(payload), 4)
	buf := make([]byte, PCHeaderSize+padded)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(PCHeaderSize+padded))
	binary.LittleEndian.PutUint16(buf[2:4], msgType)
	copy(buf[PCHeaderSize:], payload)
	return buf
}

// PCFrame is a fully decoded PC message: its type and the meaningful
// (unpadded) payload bytes.
type PCFrame struct {
	Type    uint16
	Payload []byte
}

// PCReadState models the incremental framing state machine a
// single-threaded reactor drives as bytes arrive: first the fixed
// header, then the (possibly padded) body.
type PCReadState int

const (
	PCReadingHeader PCReadState = iota
	PCReadingBody
)

// PCDecoder decodes a stream of PC frames from a byte-oriented
// transport, applying a cipher to header bytes and to the meaningful
// (non-padding) body bytes only, per the PC framing rule.
type PCDecoder struct {
	cipher  encryption.Cipher
	state   PCReadState
	header  [PCHeaderSize]byte
	haveHdr int
	declLen uint16
	msgType uint16
	body    []byte
	haveBdy int
}

// NewPCDecoder constructs a decoder. cipher may be nil until the
// client's Welcome handshake completes.
func NewPCDecoder() *PCDecoder { return &PCDecoder{} }

// SetCipher installs the cipher used to decrypt subsequent frames.
func (d *PCDecoder) SetCipher(c encryption.Cipher) { d.cipher = c }

// Feed consumes as much of data as forms complete frames and returns
// them, along with the number of bytes consumed. Call Feed again with
// any unconsumed remainder appended to the next read.
func (d *PCDecoder) Feed(data []byte) ([]PCFrame, int, error) {
	var frames []PCFrame
	consumed := 0

	for consumed < len(data) {
		switch d.state {
		case PCReadingHeader:
			n := copy(d.header[d.haveHdr:], data[consumed:])
			d.haveHdr += n
			consumed += n
			if d.haveHdr < PCHeaderSize {
				return frames, consumed, nil
			}
			hdr := append([]byte(nil), d.header[:]...)
			if d.cipher != nil {
				d.cipher.Decrypt(hdr)
			}
			d.declLen = binary.LittleEndian.Uint16(hdr[0:2])
			d.msgType = binary.LittleEndian.Uint16(hdr[2:4])
			if d.declLen < PCHeaderSize {
				return frames, consumed, fmt.Errorf("proto: pc frame length %d shorter than header", d.declLen)
			}
			padded := padTo(int(d.declLen), 4)
			d.body = make([]byte, padded-PCHeaderSize)
			d.haveBdy = 0
			d.state = PCReadingBody
			if len(d.body) == 0 {
				frames = append(frames, d.finishFrame())
			}

		case PCReadingBody:
			n := copy(d.body[d.haveBdy:], data[consumed:])
			d.haveBdy += n
			consumed += n
			if d.haveBdy < len(d.body) {
				return frames, consumed, nil
			}
			frames = append(frames, d.finishFrame())
		}
	}
	return frames, consumed, nil
}

func (d *PCDecoder) finishFrame() PCFrame {
	contentLen := int(d.declLen) - PCHeaderSize
	if d.cipher != nil && contentLen > 0 {
		// Only the meaningful content bytes are ciphered in the PC
		// direction; any trailing padding bytes are left alone.
		d.cipher.Decrypt(d.body[:contentLen])
	}
	frame := PCFrame{Type: d.msgType, Payload: append([]byte(nil), d.body[:contentLen]...)}
	d.state = PCReadingHeader
	d.haveHdr = 0
	d.body = nil
	d.haveBdy = 0
	return frame
}

func padTo(n, mult int) int {
	if n%mult == 0 {
		return n
	}
	return n + (mult - n%mult)
}
