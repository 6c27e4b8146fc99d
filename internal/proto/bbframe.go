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
* BB framing, used by login/ship/block: an 8-byte header followed by a
* payload zero-padded to a multiple of 8. Unlike PC framing, the
* padding bytes ARE fed through the cipher, because the header and
* body of a BB message are one contiguous ciphered stream.
 */
package proto

import (
	"encoding/binary"
	"fmt"

	"github.com/dcrodman/archon/internal/encryption"
)

const BBHeaderSize = 8

// EncodeBB builds a complete, unencrypted wire-ready BB frame.
func EncodeBB(msgType uint16, flags uint32, payload []byte) []byte {
	totalLen := BBHeaderSize + len(payload)
	padded := padTo(totalLen, 8)
	buf := make([]byte, padded)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(totalLen))
	binary.LittleEndian.PutUint16(buf[2:4], msgType)
	binary.LittleEndian.PutUint32(buf[4:8], flags)
	copy(buf[BBHeaderSize:], payload)
	return buf
}

// BBFrame is a fully decoded BB message.
type BBFrame struct {
	Type    uint16
	Flags   uint32
	Payload []byte
}

type bbReadState int

const (
	bbReadingHeader bbReadState = iota
	bbReadingBody
)

// BBDecoder decodes a stream of BB frames. The header and the padded
// body are both run through the cipher as one contiguous stream, but
// only the first (len-8) payload bytes are handed to the parser; the
// rest is padding, discarded after decryption.
type BBDecoder struct {
	cipher  encryption.Cipher
	state   bbReadState
	header  [BBHeaderSize]byte
	haveHdr int
	declLen uint16
	msgType uint16
	flags   uint32
	body    []byte
	haveBdy int
}

func NewBBDecoder() *BBDecoder { return &BBDecoder{} }

func (d *BBDecoder) SetCipher(c encryption.Cipher) { d.cipher = c }

func (d *BBDecoder) Feed(data []byte) ([]BBFrame, int, error) {
	var frames []BBFrame
	consumed := 0

	for consumed < len(data) {
		switch d.state {
		case bbReadingHeader:
			n := copy(d.header[d.haveHdr:], data[consumed:])
			d.haveHdr += n
			consumed += n
			if d.haveHdr < BBHeaderSize {
				return frames, consumed, nil
			}
			hdr := append([]byte(nil), d.header[:]...)
			if d.cipher != nil {
				d.cipher.Decrypt(hdr)
			}
			d.declLen = binary.LittleEndian.Uint16(hdr[0:2])
			d.msgType = binary.LittleEndian.Uint16(hdr[2:4])
			d.flags = binary.LittleEndian.Uint32(hdr[4:8])
			if d.declLen < BBHeaderSize {
				return frames, consumed, fmt.Errorf("proto: bb frame length %d shorter than header", d.declLen)
			}
			padded := padTo(int(d.declLen), 8)
			d.body = make([]byte, padded-BBHeaderSize)
			d.haveBdy = 0
			d.state = bbReadingBody
			if len(d.body) == 0 {
				frames = append(frames, d.finishFrame())
			}

		case bbReadingBody:
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

func (d *BBDecoder) finishFrame() BBFrame {
	if d.cipher != nil && len(d.body) > 0 {
		// The full padded body is ciphered, unlike PC framing.
		d.cipher.Decrypt(d.body)
	}
	meaningful := int(d.declLen) - BBHeaderSize
	frame := BBFrame{
		Type:    d.msgType,
		Flags:   d.flags,
		Payload: append([]byte(nil), d.body[:meaningful]...),
	}
	d.state = bbReadingHeader
	d.haveHdr = 0
	d.body = nil
	d.haveBdy = 0
	return frame
}
