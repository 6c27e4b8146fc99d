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
* The shipgate's own frame format: big-endian, unencrypted, carrying a
* client-assigned correlation key for async request/response matching.
 */
package proto

import (
	"encoding/binary"
	"fmt"
)

const ShipgateHeaderSize = 8

// EncodeShipgate builds a complete shipgate frame.
func EncodeShipgate(msgType uint16, correlationKey uint32, payload []byte) []byte {
	buf := make([]byte, ShipgateHeaderSize+len(payload))
	binary.BigEndian.PutUint16(buf[0:2], uint16(ShipgateHeaderSize+len(payload)))
	binary.BigEndian.PutUint16(buf[2:4], msgType)
	binary.BigEndian.PutUint32(buf[4:8], correlationKey)
	copy(buf[ShipgateHeaderSize:], payload)
	return buf
}

type ShipgateFrame struct {
	Type           uint16
	CorrelationKey uint32
	Payload        []byte
}

type sgReadState int

const (
	sgReadingHeader sgReadState = iota
	sgReadingBody
)

// ShipgateDecoder decodes a stream of shipgate frames. The shipgate
// protocol carries no cipher; its confidentiality comes from being an
// internal-only socket.
type ShipgateDecoder struct {
	state   sgReadState
	header  [ShipgateHeaderSize]byte
	haveHdr int
	declLen uint16
	msgType uint16
	corrKey uint32
	body    []byte
	haveBdy int
}

func NewShipgateDecoder() *ShipgateDecoder { return &ShipgateDecoder{} }

func (d *ShipgateDecoder) Feed(data []byte) ([]ShipgateFrame, int, error) {
	var frames []ShipgateFrame
	consumed := 0

	for consumed < len(data) {
		switch d.state {
		case sgReadingHeader:
			n := copy(d.header[d.haveHdr:], data[consumed:])
			d.haveHdr += n
			consumed += n
			if d.haveHdr < ShipgateHeaderSize {
				return frames, consumed, nil
			}
			d.declLen = binary.BigEndian.Uint16(d.header[0:2])
			d.msgType = binary.BigEndian.Uint16(d.header[2:4])
			d.corrKey = binary.BigEndian.Uint32(d.header[4:8])
			if d.declLen < ShipgateHeaderSize {
				return frames, consumed, fmt.Errorf("proto: shipgate frame length %d shorter than header", d.declLen)
			}
			d.body = make([]byte, int(d.declLen)-ShipgateHeaderSize)
			d.haveBdy = 0
			d.state = sgReadingBody
			if len(d.body) == 0 {
				frames = append(frames, d.finishFrame())
			}

		case sgReadingBody:
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

func (d *ShipgateDecoder) finishFrame() ShipgateFrame {
	frame := ShipgateFrame{Type: d.msgType, CorrelationKey: d.corrKey, Payload: d.body}
	d.state = sgReadingHeader
	d.haveHdr = 0
	d.body = nil
	d.haveBdy = 0
	return frame
}
