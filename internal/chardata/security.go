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
 */
package chardata

import "github.com/dcrodman/archon/internal/serial"

// HandoffMagic marks a SecurityData that the server has already
// stamped with a server-assigned identity; a fresh client connection
// carries a zero magic.
const HandoffMagic uint32 = 0xCAFEB00B

// SecurityData is echoed back and forth between client and server
// across the login redirect-to-self handshake (spec section 4.5).
// Exactly 40 bytes on the wire.
type SecurityData struct {
	Magic    uint32
	Slot     uint8
	SelChar  uint8
	Reserved [34]byte
}

const SecurityDataSize = 40

func (s SecurityData) Encode(w *serial.Writer) {
	w.U32(s.Magic)
	w.U8(s.Slot)
	w.U8(s.SelChar)
	w.FixedBytes(s.Reserved[:], 34)
}

func DecodeSecurityData(r *serial.Reader) SecurityData {
	var s SecurityData
	s.Magic = r.U32()
	s.Slot = r.U8()
	s.SelChar = r.U8()
	copy(s.Reserved[:], r.FixedBytes(34))
	return s
}
