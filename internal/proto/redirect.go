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
* Redirect is the one payload in either the PC or BB wire format whose
* integers are big-endian while everything around it is little-endian.
* Isolated here in its own encoder/decoder so that anomaly can never
* leak into the general-purpose serial helpers.
 */
package proto

import "github.com/dcrodman/archon/internal/serial"

// EncodeRedirectBody writes the 8-byte Redirect payload: IP and port
// in network byte order, followed by two zero padding bytes.
func EncodeRedirectBody(ip [4]byte, port uint16) []byte {
	w := serial.NewWriter()
	w.IPv4(ip)
	w.U16BE(port)
	w.U16(0)
	return w.Bytes()
}

// DecodeRedirectBody is the inverse of EncodeRedirectBody.
func DecodeRedirectBody(body []byte) (ip [4]byte, port uint16) {
	r := serial.NewReader(body)
	ip = r.IPv4()
	port = r.U16BE()
	return ip, port
}
