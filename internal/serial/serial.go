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
* Bit-exact leaf encoders/decoders shared by every message variant.
* Unlike the original archon, which serialized whole packets via
* reflection over struct tags, the wire rules here (variable-length
* UTF-16 terminated by a double NUL, truncate-with-warning semantics,
* etc.) don't fit a single reflective walk, so each message type calls
* these primitives explicitly from its own Encode/Decode methods.
 */
package serial

import (
	"encoding/binary"
	"log/slog"
)

// Writer accumulates an encoded message body.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf }
func (w *Writer) Len() int      { return len(w.buf) }

func (w *Writer) U8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) U16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *Writer) U32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *Writer) U64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *Writer) U16BE(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *Writer) U32BE(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }

func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// Pad appends n zero bytes.
func (w *Writer) Pad(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// FixedASCII writes s into exactly n bytes, truncating (with a warning)
// if it's too long and zero-padding if it's short.
func (w *Writer) FixedASCII(s string, n int) {
	b := make([]byte, n)
	src := []byte(s)
	if len(src) > n {
		slog.Warn("serial: ascii field truncated", "field_len", n, "value_len", len(src))
		src = src[:n]
	}
	copy(b, src)
	w.buf = append(w.buf, b...)
}

// FixedUTF16 writes s into exactly n UTF-16LE code units (2*n bytes).
func (w *Writer) FixedUTF16(s string, n int) {
	units := utf16Encode(s)
	if len(units) > n {
		slog.Warn("serial: utf16 field truncated", "field_units", n, "value_units", len(units))
		units = units[:n]
	}
	b := make([]byte, n*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(b[i*2:i*2+2], u)
	}
	w.buf = append(w.buf, b...)
}

// VarUTF16 writes s followed by a double-NUL terminator and no
// declared length (used for MOTD/chat style messages).
func (w *Writer) VarUTF16(s string) {
	units := utf16Encode(s)
	for _, u := range units {
		w.U16(u)
	}
	w.U16(0)
}

// FixedBytes writes exactly n bytes of b, zero-padding if short and
// truncating (with a warning) if long.
func (w *Writer) FixedBytes(b []byte, n int) {
	out := make([]byte, n)
	if len(b) > n {
		slog.Warn("serial: byte array truncated", "field_len", n, "value_len", len(b))
		b = b[:n]
	}
	copy(out, b)
	w.buf = append(w.buf, out...)
}

// IPv4 writes a 4-byte address in packet (big-endian/network) order.
func (w *Writer) IPv4(addr [4]byte) { w.buf = append(w.buf, addr[:]...) }

// Reader walks a decoded message body front to back.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) require(n int) {
	if r.Remaining() < n {
		panic("serial: short read")
	}
}

func (r *Reader) U8() uint8 {
	r.require(1)
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *Reader) U16() uint16 {
	r.require(2)
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *Reader) U32() uint32 {
	r.require(4)
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *Reader) U64() uint64 {
	r.require(8)
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v
}

func (r *Reader) U16BE() uint16 {
	r.require(2)
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *Reader) U32BE() uint32 {
	r.require(4)
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *Reader) Skip(n int) {
	r.require(n)
	r.pos += n
}

// Raw returns the next n bytes without copying.
func (r *Reader) Raw(n int) []byte {
	r.require(n)
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

// FixedASCII reads n bytes and returns the prefix up to the first NUL,
// decoded as ASCII with replacement for invalid bytes.
func (r *Reader) FixedASCII(n int) string {
	b := r.Raw(n)
	return asciiString(b)
}

// FixedUTF16 reads n UTF-16LE code units and returns the prefix up to
// the first double-NUL code unit.
func (r *Reader) FixedUTF16(n int) string {
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		units[i] = r.U16()
	}
	return utf16Decode(trimUTF16(units))
}

// VarUTF16 reads code units until a double-NUL terminator (or the
// buffer is exhausted) and returns the decoded string.
func (r *Reader) VarUTF16() string {
	var units []uint16
	for r.Remaining() >= 2 {
		u := r.U16()
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return utf16Decode(units)
}

func (r *Reader) FixedBytes(n int) []byte {
	return append([]byte(nil), r.Raw(n)...)
}

func (r *Reader) IPv4() [4]byte {
	var addr [4]byte
	copy(addr[:], r.Raw(4))
	return addr
}
