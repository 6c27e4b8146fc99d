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
package hexdump

import (
	"strconv"
	"strings"
)

const displayWidth = 16

// Dump renders data as a two-column hex/ASCII dump, one line per 16
// bytes, for trace-level logging of raw frames on the wire.
func Dump(data []byte) string {
	var b strings.Builder
	for offset := 0; offset < len(data); offset += displayWidth {
		end := offset + displayWidth
		if end > len(data) {
			end = len(data)
		}
		writeLine(&b, data[offset:end], offset)
	}
	return b.String()
}

func writeLine(b *strings.Builder, line []byte, offset int) {
	b.WriteString(hexOffset(offset))
	b.WriteString(") ")

	for i := 0; i < displayWidth; i++ {
		if i == 8 {
			b.WriteString("  ")
		}
		if i < len(line) {
			b.WriteString(byteHex(line[i]))
			b.WriteByte(' ')
		} else {
			b.WriteString("   ")
		}
	}
	b.WriteString("   ")

	for _, c := range line {
		if strconv.IsPrint(rune(c)) {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	b.WriteByte('\n')
}

func hexOffset(offset int) string {
	s := strconv.FormatInt(int64(offset), 16)
	for len(s) < 4 {
		s = "0" + s
	}
	return "(" + strings.ToUpper(s)
}

func byteHex(v byte) string {
	s := strconv.FormatInt(int64(v), 16)
	if len(s) < 2 {
		s = "0" + s
	}
	return s
}
