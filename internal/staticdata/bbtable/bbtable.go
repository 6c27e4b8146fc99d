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
* Loader for bb_table.bin, the 1024-word S-box constant table consumed
* by the Blue Burst cipher's key schedule.
 */
package bbtable

import (
	"encoding/binary"
	"fmt"
	"os"
)

const WordCount = 1024

// Load reads exactly WordCount little-endian u32 words from path. Any
// other file size is a load-time error; the cipher depends on having
// the full table available before the first client connects.
func Load(path string) ([1024]uint32, error) {
	var table [1024]uint32

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("bbtable: %w", err)
	}
	if len(data) != WordCount*4 {
		return table, fmt.Errorf(
			"bbtable: %s must be exactly %d bytes, got %d", path, WordCount*4, len(data))
	}
	for i := range table {
		table[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	return table, nil
}
