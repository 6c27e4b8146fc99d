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
* GSL archive reader for ItemPT.gsl / ItemRT.gsl. The file table is a
* flat array of 48-byte entries (32-byte name, offset*2048, size,
* reserved) terminated by a zeroed entry; PSO tools ship both
* little-endian and big-endian variants of this format, so the reader
* picks whichever byte order keeps every entry's offset/size inside the
* file, breaking a tie by how closely the furthest-reaching entry ends
* at the file's actual length.
 */
package gsl

import (
	"encoding/binary"
	"fmt"
	"os"
)

const entrySize = 48

type entry struct {
	name   string
	offset int64
	size   int64
}

// Archive is a parsed GSL file table with the backing bytes retained
// so Lookup can slice directly into it.
type Archive struct {
	data    []byte
	entries []entry
}

// Load reads and parses the GSL archive at path.
func Load(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gsl: %w", err)
	}
	return Parse(data)
}

// Parse parses an in-memory GSL archive, auto-detecting endianness.
func Parse(data []byte) (*Archive, error) {
	leEntries, leOK := parseTable(data, binary.LittleEndian)
	beEntries, beOK := parseTable(data, binary.BigEndian)

	switch {
	case leOK && !beOK:
		return &Archive{data: data, entries: leEntries}, nil
	case beOK && !leOK:
		return &Archive{data: data, entries: beEntries}, nil
	case leOK && beOK:
		// Both parse without overrunning the file; prefer the byte
		// order whose furthest-reaching entry ends closest to the file
		// size, per the size-plausibility heuristic.
		if tighterFit(leEntries, data) <= tighterFit(beEntries, data) {
			return &Archive{data: data, entries: leEntries}, nil
		}
		return &Archive{data: data, entries: beEntries}, nil
	default:
		return nil, fmt.Errorf("gsl: could not determine byte order for archive of %d bytes", len(data))
	}
}

func tighterFit(entries []entry, data []byte) int64 {
	var maxEnd int64
	for _, e := range entries {
		if end := e.offset + e.size; end > maxEnd {
			maxEnd = end
		}
	}
	diff := int64(len(data)) - maxEnd
	if diff < 0 {
		diff = -diff
	}
	return diff
}

func parseTable(data []byte, order binary.ByteOrder) ([]entry, bool) {
	var entries []entry
	for off := 0; off+entrySize <= len(data); off += entrySize {
		rec := data[off : off+entrySize]
		if allZero(rec) {
			return entries, true
		}
		nameEnd := 0
		for nameEnd < 32 && rec[nameEnd] != 0 {
			nameEnd++
		}
		name := string(rec[:nameEnd])
		rawOffset := order.Uint32(rec[32:36])
		size := order.Uint32(rec[36:40])
		offset := int64(rawOffset) * 2048

		if offset+int64(size) > int64(len(data)) {
			return nil, false
		}
		entries = append(entries, entry{name: name, offset: offset, size: int64(size)})
	}
	return nil, false // ran off the end of the file without a terminator
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Lookup returns the named member's bytes, or false if it isn't
// present in the archive.
func (a *Archive) Lookup(name string) ([]byte, bool) {
	for _, e := range a.entries {
		if e.name == name {
			return a.data[e.offset : e.offset+e.size], true
		}
	}
	return nil, false
}

// Names returns every member name in table order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.name
	}
	return names
}
