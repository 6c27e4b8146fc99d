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
* Loads map_<area><variant>{e,o}.dat: flat arrays of fixed-size enemy
* and object records forming the raw material the enemy expansion
* table (internal/enemygen) turns into an instanced party's enemy
* list.
 */
package maps

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const (
	EnemyRecordSize  = 72
	ObjectRecordSize = 68
)

// MapEnemy is one raw enemy spawn record as it appears in a
// map_<area><variant>e.dat file.
type MapEnemy struct {
	Base       uint32
	Skin       uint32
	NumClones  uint32
	Reserved   [10]uint32
	Reserved2  [10]byte
	FloatArea  uint16
}

// MapObject is one raw object spawn record (doors, warps, telepipes,
// traps) from the corresponding ...o.dat file. Its contents are not
// interpreted by the block service; it is carried through so a future
// gameplay pass can consume it.
type MapObject struct {
	Raw [ObjectRecordSize]byte
}

// AreaID identifies a stage (city, forest 1, caves 2, ...); VariantID
// identifies one of the handful of prebuilt layouts for that stage.
type AreaID uint8
type VariantID uint8

// Areas lists which (area, variant) combinations actually have map
// files on disk for one episode, which is what party creation samples
// from when rolling `variants` (spec.md section 4.8).
type Areas map[AreaID][]VariantID

type Loader struct {
	Ep1Areas Areas
	Ep2Areas Areas
	Ep4Areas Areas

	Enemies map[mapKey][]MapEnemy
	Objects map[mapKey][]MapObject
}

type mapKey struct {
	area    AreaID
	variant VariantID
}

// EnemiesFor returns the raw enemy records for one (area, variant)
// map file, or nil if no such file was loaded.
func (l *Loader) EnemiesFor(area AreaID, variant VariantID) []MapEnemy {
	return l.Enemies[mapKey{area: area, variant: variant}]
}

var fileNamePattern = regexp.MustCompile(`^map_([0-9a-f]{2})([0-9a-f]{2})(e|o)\.dat$`)

// Load walks dir for map_<area><variant>{e,o}.dat files, grouping them
// into Ep1/Ep2/Ep4 buckets by the directory they're found in
// (dir/ep1, dir/ep2, dir/ep4).
func Load(dir string) (*Loader, error) {
	l := &Loader{
		Ep1Areas: Areas{},
		Ep2Areas: Areas{},
		Ep4Areas: Areas{},
		Enemies:  map[mapKey][]MapEnemy{},
		Objects:  map[mapKey][]MapObject{},
	}
	for _, sub := range []struct {
		dir    string
		target Areas
	}{
		{filepath.Join(dir, "ep1"), l.Ep1Areas},
		{filepath.Join(dir, "ep2"), l.Ep2Areas},
		{filepath.Join(dir, "ep4"), l.Ep4Areas},
	} {
		entries, err := os.ReadDir(sub.dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("maps: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			m := fileNamePattern.FindStringSubmatch(entry.Name())
			if m == nil {
				continue
			}
			area := parseHexByte(m[1])
			variant := parseHexByte(m[2])
			key := mapKey{AreaID(area), VariantID(variant)}
			path := filepath.Join(sub.dir, entry.Name())

			if m[3] == "e" {
				enemies, err := loadEnemies(path)
				if err != nil {
					return nil, err
				}
				l.Enemies[key] = enemies
			} else {
				objects, err := loadObjects(path)
				if err != nil {
					return nil, err
				}
				l.Objects[key] = objects
			}
			if _, ok := sub.target[AreaID(area)]; !ok {
				sub.target[AreaID(area)] = nil
			}
			sub.target[AreaID(area)] = appendUnique(sub.target[AreaID(area)], VariantID(variant))
		}
	}
	return l, nil
}

func appendUnique(vs []VariantID, v VariantID) []VariantID {
	for _, existing := range vs {
		if existing == v {
			return vs
		}
	}
	return append(vs, v)
}

func parseHexByte(s string) byte {
	var v byte
	fmt.Sscanf(s, "%02x", &v)
	return v
}

func loadEnemies(path string) ([]MapEnemy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("maps: %w", err)
	}
	if len(data)%EnemyRecordSize != 0 {
		return nil, fmt.Errorf("maps: %s size %d is not a multiple of %d", path, len(data), EnemyRecordSize)
	}
	count := len(data) / EnemyRecordSize
	out := make([]MapEnemy, count)
	for i := 0; i < count; i++ {
		rec := data[i*EnemyRecordSize : (i+1)*EnemyRecordSize]
		e := MapEnemy{
			Base:      binary.LittleEndian.Uint32(rec[0:4]),
			Skin:      binary.LittleEndian.Uint32(rec[4:8]),
			NumClones: binary.LittleEndian.Uint32(rec[8:12]),
		}
		for j := 0; j < 10; j++ {
			e.Reserved[j] = binary.LittleEndian.Uint32(rec[12+j*4 : 16+j*4])
		}
		copy(e.Reserved2[:], rec[52:62])
		e.FloatArea = binary.LittleEndian.Uint16(rec[62:64])
		out[i] = e
	}
	return out, nil
}

func loadObjects(path string) ([]MapObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("maps: %w", err)
	}
	if len(data)%ObjectRecordSize != 0 {
		return nil, fmt.Errorf("maps: %s size %d is not a multiple of %d", path, len(data), ObjectRecordSize)
	}
	count := len(data) / ObjectRecordSize
	out := make([]MapObject, count)
	for i := 0; i < count; i++ {
		copy(out[i].Raw[:], data[i*ObjectRecordSize:(i+1)*ObjectRecordSize])
	}
	return out, nil
}

// Reserved2Flag reports whether bit 0x800000 is set in an enemy's
// reserved2 block, the "alt enemies for area" signal the expansion
// table consults for a handful of base opcodes.
func (e MapEnemy) Reserved2Flag() bool {
	v := binary.LittleEndian.Uint32(e.Reserved2[:4])
	return v&0x800000 != 0
}
