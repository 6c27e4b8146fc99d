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
* BattleParamEntry*.bin loader: per-enemy combat stats and EXP award,
* indexed by (param_entry, episode, single_player, difficulty). The
* real client ships one file per (episode, single_player) combination,
* each holding one 64-byte record per param_entry per difficulty; this
* loader is handed the already-split file set by its caller and
* flattens them into one lookup table.
 */
package battleparam

import (
	"encoding/binary"
	"fmt"
	"os"
)

const recordSize = 64

// Entry is one enemy's combat stat block and EXP award for a
// particular episode/mode/difficulty.
type Entry struct {
	ATP, MST, EVP, HP, DFP, ATA uint16
	EXP                         uint32
}

type key struct {
	paramEntry   byte
	episode      uint8
	singlePlayer bool
	difficulty   uint8
}

// Table is the flattened, read-only lookup surface the block service
// queries during EXP arbitration (spec.md section 4.8).
type Table struct {
	entries map[key]Entry
}

// Source names one on-disk BattleParamEntry file and the
// (episode, single_player) combination it covers. The file holds
// records for all four difficulties back to back, 0x60 (96) entries
// per difficulty in the real format; this loader reads whatever
// multiple of recordSize the file contains, one difficulty band at a
// time, in increasing difficulty order.
type Source struct {
	Path         string
	Episode      uint8
	SinglePlayer bool
}

// Load reads every source file and assembles the flattened table.
func Load(sources []Source) (*Table, error) {
	t := &Table{entries: map[key]Entry{}}
	for _, src := range sources {
		if err := t.loadOne(src); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) loadOne(src Source) error {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return fmt.Errorf("battleparam: %w", err)
	}
	if len(data)%recordSize != 0 {
		return fmt.Errorf("battleparam: %s size %d is not a multiple of %d", src.Path, len(data), recordSize)
	}
	totalRecords := len(data) / recordSize
	const difficulties = 4
	perDifficulty := totalRecords / difficulties
	if perDifficulty == 0 {
		return fmt.Errorf("battleparam: %s too small to split across %d difficulties", src.Path, difficulties)
	}

	for diff := 0; diff < difficulties; diff++ {
		for i := 0; i < perDifficulty; i++ {
			off := (diff*perDifficulty + i) * recordSize
			rec := data[off : off+recordSize]
			e := Entry{
				ATP: binary.LittleEndian.Uint16(rec[0:2]),
				MST: binary.LittleEndian.Uint16(rec[2:4]),
				EVP: binary.LittleEndian.Uint16(rec[4:6]),
				HP:  binary.LittleEndian.Uint16(rec[6:8]),
				DFP: binary.LittleEndian.Uint16(rec[8:10]),
				ATA: binary.LittleEndian.Uint16(rec[10:12]),
				EXP: binary.LittleEndian.Uint32(rec[12:16]),
			}
			k := key{paramEntry: byte(i), episode: src.Episode, singlePlayer: src.SinglePlayer, difficulty: uint8(diff)}
			t.entries[k] = e
		}
	}
	return nil
}

// Lookup returns the entry for the given param_entry/episode/mode/
// difficulty combination, per spec.md section 4.8 step 2.
func (t *Table) Lookup(paramEntry byte, episode uint8, singlePlayer bool, difficulty uint8) (Entry, bool) {
	e, ok := t.entries[key{paramEntry, episode, singlePlayer, difficulty}]
	return e, ok
}
