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
* Enemy expansion: turns a map's raw MapEnemy records into the
* InstanceEnemy list a party actually fights, per the base-opcode
* switch in spec.md section 4.8.1. Unknown bases are skipped (with a
* warning), not treated as an error, so expansion is always total over
* any map file the loaders accept.
 */
package enemygen

import (
	"log/slog"

	"github.com/dcrodman/archon/internal/staticdata/maps"
)

// Event is the seasonal palette-swap signal (Christmas/Easter/
// Halloween Rappy recolors) passed down from the block's configured
// event.
type Event uint16

const (
	EventNone Event = iota
	EventChristmas
	EventEaster
	EventHalloween
)

// Episode selects which base-opcode table branch applies; Ep4 reuses
// most of Ep1/Ep2's bases but swaps the Rag Rappy family for the
// Crater/Desert Sand Rappy variants.
type Episode uint8

const (
	Episode1 Episode = 1
	Episode2 Episode = 2
	Episode4 Episode = 4
)

// InstanceEnemy is one fought enemy: the battle-param index used to
// look up its combat stats and EXP award, the RT (drop table) entry,
// and a human-readable name for logging.
type InstanceEnemy struct {
	ParamEntry byte
	RTEntry    byte
	Name       string
}

// base opcodes, as they appear in MapEnemy.Base. Values match the
// literal on-disk opcodes in a real map_<area><variant>e.dat file
// (_examples/original_source/src/block/partyhandler/enemygen.rs),
// not an invented numbering.
const (
	baseHildebear       = 0x40
	baseRappy           = 0x41
	baseMonest          = 0x42
	baseSavageWolf      = 0x43
	baseBooma           = 0x44
	baseGrassAssassin   = 0x45
	baseDarkGunner      = 0x46
	basePoisonLily      = 0x48
	baseNanoDragon      = 0x49
	baseShark           = 0x4A
	baseSlime           = 0x4B
	baseMothmant        = 0x4D
	baseDarkFalzDarvant = 0xC8
	baseOlgaFlow        = 0xCA
	baseSaintMilion     = 0x119
)

// Expand walks area's raw enemy records in file order and produces
// the flattened InstanceEnemy list, applying seasonal/episode/alt
// variants and the Hard+ Ep1 Dark Falz phase remap described in
// spec.md section 4.8.
func Expand(records []maps.MapEnemy, episode Episode, event Event, difficultyHardPlus bool, log *slog.Logger) []InstanceEnemy {
	var out []InstanceEnemy
	for _, rec := range records {
		expanded, ok := expandOne(rec, episode, event)
		if !ok {
			if log != nil {
				log.Warn("enemygen: unknown base opcode, skipping", "base", rec.Base, "skin", rec.Skin)
			}
			continue
		}
		out = append(out, expanded...)
	}

	if difficultyHardPlus && episode == Episode1 {
		for i := range out {
			if out[i].ParamEntry == 0x37 {
				out[i].ParamEntry = 0x38
			}
		}
	}
	return out
}

func expandOne(rec maps.MapEnemy, episode Episode, event Event) ([]InstanceEnemy, bool) {
	switch rec.Base {
	case baseHildebear:
		name := "Hildebear"
		param := byte(0x01)
		if rec.Skin&1 != 0 {
			name = "Hildeblue"
			param = 0x02
		}
		return []InstanceEnemy{{ParamEntry: param, RTEntry: param, Name: name}}, true

	case baseRappy:
		name, param := rappyVariant(rec, episode, event)
		return []InstanceEnemy{{ParamEntry: param, RTEntry: param, Name: name}}, true

	case baseMonest:
		out := []InstanceEnemy{{ParamEntry: 0x04, RTEntry: 0x04, Name: "Monest"}}
		for i := 0; i < 30; i++ {
			out = append(out, InstanceEnemy{ParamEntry: 0x05, RTEntry: 0x05, Name: "Mothmant"})
		}
		return out, true

	case baseMothmant:
		return []InstanceEnemy{{ParamEntry: 0x05, RTEntry: 0x05, Name: "Mothmant"}}, true

	case baseSavageWolf:
		name := "Savage Wolf"
		param := byte(0x06)
		if rec.Reserved2Flag() {
			name = "Barbarous Wolf"
			param = 0x07
		}
		return []InstanceEnemy{{ParamEntry: param, RTEntry: param, Name: name}}, true

	case baseBooma:
		names := [3]string{"Booma", "Gobooma", "Gigobooma"}
		idx := rec.Skin % 3
		param := byte(0x08 + idx)
		return []InstanceEnemy{{ParamEntry: param, RTEntry: param, Name: names[idx]}}, true

	case baseGrassAssassin:
		return []InstanceEnemy{{ParamEntry: 0x0C, RTEntry: 0x0C, Name: "Grass Assassin"}}, true

	case baseDarkGunner:
		return []InstanceEnemy{{ParamEntry: 0x0D, RTEntry: 0x0D, Name: "Dark Gunner"}}, true

	case basePoisonLily:
		name := "Poison Lily"
		param := byte(0x0F)
		if episode == Episode2 {
			name = "Del Lily"
			param = 0x10
		}
		return []InstanceEnemy{{ParamEntry: param, RTEntry: param, Name: name}}, true

	case baseNanoDragon:
		return []InstanceEnemy{{ParamEntry: 0x11, RTEntry: 0x11, Name: "Nano Dragon"}}, true

	case baseShark:
		names := [3]string{"Evil Shark", "Pal Shark", "Guil Shark"}
		idx := rec.Skin % 3
		param := byte(0x12 + idx)
		return []InstanceEnemy{{ParamEntry: param, RTEntry: param, Name: names[idx]}}, true

	case baseSlime:
		// Each Slime spawns with a fixed handful of clones sharing the
		// same param entry; num_clones comes straight from the record.
		out := []InstanceEnemy{{ParamEntry: 0x15, RTEntry: 0x15, Name: "Pofuilly Slime"}}
		for i := uint32(0); i < rec.NumClones; i++ {
			out = append(out, InstanceEnemy{ParamEntry: 0x15, RTEntry: 0x15, Name: "Pofuilly Slime"})
		}
		return out, true

	case baseDarkFalzDarvant:
		// A single 0xC8 record expands to the 510 Darvant minions
		// followed by Dark Falz's three phases, pushed in phase
		// 3/2/1 order; enemy_id 510 is the first phase entry a party
		// actually fights.
		out := make([]InstanceEnemy, 0, 513)
		for i := 0; i < 510; i++ {
			out = append(out, InstanceEnemy{ParamEntry: 0x35, RTEntry: 0x00, Name: "Darvant (Falz Minion)"})
		}
		out = append(out,
			InstanceEnemy{ParamEntry: 0x38, RTEntry: 0x2F, Name: "Dark Falz (Phase 3)"},
			InstanceEnemy{ParamEntry: 0x37, RTEntry: 0x2F, Name: "Dark Falz (Phase 2)"},
			InstanceEnemy{ParamEntry: 0x36, RTEntry: 0x2F, Name: "Dark Falz (Phase 1)"},
		)
		return out, true

	case baseOlgaFlow:
		out := []InstanceEnemy{{ParamEntry: 0x2C, RTEntry: 0x4E, Name: "Olga Flow"}}
		for i := 0; i < 512; i++ {
			out = append(out, InstanceEnemy{ParamEntry: 0xFF, RTEntry: 0xFF, Name: "Olga Flow Extra (INVALID)"})
		}
		return out, true

	case baseSaintMilion:
		acc := byte(0)
		if rec.Skin&1 != 0 {
			acc = 1
		}
		rt := byte(0x13) + acc
		if rec.Reserved2Flag() {
			rt = 0x15
		}
		return []InstanceEnemy{{ParamEntry: 0x22, RTEntry: rt, Name: "Saint Milion/Shambertin/Kondrieu"}}, true

	default:
		return nil, false
	}
}

func rappyVariant(rec maps.MapEnemy, episode Episode, event Event) (string, byte) {
	if episode == Episode4 {
		if rec.Reserved2Flag() {
			return "Sand Rappy (Crater)", 0x19
		}
		return "Sand Rappy (Desert)", 0x1A
	}
	switch event {
	case EventChristmas:
		return "Rag Rappy (Christmas)", 0x03
	case EventEaster:
		return "Rag Rappy (Easter)", 0x03
	case EventHalloween:
		return "Rag Rappy (Halloween)", 0x03
	default:
		if rec.Skin&1 != 0 {
			return "Al Rappy", 0x03
		}
		return "Rag Rappy", 0x02
	}
}
