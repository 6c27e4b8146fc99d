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
 */
package enemygen

import (
	"testing"

	"github.com/dcrodman/archon/internal/staticdata/maps"
)

func rec(base, skin uint32) maps.MapEnemy {
	return maps.MapEnemy{Base: base, Skin: skin}
}

func TestExpandUnknownBaseIsSkippedNotFatal(t *testing.T) {
	records := []maps.MapEnemy{
		rec(baseHildebear, 0),
		rec(0xDEADBEEF, 0), // no such enemy exists on any real map
		rec(baseMonest, 0),
	}
	out := Expand(records, Episode1, EventNone, false, nil)
	if len(out) != 1+31 {
		t.Fatalf("expected Hildebear + Monest's 31 entries to survive the skip, got %d", len(out))
	}
}

func TestExpandDarkFalzDarvantCombinedRecord(t *testing.T) {
	out := Expand([]maps.MapEnemy{rec(baseDarkFalzDarvant, 0)}, Episode1, EventNone, false, nil)
	if len(out) != 513 {
		t.Fatalf("expected 510 Darvants + 3 Dark Falz phases = 513 entries, got %d", len(out))
	}
	for i := 0; i < 510; i++ {
		if out[i].ParamEntry != 0x35 {
			t.Fatalf("entry %d: expected Darvant param 0x35, got %#x", i, out[i].ParamEntry)
		}
	}
	// enemy_id 510 is the first phase entry a party actually fights.
	if out[510].ParamEntry != 0x38 {
		t.Fatalf("expected phase 3 (0x38) at index 510, got %#x", out[510].ParamEntry)
	}
	if out[511].ParamEntry != 0x37 {
		t.Fatalf("expected phase 2 (0x37) at index 511, got %#x", out[511].ParamEntry)
	}
	if out[512].ParamEntry != 0x36 {
		t.Fatalf("expected phase 1 (0x36) at index 512, got %#x", out[512].ParamEntry)
	}
}

func TestExpandHardPlusEp1RemapsPhase2ToPhase3(t *testing.T) {
	out := Expand([]maps.MapEnemy{rec(baseDarkFalzDarvant, 0)}, Episode1, EventNone, true, nil)
	if out[511].ParamEntry != 0x38 {
		t.Fatalf("expected Hard+ Ep1 to remap phase 2 (0x37) to 0x38, got %#x", out[511].ParamEntry)
	}
	// Episode 2/4 never applies the remap.
	outEp4 := Expand([]maps.MapEnemy{rec(baseDarkFalzDarvant, 0)}, Episode4, EventNone, true, nil)
	if outEp4[511].ParamEntry != 0x37 {
		t.Fatalf("remap must not apply outside Episode 1, got %#x", outEp4[511].ParamEntry)
	}
}

func TestExpandOlgaFlowCombinedRecord(t *testing.T) {
	out := Expand([]maps.MapEnemy{rec(baseOlgaFlow, 0)}, Episode4, EventNone, false, nil)
	if len(out) != 513 {
		t.Fatalf("expected Olga Flow + 512 filler = 513 entries, got %d", len(out))
	}
	if out[0].ParamEntry != 0x2C {
		t.Fatalf("expected Olga Flow param 0x2C, got %#x", out[0].ParamEntry)
	}
	for i := 1; i < 513; i++ {
		if out[i].ParamEntry != 0xFF {
			t.Fatalf("filler entry %d: expected sentinel param 0xFF, got %#x", i, out[i].ParamEntry)
		}
	}
}

func TestExpandSaintMilionSelection(t *testing.T) {
	base := rec(baseSaintMilion, 0)
	out, ok := expandOne(base, Episode4, EventNone)
	if !ok || len(out) != 1 {
		t.Fatalf("expected a single Saint Milion/Shambertin/Kondrieu entry, got %v ok=%v", out, ok)
	}
	if out[0].ParamEntry != 0x22 {
		t.Fatalf("expected fixed param 0x22, got %#x", out[0].ParamEntry)
	}
	if out[0].RTEntry != 0x13 {
		t.Fatalf("expected rt 0x13 for skin 0 without the alt-form bit, got %#x", out[0].RTEntry)
	}

	skinned := rec(baseSaintMilion, 1)
	out2, _ := expandOne(skinned, Episode4, EventNone)
	if out2[0].RTEntry != 0x14 {
		t.Fatalf("expected rt 0x14 for skin 1, got %#x", out2[0].RTEntry)
	}
}

func TestExpandSavageWolfUsesReserved2FlagNotSkin(t *testing.T) {
	plain := rec(baseSavageWolf, 1) // odd skin, no reserved2 bit set
	out, _ := expandOne(plain, Episode1, EventNone)
	if out[0].Name != "Savage Wolf" {
		t.Fatalf("expected skin to be irrelevant to wolf variant, got %q", out[0].Name)
	}

	flagged := rec(baseSavageWolf, 0)
	flagged.Reserved2[0] = 0x00
	flagged.Reserved2[1] = 0x00
	flagged.Reserved2[2] = 0x80 // bit 0x800000 set in the little-endian u32
	out2, _ := expandOne(flagged, Episode1, EventNone)
	if out2[0].Name != "Barbarous Wolf" {
		t.Fatalf("expected Reserved2Flag to select Barbarous Wolf, got %q", out2[0].Name)
	}
}

// TestExpandPreservesTotalCountInvariant pins the invariant spec.md section 8
// names: expansion never drops or fabricates enemies except for the
// documented one-record-to-many fan-outs (Monest, Slime clones, Dark
// Falz/Darvant, Olga Flow).
func TestExpandPreservesTotalCountInvariant(t *testing.T) {
	records := []maps.MapEnemy{
		rec(baseHildebear, 0),
		rec(baseHildebear, 1),
		rec(baseBooma, 0),
		rec(baseBooma, 1),
		rec(baseBooma, 2),
		rec(baseGrassAssassin, 0),
	}
	out := Expand(records, Episode1, EventNone, false, nil)
	if len(out) != len(records) {
		t.Fatalf("expected one-to-one expansion for simple enemies, got %d entries for %d records", len(out), len(records))
	}
}
