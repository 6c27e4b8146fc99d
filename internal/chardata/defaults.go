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
* Character creation defaults: class-indexed starting weapon/mag/item
* set plus the meseta and base stats a brand-new character is handed.
 */
package chardata

// Class indices as sent in BbCharInfo.mini_data.class.
const (
	ClassHUmar = iota
	ClassHUnewearl
	ClassHUcast
	ClassRAmar
	ClassRAcast
	ClassRAcaseal
	ClassFOmarl
	ClassFOnewm
	ClassFOnewearl
	ClassHUcaseal
	ClassFOmar
	ClassRAmarl
)

// classFamily groups the twelve classes into the three weapon/item
// families that drive starting-inventory generation.
type classFamily int

const (
	familyHunter classFamily = iota
	familyRanger
	familyForce
)

func familyFor(class uint8) classFamily {
	switch class {
	case ClassHUmar, ClassHUnewearl, ClassHUcast, ClassHUcaseal:
		return familyHunter
	case ClassRAmar, ClassRAcast, ClassRAcaseal, ClassRAmarl:
		return familyRanger
	default:
		return familyForce
	}
}

// isCast reports whether class is one of the android classes, which
// take their starting mag color from the skin field instead of the
// costume field.
func isCast(class uint8) bool {
	switch class {
	case ClassHUcast, ClassRAcast, ClassRAcaseal, ClassHUcaseal:
		return true
	default:
		return false
	}
}

// Item type/params byte layouts for the handful of starting items.
// Byte 0 of Data identifies the item class (0 = weapon, 1 = armor/
// frame, 2 = mag, 3 = tool); the remaining bytes carry class-specific
// params.
var (
	starterSaber   = [12]byte{0x00, 0x01, 0x00, 0x00}
	starterHandgun = [12]byte{0x00, 0x0C, 0x00, 0x00}
	starterCane    = [12]byte{0x00, 0x14, 0x00, 0x00}
	starterFrame   = [12]byte{0x01, 0x01, 0x00, 0x00}
	starterMag     = [12]byte{0x02, 0x00, 0x00, 0x00}
	starterMonomate = [12]byte{0x03, 0x00, 0x00, 0x00}
	starterMonofluid = [12]byte{0x03, 0x02, 0x00, 0x00}
)

const starterMeseta = 300

// DefaultInventory builds the starting item set for a brand-new
// character of the given class: a family weapon, a Frame, a Mag
// (colored from skin for CASTs, costume otherwise), a Monomate, and
// for Forces a Monofluid plus the Foie technique disk at level 1.
func DefaultInventory(class uint8, skin, costume uint16) Inventory {
	var inv Inventory
	slot := 0
	add := func(data [12]byte, equipped uint8) {
		item := InvItem{Data: data, ItemID: uint32(slot + 1), Equipped: equipped}
		inv.Items[slot] = item
		slot++
	}

	family := familyFor(class)
	switch family {
	case familyHunter:
		add(starterSaber, 1)
	case familyRanger:
		add(starterHandgun, 1)
	case familyForce:
		add(starterCane, 1)
	}

	add(starterFrame, 1)

	magColor := costume
	if isCast(class) {
		magColor = skin
	}
	mag := starterMag
	mag[2] = byte(magColor)
	mag[3] = byte(magColor >> 8)
	add(mag, 1)

	add(starterMonomate, 0)

	if family == familyForce {
		add(starterMonofluid, 0)
		tech := InvItem{
			Data:   [12]byte{0x03, 0x02, 0x01, 0x00, 0x00},
			ItemID: uint32(slot + 1),
		}
		tech.Tech = 0x00 // Foie, level index 0 (level 1)
		inv.Items[slot] = tech
		slot++
	}

	inv.ItemCount = uint8(slot)
	inv.HPMats = 0
	inv.TPMats = 0
	inv.Language = 0
	return inv
}

// StarterMeseta is the meseta balance a brand-new character is handed;
// base stats instead come from the level progression table's row zero
// for the character's class (see internal/staticdata/leveltable).
const StarterMeseta = starterMeseta
