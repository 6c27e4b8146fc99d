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
package chardata

import "github.com/dcrodman/archon/internal/serial"

// InvItem is one inventory slot: a weapon, armor, unit, mag, tool
// stack, or tech disk, in the item code's 12-byte type/params layout
// followed by server bookkeeping. Exactly 28 bytes on the wire.
type InvItem struct {
	Data      [12]byte // item-class-specific type/params bytes
	ItemID    uint32   // globally unique within the owning character
	Data2     [6]byte  // extended attributes (weapon %s, armor slots...)
	BankFlags uint16
	Tech      uint8 // equipped technique level + 1, or 0
	Equipped  uint8
	Unused    uint16
}

const InvItemSize = 28

func (i InvItem) Encode(w *serial.Writer) {
	w.FixedBytes(i.Data[:], 12)
	w.U32(i.ItemID)
	w.FixedBytes(i.Data2[:], 6)
	w.U16(i.BankFlags)
	w.U8(i.Tech)
	w.U8(i.Equipped)
	w.U16(i.Unused)
}

func DecodeInvItem(r *serial.Reader) InvItem {
	var i InvItem
	copy(i.Data[:], r.FixedBytes(12))
	i.ItemID = r.U32()
	copy(i.Data2[:], r.FixedBytes(6))
	i.BankFlags = r.U16()
	i.Tech = r.U8()
	i.Equipped = r.U8()
	i.Unused = r.U16()
	return i
}

// BankItem is one item bank stack: same identity fields as InvItem but
// slimmer, since equip state and tech level don't apply in the bank.
// Exactly 24 bytes on the wire.
type BankItem struct {
	Data   [12]byte
	ItemID uint32
	Data2  [4]byte
	Count  uint16
	Flags  uint16
}

const BankItemSize = 24

func (b BankItem) Encode(w *serial.Writer) {
	w.FixedBytes(b.Data[:], 12)
	w.U32(b.ItemID)
	w.FixedBytes(b.Data2[:], 4)
	w.U16(b.Count)
	w.U16(b.Flags)
}

func DecodeBankItem(r *serial.Reader) BankItem {
	var b BankItem
	copy(b.Data[:], r.FixedBytes(12))
	b.ItemID = r.U32()
	copy(b.Data2[:], r.FixedBytes(4))
	b.Count = r.U16()
	b.Flags = r.U16()
	return b
}
