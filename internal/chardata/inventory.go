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

const InventorySlotCount = 30

// Inventory is a character's 30-slot item carry list, a 4-byte header
// (slot count plus the material counters applied against the base
// stats) followed by fixed InvItem slots. Exactly 4+30*28 = 844 bytes.
type Inventory struct {
	ItemCount uint8
	HPMats    uint8
	TPMats    uint8
	Language  uint8
	Items     [InventorySlotCount]InvItem
}

const InventorySize = 4 + InventorySlotCount*InvItemSize

func (inv Inventory) Encode(w *serial.Writer) {
	w.U8(inv.ItemCount)
	w.U8(inv.HPMats)
	w.U8(inv.TPMats)
	w.U8(inv.Language)
	for _, item := range inv.Items {
		item.Encode(w)
	}
}

func DecodeInventory(r *serial.Reader) Inventory {
	var inv Inventory
	inv.ItemCount = r.U8()
	inv.HPMats = r.U8()
	inv.TPMats = r.U8()
	inv.Language = r.U8()
	for i := range inv.Items {
		inv.Items[i] = DecodeInvItem(r)
	}
	return inv
}

const BankSlotCount = 200

// ItemBank is a character's bank: an 8-byte header (stack count plus
// stored meseta) followed by fixed BankItem slots. Exactly
// 8+200*24 = 4808 bytes.
type ItemBank struct {
	ItemCount uint32
	Meseta    uint32
	Items     [BankSlotCount]BankItem
}

const ItemBankSize = 8 + BankSlotCount*BankItemSize

func (b ItemBank) Encode(w *serial.Writer) {
	w.U32(b.ItemCount)
	w.U32(b.Meseta)
	for _, item := range b.Items {
		item.Encode(w)
	}
}

func DecodeItemBank(r *serial.Reader) ItemBank {
	var b ItemBank
	b.ItemCount = r.U32()
	b.Meseta = r.U32()
	for i := range b.Items {
		b.Items[i] = DecodeBankItem(r)
	}
	return b
}
