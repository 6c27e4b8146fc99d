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

const (
	techLevelCount        = 20
	questData1Size        = 520
	guildcardDescUnits    = 176
	symbolChatSlotCount   = 12
	symbolChatSlotSize    = 104
	shortcutTableSize     = 2624
	fullCharTeamNameUnits = 16
	fullCharQuestFlagSize = 3888
)

// BbFullCharData is the complete per-character payload sent in a
// 0x00E7 "load character" packet and saved back on logout: inventory,
// base stats, bank, self-description text, symbol chat macros, word
// select shortcuts and the per-quest completion bitmap. Exactly
// 0x3994 (14740) bytes on the wire.
type BbFullCharData struct {
	Inventory  Inventory
	Character  BbChar
	Techniques [techLevelCount]byte
	Options    uint32

	// QuestData1 is the free-form scratch area quests use to persist
	// progress across logout (flags, counters, switch state).
	QuestData1 [questData1Size]byte

	Bank ItemBank

	GuildcardDesc [guildcardDescUnits]uint16

	SymbolChats [symbolChatSlotCount * symbolChatSlotSize]byte
	Shortcuts   [shortcutTableSize]byte

	TeamName [fullCharTeamNameUnits]uint16

	QuestFlags [fullCharQuestFlagSize]byte
}

const BbFullCharDataSize = 0x3994

func (c BbFullCharData) Encode(w *serial.Writer) {
	c.Inventory.Encode(w)
	c.Character.Encode(w)
	w.FixedBytes(c.Techniques[:], techLevelCount)
	w.U32(c.Options)
	w.FixedBytes(c.QuestData1[:], questData1Size)
	c.Bank.Encode(w)
	for _, u := range c.GuildcardDesc {
		w.U16(u)
	}
	w.FixedBytes(c.SymbolChats[:], len(c.SymbolChats))
	w.FixedBytes(c.Shortcuts[:], shortcutTableSize)
	for _, u := range c.TeamName {
		w.U16(u)
	}
	w.FixedBytes(c.QuestFlags[:], fullCharQuestFlagSize)
}

func DecodeBbFullCharData(r *serial.Reader) BbFullCharData {
	var c BbFullCharData
	c.Inventory = DecodeInventory(r)
	c.Character = DecodeBbChar(r)
	copy(c.Techniques[:], r.FixedBytes(techLevelCount))
	c.Options = r.U32()
	copy(c.QuestData1[:], r.FixedBytes(questData1Size))
	c.Bank = DecodeItemBank(r)
	for i := range c.GuildcardDesc {
		c.GuildcardDesc[i] = r.U16()
	}
	copy(c.SymbolChats[:], r.FixedBytes(len(c.SymbolChats)))
	copy(c.Shortcuts[:], r.FixedBytes(shortcutTableSize))
	for i := range c.TeamName {
		c.TeamName[i] = r.U16()
	}
	copy(c.QuestFlags[:], r.FixedBytes(fullCharQuestFlagSize))
	return c
}
