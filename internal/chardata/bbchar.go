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

import (
	"math"

	"github.com/dcrodman/archon/internal/serial"
)

// NameLength is the number of UTF-16 code units a character's display
// name occupies.
const NameLength = 16

// QuestFlagsSize is the per-character quest-completion bitmap trailing
// a BbChar record; every quest the player has cleared sets a bit here,
// consulted when a quest's prerequisites are checked.
const QuestFlagsSize = 250

// BbChar is the base-stats-and-appearance record embedded in both the
// character select preview list and the full load payload. Exactly
// 400 bytes on the wire.
type BbChar struct {
	ATP, MST, EVP, HP, DFP, ATA, LCK uint16

	Unknown1 [10]byte

	Level      uint16
	Unknown2   uint16
	Experience uint32
	Meseta     uint32

	GuildcardStr [16]byte
	Unknown3     [8]byte

	NameColor uint32
	Model     uint8
	Padding   [15]byte

	NameColorChecksum uint32
	SectionID         uint8
	Class             uint8
	V2Flags           uint8
	Version           uint8
	V1Flags           uint32

	Costume   uint16
	Skin      uint16
	Face      uint16
	Head      uint16
	HairRed   uint16
	HairGreen uint16
	HairBlue  uint16

	PropX float32
	PropY float32

	Name [NameLength]uint16

	Playtime uint32

	QuestFlags [QuestFlagsSize]byte
}

const BbCharSize = 400

func (c BbChar) Encode(w *serial.Writer) {
	w.U16(c.ATP)
	w.U16(c.MST)
	w.U16(c.EVP)
	w.U16(c.HP)
	w.U16(c.DFP)
	w.U16(c.ATA)
	w.U16(c.LCK)
	w.FixedBytes(c.Unknown1[:], 10)
	w.U16(c.Level)
	w.U16(c.Unknown2)
	w.U32(c.Experience)
	w.U32(c.Meseta)
	w.FixedBytes(c.GuildcardStr[:], 16)
	w.FixedBytes(c.Unknown3[:], 8)
	w.U32(c.NameColor)
	w.U8(c.Model)
	w.FixedBytes(c.Padding[:], 15)
	w.U32(c.NameColorChecksum)
	w.U8(c.SectionID)
	w.U8(c.Class)
	w.U8(c.V2Flags)
	w.U8(c.Version)
	w.U32(c.V1Flags)
	w.U16(c.Costume)
	w.U16(c.Skin)
	w.U16(c.Face)
	w.U16(c.Head)
	w.U16(c.HairRed)
	w.U16(c.HairGreen)
	w.U16(c.HairBlue)
	w.U32(math.Float32bits(c.PropX))
	w.U32(math.Float32bits(c.PropY))
	for _, u := range c.Name {
		w.U16(u)
	}
	w.U32(c.Playtime)
	w.FixedBytes(c.QuestFlags[:], QuestFlagsSize)
}

func DecodeBbChar(r *serial.Reader) BbChar {
	var c BbChar
	c.ATP = r.U16()
	c.MST = r.U16()
	c.EVP = r.U16()
	c.HP = r.U16()
	c.DFP = r.U16()
	c.ATA = r.U16()
	c.LCK = r.U16()
	copy(c.Unknown1[:], r.FixedBytes(10))
	c.Level = r.U16()
	c.Unknown2 = r.U16()
	c.Experience = r.U32()
	c.Meseta = r.U32()
	copy(c.GuildcardStr[:], r.FixedBytes(16))
	copy(c.Unknown3[:], r.FixedBytes(8))
	c.NameColor = r.U32()
	c.Model = r.U8()
	copy(c.Padding[:], r.FixedBytes(15))
	c.NameColorChecksum = r.U32()
	c.SectionID = r.U8()
	c.Class = r.U8()
	c.V2Flags = r.U8()
	c.Version = r.U8()
	c.V1Flags = r.U32()
	c.Costume = r.U16()
	c.Skin = r.U16()
	c.Face = r.U16()
	c.Head = r.U16()
	c.HairRed = r.U16()
	c.HairGreen = r.U16()
	c.HairBlue = r.U16()
	c.PropX = math.Float32frombits(r.U32())
	c.PropY = math.Float32frombits(r.U32())
	for i := range c.Name {
		c.Name[i] = r.U16()
	}
	c.Playtime = r.U32()
	copy(c.QuestFlags[:], r.FixedBytes(QuestFlagsSize))
	return c
}
