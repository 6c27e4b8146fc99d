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
* Guild card friend entries. Dropped from the distilled spec but
* present in original_source (the BB client's 0x04E0-entry guildcard
* file transfer); kept here as the shipgate-owned friends list that
* backs the in-game guild card menu.
 */
package chardata

import "github.com/dcrodman/archon/internal/serial"

const (
	GuildcardEntryCount = 104
	guildcardNameUnits  = 24
	guildcardTeamUnits  = 16
	guildcardDescUnits2 = 88
)

// GuildcardEntry is one friend-list record a player has saved: the
// target's guildcard number, display/team name, and a short
// self-description they copied from that player's profile.
type GuildcardEntry struct {
	GuildcardNum uint32
	Name         [guildcardNameUnits]uint16
	TeamName     [guildcardTeamUnits]uint16
	Description  [guildcardDescUnits2]uint16
	Language     uint8
	SectionID    uint8
	Class        uint8
	Unknown      uint8
}

const GuildcardEntrySize = 4 + guildcardNameUnits*2 + guildcardTeamUnits*2 + guildcardDescUnits2*2 + 4

func (g GuildcardEntry) Encode(w *serial.Writer) {
	w.U32(g.GuildcardNum)
	for _, u := range g.Name {
		w.U16(u)
	}
	for _, u := range g.TeamName {
		w.U16(u)
	}
	for _, u := range g.Description {
		w.U16(u)
	}
	w.U8(g.Language)
	w.U8(g.SectionID)
	w.U8(g.Class)
	w.U8(g.Unknown)
}

func DecodeGuildcardEntry(r *serial.Reader) GuildcardEntry {
	var g GuildcardEntry
	g.GuildcardNum = r.U32()
	for i := range g.Name {
		g.Name[i] = r.U16()
	}
	for i := range g.TeamName {
		g.TeamName[i] = r.U16()
	}
	for i := range g.Description {
		g.Description[i] = r.U16()
	}
	g.Language = r.U8()
	g.SectionID = r.U8()
	g.Class = r.U8()
	g.Unknown = r.U8()
	return g
}

// GuildcardFile is the full friends list the shipgate hands back on
// 0x01DC/0x02DC request: a fixed slab of entries, most of them unused
// (GuildcardNum == 0).
type GuildcardFile struct {
	Entries [GuildcardEntryCount]GuildcardEntry
}

func (f GuildcardFile) Encode(w *serial.Writer) {
	for _, e := range f.Entries {
		e.Encode(w)
	}
}

func DecodeGuildcardFile(r *serial.Reader) GuildcardFile {
	var f GuildcardFile
	for i := range f.Entries {
		f.Entries[i] = DecodeGuildcardEntry(r)
	}
	return f
}
