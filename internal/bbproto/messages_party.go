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
* Lobby/party membership and subcommand wire bodies, per spec.md
* sections 4.7/4.8. Grounded on pkt_funcs.go's SendShipList/
* SendBlockList/SendLobbyList family for the menu shape, generalized
* to the lobby/party membership payloads the original excerpt didn't
* carry a full definition for.
 */
package bbproto

import "github.com/dcrodman/archon/internal/serial"

const nameFieldLen = 24 // UTF-16 units

// PlayerHeader is the {tag, guildcard, client_id, name} tuple BbGameJoin
// repeats for all four party slots.
type PlayerHeader struct {
	Guildcard uint32
	ClientID  uint32
	Name      string
}

func (m PlayerHeader) Encode(w *serial.Writer) {
	w.U32(0x00010000)
	w.U32(m.Guildcard)
	w.U32(m.ClientID)
	w.FixedUTF16(m.Name, nameFieldLen)
}

// MemberSnapshot is one occupant's data as broadcast to lobby/party
// peers: just enough identity plus the full character blob the client
// needs to render the newcomer.
type MemberSnapshot struct {
	ClientID  uint32
	Guildcard uint32
	Name      string
	CharBytes []byte // pre-encoded chardata.BbFullCharData
}

func (m MemberSnapshot) Encode(w *serial.Writer) {
	w.U32(m.ClientID)
	w.U32(m.Guildcard)
	w.FixedUTF16(m.Name, nameFieldLen)
	w.Raw(m.CharBytes)
}

// LobbyJoin is sent to a client immediately after it's placed in a
// lobby: every current occupant, indexed by client_id.
type LobbyJoin struct {
	ClientID uint32
	LeaderID uint32
	Members  []MemberSnapshot
}

func (m LobbyJoin) Encode(w *serial.Writer) {
	w.U32(m.ClientID)
	w.U32(m.LeaderID)
	w.U32(uint32(len(m.Members)))
	for _, mem := range m.Members {
		mem.Encode(w)
	}
}

type LobbyAddMember struct{ Member MemberSnapshot }

func (m LobbyAddMember) Encode(w *serial.Writer) { m.Member.Encode(w) }

// LobbyLeave/GameLeave share a shape: the departed slot, the newly
// elected leader (or 0 if none), and a reserved trailing word.
type LeaveNotice struct {
	DepartedSlot uint32
	NewLeader    uint32
}

func (m LeaveNotice) Encode(w *serial.Writer) {
	w.U32(m.DepartedSlot)
	w.U32(m.NewLeader)
	w.U32(0)
}

type LobbyChange struct{ LobbyNum uint32 }

func DecodeLobbyChange(r *serial.Reader) LobbyChange { return LobbyChange{LobbyNum: r.U32()} }

// GameJoin is sent to a newly added party member: the precomputed map
// instance's variant selection, this client's slot/leader/difficulty/
// episode/section, and the occupied player headers.
type GameJoin struct {
	Variants     [32]uint32
	SlotID       uint32
	LeaderID     uint32
	Difficulty   uint8
	Episode      uint8
	SectionID    uint8
	SinglePlayer bool
	Players      [4]PlayerHeader
}

func (m GameJoin) Encode(w *serial.Writer) {
	for _, v := range m.Variants {
		w.U32(v)
	}
	w.U32(m.SlotID)
	w.U32(m.LeaderID)
	w.U8(m.Difficulty)
	w.U8(m.Episode)
	w.U8(m.SectionID)
	if m.SinglePlayer {
		w.U8(1)
	} else {
		w.U8(0)
	}
	for _, p := range m.Players {
		p.Encode(w)
	}
}

type GameAddMember struct{ Member MemberSnapshot }

func (m GameAddMember) Encode(w *serial.Writer) { m.Member.Encode(w) }

// CreateGame is the client's request to start a new party.
type CreateGame struct {
	Name         string
	Password     string
	Difficulty   uint8
	Battle       bool
	Challenge    bool
	Episode      uint8
	SinglePlayer bool
}

func DecodeCreateGame(r *serial.Reader) CreateGame {
	name := r.FixedUTF16(16)
	password := r.FixedUTF16(16)
	difficulty := r.U8()
	battle := r.U8()
	challenge := r.U8()
	episode := r.U8()
	singlePlayer := r.U8()
	r.Skip(3)
	return CreateGame{
		Name: name, Password: password, Difficulty: difficulty,
		Battle: battle != 0, Challenge: challenge != 0, Episode: episode, SinglePlayer: singlePlayer != 0,
	}
}

// GameListEntry is one party's row in the game-selection menu; the
// synthetic header entry spec.md section 4.8 describes is built by
// the caller and prepended, not modeled as a type of its own.
type GameListEntry struct {
	ItemID     uint32
	Name       string
	Difficulty uint8
	NumPlayers uint8
	Episode    uint8
	Flags      uint8
}

func (m GameListEntry) Encode(w *serial.Writer) {
	w.U32(0x00080000)
	w.U32(m.ItemID)
	w.U8(m.Difficulty)
	w.U8(m.NumPlayers)
	w.FixedUTF16(m.Name, 16)
	w.U8(m.Episode)
	w.U8(m.Flags)
	w.Pad(2)
}

const (
	GameFlagPassword  = 0x02
	GameFlagBattle    = 0x10
	GameFlagChallenge = 0x20
	GameFlagSingle    = 0x04
)

// GameListHeader is the one synthetic entry preceding every real
// GameListEntry.
type GameListHeader struct{}

func (GameListHeader) Encode(w *serial.Writer) {
	w.U32(0x00080000)
	w.U32(0xFFFFFFFF)
	w.U8(0)
	w.U8(0)
	w.FixedUTF16("", 16)
	w.U8(0)
	w.U8(0x04)
	w.Pad(2)
}

// Chat is relayed verbatim within a lobby or party, with the sender's
// guildcard stamped into GuildcardFrom.
type Chat struct {
	GuildcardFrom uint32
	Text          string
}

func DecodeChat(r *serial.Reader) Chat {
	gc := r.U32()
	r.Skip(4)
	return Chat{GuildcardFrom: gc, Text: r.VarUTF16()}
}

func (m Chat) Encode(w *serial.Writer) {
	w.U32(m.GuildcardFrom)
	w.U32(0)
	w.VarUTF16(m.Text)
}

// Ping has no payload; it's sent to a client leaving bursting state.
type Ping struct{}

func (Ping) Encode(w *serial.Writer) {}
