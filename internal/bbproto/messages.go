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
* BB wire message bodies shared by the login, ship, and block
* services, grounded on pkt_funcs.go's Send* family (SendWelcome,
* SendSecurity, SendOptions, SendCharacterAck, SendCharacterPreview,
* SendChecksumAck, SendGuildcardHeader/Chunk, SendParameterHeader/
* Chunk, SendTimestamp, SendShipList) adapted from reflection-based
* util.BytesFromStruct onto explicit internal/serial encode/decode.
 */
package bbproto

import (
	"github.com/dcrodman/archon/internal/chardata"
	"github.com/dcrodman/archon/internal/serial"
)

// Message type opcodes on the BB-framed wire. Values are this
// server's own numbering (the pack the protocol constants were
// distilled from doesn't carry a verbatim list) grouped the way
// pkt_funcs.go groups its Send* helpers.
const (
	MsgWelcome          uint16 = 0x03
	MsgLogin            uint16 = 0x93
	MsgSecurity         uint16 = 0xE6
	MsgRedirect         uint16 = 0x19
	MsgOptionRequest    uint16 = 0xE0
	MsgOptionConfig     uint16 = 0xE2
	MsgChecksum         uint16 = 0x01E8
	MsgChecksumAck      uint16 = 0x02E8
	MsgGuildRequest     uint16 = 0x01DC
	MsgGuildCardHdr     uint16 = 0x01
	MsgGuildCardChunkReq uint16 = 0x03
	MsgGuildCardChunk   uint16 = 0x02
	MsgParamHdrReq      uint16 = 0x01F8
	MsgParamHdr         uint16 = 0x02
	MsgParamChunkReq    uint16 = 0x03F8
	MsgParamChunk       uint16 = 0x03
	MsgCharSelect       uint16 = 0xE3
	MsgCharInfo         uint16 = 0xE7
	MsgCharAck          uint16 = 0xE4
	MsgTimestamp        uint16 = 0xB1
	MsgShipList         uint16 = 0xA0
	MsgMenuSelect       uint16 = 0x10
	MsgCharDat          uint16 = 0x40
	MsgLobbyJoin        uint16 = 0x65
	MsgLobbyAddMember   uint16 = 0x64
	MsgLobbyLeave       uint16 = 0x66
	MsgLobbyChange      uint16 = 0x84
	MsgGameJoin         uint16 = 0x64
	MsgGameAddMember    uint16 = 0x65
	MsgGameLeave        uint16 = 0x66
	MsgCreateGame       uint16 = 0xC1
	MsgGameList         uint16 = 0x98
	MsgChat             uint16 = 0x06
	MsgSubCmd60         uint16 = 0x60
	MsgSubCmd62         uint16 = 0x62
	MsgSubCmd6C         uint16 = 0x6C
	MsgSubCmd6D         uint16 = 0x6D
	MsgDoneBursting     uint16 = 0x6F
	MsgPing             uint16 = 0x1D
	MsgMsg1             uint16 = 0x1A
	MsgLargeMsg         uint16 = 0xD5
)

const bbCopyright = "Phantasy Star Online Blue Burst Game Server. Copyright 1999-2004 SONICTEAM."

// Welcome carries the copyright banner and the two 48-byte BB cipher
// seeds, sent unencrypted per spec.md section 6.
type Welcome struct {
	ServerSeed [48]byte
	ClientSeed [48]byte
}

func (w Welcome) Encode(wr *serial.Writer) {
	wr.FixedASCII(bbCopyright, 0x60)
	wr.Raw(w.ServerSeed[:])
	wr.Raw(w.ClientSeed[:])
}

// Login is the client's credential + security handoff message.
type Login struct {
	Username     string
	Password     string
	SecurityData chardata.SecurityData
}

func DecodeLogin(r *serial.Reader) Login {
	// Layout mirrors the teacher's field ordering intent (tag,
	// guildcard, version, team, fixed credential buffers) condensed to
	// what this server actually consumes.
	r.Skip(4)  // tag
	r.Skip(4)  // guildcard (unused pre-auth)
	r.Skip(8)  // version/unused
	username := r.FixedASCII(16)
	r.Skip(32) // unused (client config echoed back, ignored here)
	password := r.FixedASCII(16)
	r.Skip(40) // padding to security_data
	sec := chardata.DecodeSecurityData(r)
	return Login{Username: username, Password: password, SecurityData: sec}
}

// Security is the server's reply to Login (and subsequent CharSelect
// acks): error code, guildcard/team identity, the security handoff
// blob, and a capability bitmask (0 for login, 0x00000102 for ship).
type Security struct {
	ErrCode      uint32
	Guildcard    uint32
	TeamID       uint32
	SecurityData chardata.SecurityData
	Capabilities uint32
}

func (m Security) Encode(w *serial.Writer) {
	w.U32(m.ErrCode)
	w.U32(0x00010000) // player tag, constant per pkt_funcs.go's SecurityPacket
	w.U32(m.Guildcard)
	w.U32(m.TeamID)
	m.SecurityData.Encode(w)
	w.U32(m.Capabilities)
}

// OptionConfig answers BbOptionRequest with the account's key/joystick
// configuration and team rewards bitmask.
type OptionConfig struct {
	TeamKeyData chardata.BbTeamAndKeyData
}

func (m OptionConfig) Encode(w *serial.Writer) { m.TeamKeyData.Encode(w) }

// ChecksumAck acknowledges the client's checksum message; the value
// carried is never validated (see pkt_funcs.go's SendChecksumAck
// comment: "we don't actually do anything with it").
type ChecksumAck struct{ OK uint32 }

func (m ChecksumAck) Encode(w *serial.Writer) { w.U32(m.OK) }

const guildcardTotalLen = 54672

// GuildCardHdr announces the total size and CRC32 of the guildcard
// file about to be served in chunks.
type GuildCardHdr struct {
	Checksum uint32
	Length   uint32
}

func (m GuildCardHdr) Encode(w *serial.Writer) {
	w.U32(1)
	w.U16(uint16(m.Length))
	w.U16(0)
	w.U32(m.Checksum)
}

type GuildCardChunkReq struct{ Chunk uint32 }

func DecodeGuildCardChunkReq(r *serial.Reader) GuildCardChunkReq {
	r.Skip(4)
	return GuildCardChunkReq{Chunk: r.U32()}
}

type GuildCardChunk struct {
	Chunk uint32
	Data  []byte
}

func (m GuildCardChunk) Encode(w *serial.Writer) {
	w.U32(0)
	w.U32(m.Chunk)
	w.Raw(m.Data)
}

// ParamHdr lists the nine precomputed parameter-file entries the
// client must fetch (BattleParamEntry variants) before entering a
// lobby.
type ParamFileEntry struct {
	Size     uint32
	Checksum uint32
	Filename string
}

type ParamHdr struct{ Entries []ParamFileEntry }

func (m ParamHdr) Encode(w *serial.Writer) {
	for _, e := range m.Entries {
		w.U32(e.Size)
		w.U32(e.Checksum)
		w.U32(0)
		w.FixedASCII(e.Filename, 0x40)
	}
}

type ParamChunkReq struct{ Chunk uint32 }

func DecodeParamChunkReq(r *serial.Reader) ParamChunkReq {
	return ParamChunkReq{Chunk: r.U32()}
}

type ParamChunk struct {
	Chunk uint32
	Data  []byte
}

func (m ParamChunk) Encode(w *serial.Writer) {
	w.U32(m.Chunk)
	w.Raw(m.Data)
}

// CharSelect is sent both to pick an existing slot (selecting=true)
// and to merely preview one (selecting=false).
type CharSelect struct {
	Slot      uint32
	Selecting bool
}

func DecodeCharSelect(r *serial.Reader) CharSelect {
	slot := r.U32()
	sel := r.U32()
	return CharSelect{Slot: slot, Selecting: sel != 0}
}

// CharAck's Code: 0 creation ack, 1 selected-character ack, 2 slot
// empty.
type CharAck struct {
	Slot uint32
	Code uint32
}

func (m CharAck) Encode(w *serial.Writer) {
	w.U32(m.Slot)
	w.U32(m.Code)
}

const (
	CharAckSelected = 1
	CharAckEmpty    = 2
)

// CharInfo carries a full character snapshot: sent by the server in
// answer to a preview/select request, and sent by the client (with
// only the preview-sized mini_data populated) to request creation of
// a new character in Slot.
type CharInfo struct {
	Slot     uint32
	MiniData []byte // creation-time preview fields, opaque here
	Full     *chardata.BbFullCharData
}

func DecodeCharInfo(r *serial.Reader) CharInfo {
	slot := r.U32()
	mini := r.Raw(chardata.BbCharSize)
	return CharInfo{Slot: slot, MiniData: append([]byte(nil), mini...)}
}

func (m CharInfo) Encode(w *serial.Writer) {
	w.U32(m.Slot)
	if m.Full != nil {
		m.Full.Encode(w)
	}
}

// Timestamp carries the server's wall-clock time as fixed ASCII, the
// way pkt_funcs.go's SendTimestamp formats it.
type Timestamp struct{ Text string }

func (m Timestamp) Encode(w *serial.Writer) { w.FixedASCII(m.Text, 28) }

// ShipEntry/ShipList render the ship-selection menu; MenuSelect
// answers it by index.
type ShipEntry struct {
	ShipID uint32
	Name   string
}

type ShipList struct {
	ServerName string
	Ships      []ShipEntry
}

func (m ShipList) Encode(w *serial.Writer) {
	w.FixedUTF16(m.ServerName, 36)
	w.U32(uint32(len(m.Ships)))
	for _, s := range m.Ships {
		w.U32(menuIDShipSelect)
		w.U32(s.ShipID)
		w.FixedUTF16(s.Name, 36)
	}
}

const menuIDShipSelect = 0x00000001

type MenuSelect struct {
	MenuID uint32
	ItemID uint32
}

func DecodeMenuSelect(r *serial.Reader) MenuSelect {
	return MenuSelect{MenuID: r.U32(), ItemID: r.U32()}
}

// CharDat is the client's first block-service message: a snapshot of
// its own inventory and character data, sent once per block join.
// Block treats its mere arrival as the lobby-join trigger (spec.md
// section 4.7) and keeps the raw bytes to echo back into other
// members' LobbyJoin/LobbyAddMember/GameJoin snapshots.
type CharDat struct{ Data []byte }

func DecodeCharDat(payload []byte) CharDat {
	return CharDat{Data: append([]byte(nil), payload...)}
}

// Msg1/LargeMsg carry a single "\tE"-prefixed English message, used
// for StateError (Msg1) and FatalGameError (LargeMsg) per spec.md
// section 7.
type Msg1 struct{ Text string }

func (m Msg1) Encode(w *serial.Writer) { w.VarUTF16("\tE" + m.Text) }

type LargeMsg struct{ Text string }

func (m LargeMsg) Encode(w *serial.Writer) { w.VarUTF16("\tE" + m.Text) }
