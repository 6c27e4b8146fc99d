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
* The block service: 15 fixed lobbies plus player-created parties
* (games), subcommand relay, bursting, EXP arbitration, and chat
* (spec.md sections 4.7-4.9). This is the one service whose dispatch
* loop owns genuinely shared, cross-connection state (lobby/party
* rosters), still confined to the single reactor goroutine per
* spec.md section 5.
 */
package block

import (
	"crypto/rand"
	"log/slog"
	"unicode/utf16"

	"github.com/dcrodman/archon/internal/bbproto"
	"github.com/dcrodman/archon/internal/chardata"
	"github.com/dcrodman/archon/internal/encryption"
	"github.com/dcrodman/archon/internal/enemygen"
	"github.com/dcrodman/archon/internal/proto"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/serial"
	"github.com/dcrodman/archon/internal/session"
	"github.com/dcrodman/archon/internal/shipgateclient"
	"github.com/dcrodman/archon/internal/shipgateproto"
	"github.com/dcrodman/archon/internal/staticdata/battleparam"
	"github.com/dcrodman/archon/internal/staticdata/leveltable"
	"github.com/dcrodman/archon/internal/staticdata/maps"
)

type Server struct {
	log      *slog.Logger
	shipgate *shipgateclient.Client
	bbTable  [1024]uint32
	blockNum int
	event    enemygen.Event

	mapLoader    *maps.Loader
	battleParams *battleparam.Table
	levelTable   *leveltable.Table

	lobbies      [LobbyCount]*Lobby
	parties      map[string]*Party
	partiesByUID map[uint32]*Party
	nextUID      uint32

	conns map[uint64]*session.ClientState
}

func New(log *slog.Logger, sg *shipgateclient.Client, bbTable [1024]uint32, blockNum int, event enemygen.Event,
	mapLoader *maps.Loader, battleParams *battleparam.Table, levelTable *leveltable.Table) *Server {
	s := &Server{
		log: log, shipgate: sg, bbTable: bbTable, blockNum: blockNum, event: event,
		mapLoader: mapLoader, battleParams: battleParams, levelTable: levelTable,
		parties:      map[string]*Party{},
		partiesByUID: map[uint32]*Party{},
		nextUID:      1,
		conns:        map[uint64]*session.ClientState{},
	}
	for i := range s.lobbies {
		s.lobbies[i] = newLobby(i)
	}
	return s
}

func (s *Server) Run(r *reactor.Reactor) {
	for ev := range r.Events() {
		s.handleEvent(r, ev)
	}
}

func (s *Server) handleEvent(r *reactor.Reactor, ev reactor.Event) {
	switch ev.Kind {
	case reactor.EventConnected:
		conn := r.Conn(ev.ConnID)
		if conn == nil {
			return
		}
		cs := session.NewClientState(ev.ConnID)
		s.conns[ev.ConnID] = cs
		s.sendWelcome(conn, cs)
	case reactor.EventFrame:
		cs, ok := s.conns[ev.ConnID]
		if !ok {
			return
		}
		conn := r.Conn(ev.ConnID)
		if conn == nil {
			return
		}
		s.dispatch(conn, cs, ev.Frame)
	case reactor.EventDisconnected:
		s.handleDisconnect(ev.ConnID)
	}
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

func (s *Server) sendWelcome(conn *reactor.Conn, cs *session.ClientState) {
	serverSeed, clientSeed := randBytes(48), randBytes(48)
	w := serial.NewWriter()
	var welcome bbproto.Welcome
	copy(welcome.ServerSeed[:], serverSeed)
	copy(welcome.ClientSeed[:], clientSeed)
	welcome.Encode(w)
	conn.Send(proto.EncodeBB(bbproto.MsgWelcome, 0, w.Bytes()))

	conn.SetCipher(encryption.NewBBCipher(clientSeed, s.bbTable))
	cs.ServerCipher = encryption.NewBBCipher(serverSeed, s.bbTable)
	cs.ClientCipher = encryption.NewBBCipher(clientSeed, s.bbTable)
}

func (s *Server) send(conn *reactor.Conn, cs *session.ClientState, msgType uint16, flags uint32, payload []byte) {
	frame := proto.EncodeBB(msgType, flags, payload)
	cs.ServerCipher.Encrypt(frame)
	conn.Send(frame)
}

func encode(m interface{ Encode(*serial.Writer) }) []byte {
	w := serial.NewWriter()
	m.Encode(w)
	return w.Bytes()
}

func (s *Server) sendStateError(conn *reactor.Conn, cs *session.ClientState, msg string) {
	s.send(conn, cs, bbproto.MsgMsg1, 0, encode(bbproto.Msg1{Text: msg}))
}

func (s *Server) sendFatalError(conn *reactor.Conn, cs *session.ClientState, msg string) {
	s.send(conn, cs, bbproto.MsgLargeMsg, 0, encode(bbproto.LargeMsg{Text: msg}))
	conn.Close()
}

func (s *Server) dispatch(conn *reactor.Conn, cs *session.ClientState, f reactor.Frame) {
	switch f.Type {
	case bbproto.MsgCharDat:
		s.handleCharDat(conn, cs, f.Payload)
	case bbproto.MsgLobbyChange:
		s.handleLobbyChange(conn, cs, f.Payload)
	case bbproto.MsgCreateGame:
		s.handleCreateGame(conn, cs, f.Payload)
	case bbproto.MsgGameList:
		s.handleGameList(conn, cs)
	case bbproto.MsgMenuSelect:
		s.handleGameJoinByMenu(conn, cs, f.Payload)
	case bbproto.MsgChat:
		s.handleChat(conn, cs, f.Payload)
	case bbproto.MsgSubCmd60, bbproto.MsgSubCmd6C:
		s.handleBroadcastSubcommand(conn, cs, f.Type, f.Flags, f.Payload)
	case bbproto.MsgSubCmd62, bbproto.MsgSubCmd6D:
		s.handleUnicastSubcommand(conn, cs, f.Type, f.Flags, f.Payload)
	case bbproto.MsgDoneBursting:
		s.handleDoneBursting(conn, cs)
	default:
		s.log.Debug("block: unhandled message", "conn", cs.ConnID, "type", f.Type)
	}
}

func decodeName(units [chardata.NameLength]uint16) string {
	trimmed := units[:]
	for i, u := range units {
		if u == 0 {
			trimmed = units[:i]
			break
		}
	}
	return string(utf16.Decode(trimmed))
}

// handleCharDat is the block-join trigger: the client's first message
// after connecting carries its own character snapshot. The service
// seats it in the first non-full lobby and broadcasts its arrival.
func (s *Server) handleCharDat(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	if cs.InGame() {
		return
	}
	cd := bbproto.DecodeCharDat(payload)
	cs.CharBytes = cd.Data

	for _, lobby := range s.lobbies {
		slot := lobby.firstEmpty()
		if slot == -1 {
			continue
		}
		o := &occupant{cs: cs, conn: conn}
		lobby.Slots[slot] = o
		if lobby.LeaderSlot == -1 {
			lobby.LeaderSlot = slot
		}
		cs.Location = session.LocationLobby
		cs.LobbyNum = lobby.Num
		cs.ClientID = slot

		s.broadcastLobby(lobby, slot, bbproto.MsgLobbyAddMember, encode(bbproto.LobbyAddMember{
			Member: snapshotOf(slot, o),
		}))

		members := make([]bbproto.MemberSnapshot, 0, LobbyCapacity)
		for i, occ := range lobby.Slots {
			if occ != nil {
				members = append(members, snapshotOf(i, occ))
			}
		}
		s.send(conn, cs, bbproto.MsgLobbyJoin, 0, encode(bbproto.LobbyJoin{
			ClientID: uint32(slot), LeaderID: uint32(lobby.LeaderSlot), Members: members,
		}))
		s.send(conn, cs, bbproto.MsgSubCmd60, 0, bbproto.QuestData1(nil))
		return
	}

	s.sendStateError(conn, cs, "All lobbies are full.")
}

func snapshotOf(slot int, o *occupant) bbproto.MemberSnapshot {
	name := ""
	if o.cs.Char != nil {
		name = decodeName(o.cs.Char.Character.Name)
	}
	return bbproto.MemberSnapshot{
		ClientID: uint32(slot), Guildcard: o.cs.GuildcardNum, Name: name, CharBytes: o.cs.CharBytes,
	}
}

func (s *Server) broadcastLobby(lobby *Lobby, exceptSlot int, msgType uint16, payload []byte) {
	for i, o := range lobby.Slots {
		if o == nil || i == exceptSlot {
			continue
		}
		s.send(o.conn, o.cs, msgType, 0, payload)
	}
}

func (s *Server) broadcastLobbyLeave(lobby *Lobby, departedSlot int) {
	payload := encode(bbproto.LeaveNotice{DepartedSlot: uint32(departedSlot), NewLeader: uint32(maxInt(lobby.LeaderSlot, 0))})
	for _, o := range lobby.Slots {
		if o != nil {
			s.send(o.conn, o.cs, bbproto.MsgLobbyLeave, 0, payload)
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (s *Server) handleLobbyChange(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	if cs.Location != session.LocationLobby {
		return
	}
	lc := bbproto.DecodeLobbyChange(serial.NewReader(payload))
	if lc.LobbyNum < 1 || int(lc.LobbyNum) > LobbyCount {
		s.sendStateError(conn, cs, "Invalid lobby.")
		return
	}
	dest := s.lobbies[lc.LobbyNum-1]
	if dest.firstEmpty() == -1 {
		s.sendStateError(conn, cs, "That lobby is full.")
		return
	}
	src, departed := s.removeFromLobby(cs)
	s.broadcastLobbyLeave(src, departed)

	slot := dest.firstEmpty()
	o := &occupant{cs: cs, conn: conn}
	dest.Slots[slot] = o
	if dest.LeaderSlot == -1 {
		dest.LeaderSlot = slot
	}
	cs.Location = session.LocationLobby
	cs.LobbyNum = dest.Num
	cs.ClientID = slot

	s.broadcastLobby(dest, slot, bbproto.MsgLobbyAddMember, encode(bbproto.LobbyAddMember{Member: snapshotOf(slot, o)}))
}

// removeFromLobby extracts cs from whichever lobby slot currently
// holds it, re-electing a leader and clearing an empty lobby's
// leader_id back to 0, per spec.md section 4.7.
func (s *Server) removeFromLobby(cs *session.ClientState) (lobby *Lobby, departedSlot int) {
	lobby = s.lobbies[cs.LobbyNum]
	departedSlot = cs.ClientID
	lobby.Slots[departedSlot] = nil
	if lobby.occupantCount() == 0 {
		lobby.LeaderSlot = -1
	} else if lobby.LeaderSlot == departedSlot {
		lobby.electLeader()
	}
	cs.Location = session.LocationNone
	return lobby, departedSlot
}

func (s *Server) handleChat(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	chat := bbproto.DecodeChat(serial.NewReader(payload))
	out := encode(bbproto.Chat{GuildcardFrom: cs.GuildcardNum, Text: chat.Text})

	switch cs.Location {
	case session.LocationParty:
		party := s.partiesByUID[cs.PartyID]
		if party == nil {
			return
		}
		for i, o := range party.Slots {
			if o != nil && i != cs.ClientID {
				s.send(o.conn, o.cs, bbproto.MsgChat, 0, out)
			}
		}
	case session.LocationLobby:
		lobby := s.lobbies[cs.LobbyNum]
		for i, o := range lobby.Slots {
			if o != nil && i != cs.ClientID {
				s.send(o.conn, o.cs, bbproto.MsgChat, 0, out)
			}
		}
	}
}

func (s *Server) handleDisconnect(connID uint64) {
	cs, ok := s.conns[connID]
	if !ok {
		return
	}
	switch cs.Location {
	case session.LocationLobby:
		lobby, departed := s.removeFromLobby(cs)
		s.broadcastLobbyLeave(lobby, departed)
	case session.LocationParty:
		s.removePlayerFromParty(cs)
	}
	if cs.Char != nil {
		w := shipgateclient.NewWriter()
		shipgateproto.BbPutCharacter{AccountID: cs.AccountID, Slot: cs.Slot, SaveAcctData: false, FullChar: *cs.Char}.Encode(w)
		_ = s.shipgate.Send(shipgateproto.MsgBbPutCharacter, 0, w.Bytes())
	}
	delete(s.conns, connID)
}
