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
* The login (character) service: BB welcome, shipgate-backed auth,
* the security-data handoff/redirect-to-self dance, the options/
* checksum/guildcard/param fetch sequence, character select/creation,
* and the final redirect into the ship list. Grounded on pkt_funcs.go's
* SendWelcome/SendSecurity/SendOptions/SendCharacterAck/
* SendCharacterPreview/SendChecksumAck/SendGuildcardHeader/Chunk/
* SendParameterHeader/Chunk/SendTimestamp/SendShipList, adapted from
* the teacher's blocking per-connection goroutine onto
* internal/reactor's event-driven model and a shipgate client whose
* replies arrive asynchronously by correlation key.
 */
package login

import (
	"crypto/rand"
	"hash/crc32"
	"log/slog"
	"time"

	"github.com/dcrodman/archon/internal/bbproto"
	"github.com/dcrodman/archon/internal/chardata"
	"github.com/dcrodman/archon/internal/encryption"
	"github.com/dcrodman/archon/internal/proto"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/serial"
	"github.com/dcrodman/archon/internal/servererr"
	"github.com/dcrodman/archon/internal/session"
	"github.com/dcrodman/archon/internal/shipgateclient"
	"github.com/dcrodman/archon/internal/shipgateproto"
	"github.com/dcrodman/archon/internal/staticdata/leveltable"
)

// pendingCall is invoked with the shipgate's reply once it arrives,
// on the single dispatch goroutine that owns every ClientState.
type pendingCall func(resp shipgateclient.Response)

// Server is the character/login service's single dispatch loop owner.
type Server struct {
	log        *slog.Logger
	shipgate   *shipgateclient.Client
	bbTable    [1024]uint32
	levelTable *leveltable.Table
	selfAddr   [4]byte
	selfPort   uint16

	guildcardBlob []byte
	guildcardCRC  uint32
	paramEntries  []bbproto.ParamFileEntry
	paramChunks   [][]byte

	conns   map[uint64]*session.ClientState
	pending map[uint32]pendingCall
}

func New(log *slog.Logger, sg *shipgateclient.Client, bbTable [1024]uint32, lt *leveltable.Table, selfAddr [4]byte, selfPort uint16) *Server {
	return &Server{
		log: log, shipgate: sg, bbTable: bbTable, levelTable: lt,
		selfAddr: selfAddr, selfPort: selfPort,
		conns:   map[uint64]*session.ClientState{},
		pending: map[uint32]pendingCall{},
	}
}

// Run drains the reactor's event channel and the shipgate client's
// response channel from a single goroutine, giving every ClientState
// exactly one owner as spec.md section 5 requires.
func (s *Server) Run(r *reactor.Reactor) {
	events := r.Events()
	responses := s.shipgate.Responses()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(r, ev)
		case resp, ok := <-responses:
			if !ok {
				return
			}
			if resp.Err != nil {
				s.log.Error("shipgate response error", "error", resp.Err)
				continue
			}
			if cb, ok := s.pending[resp.Key]; ok {
				delete(s.pending, resp.Key)
				cb(resp)
			}
		}
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
		delete(s.conns, ev.ConnID)
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

func (s *Server) sendError(conn *reactor.Conn, cs *session.ClientState, err error) {
	switch e := err.(type) {
	case *servererr.StateError:
		w := serial.NewWriter()
		bbproto.Msg1{Text: e.Message}.Encode(w)
		s.send(conn, cs, bbproto.MsgMsg1, 0, w.Bytes())
	case *servererr.FatalGameError:
		w := serial.NewWriter()
		bbproto.LargeMsg{Text: e.Message}.Encode(w)
		s.send(conn, cs, bbproto.MsgLargeMsg, 0, w.Bytes())
		conn.Close()
	default:
		s.log.Error("login: unhandled error, dropping connection", "error", err)
		conn.Close()
	}
}

func (s *Server) dispatch(conn *reactor.Conn, cs *session.ClientState, f reactor.Frame) {
	switch f.Type {
	case bbproto.MsgLogin:
		s.handleLogin(conn, cs, f.Payload)
	case bbproto.MsgOptionRequest:
		s.send(conn, cs, bbproto.MsgOptionConfig, 0, encode(bbproto.OptionConfig{TeamKeyData: cs.TeamKeyData}))
	case bbproto.MsgChecksum:
		s.send(conn, cs, bbproto.MsgChecksumAck, 0, encode(bbproto.ChecksumAck{OK: 1}))
	case bbproto.MsgGuildRequest:
		s.handleGuildRequest(conn, cs)
	case bbproto.MsgGuildCardChunkReq:
		s.handleGuildChunkReq(conn, cs, f.Payload)
	case bbproto.MsgParamHdrReq:
		s.handleParamHdrReq(conn, cs)
	case bbproto.MsgParamChunkReq:
		s.handleParamChunkReq(conn, cs, f.Payload)
	case bbproto.MsgCharSelect:
		s.handleCharSelect(conn, cs, f.Payload)
	case bbproto.MsgCharInfo:
		s.handleCharInfo(conn, cs, f.Payload)
	case bbproto.MsgMenuSelect:
		s.handleMenuSelect(conn, cs, f.Payload)
	default:
		s.log.Debug("login: unhandled message", "conn", cs.ConnID, "type", f.Type)
	}
}

func encode(m interface{ Encode(*serial.Writer) }) []byte {
	w := serial.NewWriter()
	m.Encode(w)
	return w.Bytes()
}

func (s *Server) handleLogin(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	login := bbproto.DecodeLogin(serial.NewReader(payload))
	cs.SecurityData = login.SecurityData

	key := s.shipgate.NextKey()
	w := shipgateclient.NewWriter()
	shipgateproto.BbLoginChallenge{Username: login.Username, Password: login.Password}.Encode(w)
	if err := s.shipgate.Send(shipgateproto.MsgBbLoginChallenge, key, w.Bytes()); err != nil {
		s.sendError(conn, cs, &servererr.BackendError{Cause: err})
		return
	}
	s.pending[key] = func(resp shipgateclient.Response) {
		ack := shipgateproto.DecodeBbLoginChallengeAck(serial.NewReader(resp.Body))
		if ack.Status != shipgateproto.StatusOK {
			s.send(conn, cs, bbproto.MsgSecurity, 0, encode(bbproto.Security{ErrCode: ack.Status, SecurityData: cs.SecurityData}))
			conn.Close()
			return
		}
		cs.AccountID = ack.AccountID
		s.fetchAccountInfo(conn, cs)
	}
}

func (s *Server) fetchAccountInfo(conn *reactor.Conn, cs *session.ClientState) {
	key := s.shipgate.NextKey()
	w := shipgateclient.NewWriter()
	shipgateproto.BbGetAccountInfo{AccountID: cs.AccountID}.Encode(w)
	if err := s.shipgate.Send(shipgateproto.MsgBbGetAccountInfo, key, w.Bytes()); err != nil {
		s.sendError(conn, cs, &servererr.BackendError{Cause: err})
		return
	}
	s.pending[key] = func(resp shipgateclient.Response) {
		ack := shipgateproto.DecodeBbGetAccountInfoAck(serial.NewReader(resp.Body))
		if ack.Status != 0 {
			s.sendError(conn, cs, &servererr.BackendError{Cause: nil})
			return
		}
		cs.GuildcardNum = ack.GuildcardNum
		cs.TeamID = ack.TeamID
		cs.TeamKeyData = ack.TeamKeyData
		s.completeAuth(conn, cs)
	}
}

// completeAuth implements spec.md section 4.5 steps 4/9: a fresh
// session gets its security_data stamped and is redirected back to
// this same service; a session that already selected a character
// (sel_char == 1) instead proceeds straight to the ship list.
func (s *Server) completeAuth(conn *reactor.Conn, cs *session.ClientState) {
	if cs.SecurityData.Magic != chardata.HandoffMagic {
		cs.SecurityData.Magic = chardata.HandoffMagic
		s.send(conn, cs, bbproto.MsgSecurity, 0, encode(bbproto.Security{
			Guildcard: cs.GuildcardNum, TeamID: cs.TeamID, SecurityData: cs.SecurityData,
		}))
		body := proto.EncodeRedirectBody(s.selfAddr, s.selfPort)
		s.send(conn, cs, bbproto.MsgRedirect, 0, body)
		return
	}

	s.send(conn, cs, bbproto.MsgSecurity, 0, encode(bbproto.Security{
		Guildcard: cs.GuildcardNum, TeamID: cs.TeamID, SecurityData: cs.SecurityData,
	}))

	if cs.SecurityData.SelChar == 1 {
		s.sendShipList(conn, cs)
	}
}

func (s *Server) handleGuildRequest(conn *reactor.Conn, cs *session.ClientState) {
	s.send(conn, cs, bbproto.MsgGuildCardHdr, 0, encode(bbproto.GuildCardHdr{
		Checksum: s.guildcardCRC, Length: uint32(len(s.guildcardBlob)),
	}))
}

const guildcardChunkSize = 0x6800

func (s *Server) handleGuildChunkReq(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	req := bbproto.DecodeGuildCardChunkReq(serial.NewReader(payload))
	offset := int(req.Chunk) * guildcardChunkSize
	if offset >= len(s.guildcardBlob) {
		return
	}
	end := offset + guildcardChunkSize
	if end > len(s.guildcardBlob) {
		end = len(s.guildcardBlob)
	}
	s.send(conn, cs, bbproto.MsgGuildCardChunk, 0, encode(bbproto.GuildCardChunk{
		Chunk: req.Chunk, Data: s.guildcardBlob[offset:end],
	}))
}

func (s *Server) handleParamHdrReq(conn *reactor.Conn, cs *session.ClientState) {
	s.send(conn, cs, bbproto.MsgParamHdr, uint32(len(s.paramEntries)), encode(bbproto.ParamHdr{Entries: s.paramEntries}))
}

func (s *Server) handleParamChunkReq(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	req := bbproto.DecodeParamChunkReq(serial.NewReader(payload))
	if int(req.Chunk) >= len(s.paramChunks) {
		return
	}
	s.send(conn, cs, bbproto.MsgParamChunk, 0, encode(bbproto.ParamChunk{Chunk: req.Chunk, Data: s.paramChunks[req.Chunk]}))
}

func (s *Server) handleCharSelect(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	sel := bbproto.DecodeCharSelect(serial.NewReader(payload))
	cs.Slot = uint8(sel.Slot)

	if sel.Selecting {
		cs.SecurityData.SelChar = 1
		cs.SecurityData.Slot = cs.Slot
		s.send(conn, cs, bbproto.MsgSecurity, 0, encode(bbproto.Security{
			Guildcard: cs.GuildcardNum, TeamID: cs.TeamID, SecurityData: cs.SecurityData,
		}))
		s.send(conn, cs, bbproto.MsgCharAck, 0, encode(bbproto.CharAck{Slot: sel.Slot, Code: bbproto.CharAckSelected}))
		return
	}

	key := s.shipgate.NextKey()
	w := shipgateclient.NewWriter()
	shipgateproto.BbGetCharacter{AccountID: cs.AccountID, Slot: cs.Slot}.Encode(w)
	if err := s.shipgate.Send(shipgateproto.MsgBbGetCharacter, key, w.Bytes()); err != nil {
		s.sendError(conn, cs, &servererr.BackendError{Cause: err})
		return
	}
	s.pending[key] = func(resp shipgateclient.Response) {
		ack := shipgateproto.DecodeBbGetCharacterAck(serial.NewReader(resp.Body))
		if ack.Status != 0 || !ack.HasChar {
			s.send(conn, cs, bbproto.MsgCharAck, 0, encode(bbproto.CharAck{Slot: sel.Slot, Code: bbproto.CharAckEmpty}))
			return
		}
		full := ack.FullChar
		cs.Char = &full
		s.send(conn, cs, bbproto.MsgCharInfo, 0, encode(bbproto.CharInfo{Slot: sel.Slot, Full: cs.Char}))
	}
}

// handleCharInfo implements character creation: the client sends a
// CharInfo with a non-empty guildcard_str, asking the server to build
// and persist a brand-new character in the selected slot.
func (s *Server) handleCharInfo(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	info := bbproto.DecodeCharInfo(serial.NewReader(payload))
	miniReader := serial.NewReader(info.MiniData)
	mini := chardata.DecodeBbChar(miniReader)
	if isAllZero(mini.GuildcardStr[:]) {
		return
	}

	var full chardata.BbFullCharData
	full.Character = mini
	full.Character.Level = 0
	full.Character.Experience = 0
	full.Character.Meseta = chardata.StarterMeseta
	row := s.levelTable.Row(mini.Class, 0)
	full.Character.ATP, full.Character.MST, full.Character.EVP = row.ATP, row.MST, row.EVP
	full.Character.HP, full.Character.DFP, full.Character.ATA = row.HP, row.DFP, row.ATA
	full.Inventory = chardata.DefaultInventory(mini.Class, mini.Skin, mini.Costume)

	w := shipgateclient.NewWriter()
	shipgateproto.BbPutCharacter{AccountID: cs.AccountID, Slot: uint8(info.Slot), SaveAcctData: true, FullChar: full}.Encode(w)
	_ = s.shipgate.Send(shipgateproto.MsgBbPutCharacter, 0, w.Bytes()) // fire-and-forget

	cs.Char = &full
	s.send(conn, cs, bbproto.MsgCharAck, 0, encode(bbproto.CharAck{Slot: info.Slot, Code: 0}))
}

func nowStamp() string { return time.Now().Format("2006:01:02: 15:05:05") }

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func (s *Server) sendShipList(conn *reactor.Conn, cs *session.ClientState) {
	s.send(conn, cs, bbproto.MsgTimestamp, 0, encode(bbproto.Timestamp{Text: nowStamp()}))

	key := s.shipgate.NextKey()
	if err := s.shipgate.Send(shipgateproto.MsgShipList, key, shipgateclient.NewWriter().Bytes()); err != nil {
		s.sendError(conn, cs, &servererr.BackendError{Cause: err})
		return
	}
	s.pending[key] = func(resp shipgateclient.Response) {
		ack := shipgateproto.DecodeShipListAck(serial.NewReader(resp.Body))
		cs.Ships = make([]session.ShipListEntry, len(ack.Ships))
		entries := make([]bbproto.ShipEntry, len(ack.Ships))
		for i, sh := range ack.Ships {
			cs.Ships[i] = session.ShipListEntry{Addr: sh.Addr, Port: sh.Port, Name: sh.Name}
			entries[i] = bbproto.ShipEntry{ShipID: uint32(i + 1), Name: sh.Name}
		}
		s.send(conn, cs, bbproto.MsgShipList, uint32(len(entries)), encode(bbproto.ShipList{ServerName: "Archon", Ships: entries}))
	}
}

func (s *Server) handleMenuSelect(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	sel := bbproto.DecodeMenuSelect(serial.NewReader(payload))
	idx := int(sel.ItemID) - 1
	if idx < 0 || idx >= len(cs.Ships) {
		s.sendError(conn, cs, &servererr.StateError{Message: "Invalid selection."})
		return
	}
	ship := cs.Ships[idx]
	s.send(conn, cs, bbproto.MsgRedirect, 0, proto.EncodeRedirectBody(ship.Addr, ship.Port))
}

// SetGuildcardData and SetParamData let the entry point install the
// precomputed guildcard archive and parameter chunks the loaders
// produce at startup, grounded on spec.md section 4.5's fixed
// 54672-byte / nine-entry contract.
func (s *Server) SetGuildcardData(blob []byte) {
	s.guildcardBlob = blob
	s.guildcardCRC = crc32.ChecksumIEEE(blob)
}

func (s *Server) SetParamData(entries []bbproto.ParamFileEntry, chunks [][]byte) {
	s.paramEntries = entries
	s.paramChunks = chunks
}
