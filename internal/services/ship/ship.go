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
* The ship service: spec.md section 4.6 calls it "thin" by design —
* welcome, a re-auth against the shipgate (the client still carries
* its handed-off security_data from login, but resends credentials),
* BbSecurity with the ship capability flag, Timestamp, and a block
* menu. MenuSelect on a block redirects into that block's own
* service process. Registers itself with the shipgate at startup via
* RegisterShip, grounded on pkt_funcs.go's connection-time
* registration idiom generalized from a single shipgate call to the
* shipgateclient abstraction.
 */
package ship

import (
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/dcrodman/archon/internal/bbproto"
	"github.com/dcrodman/archon/internal/encryption"
	"github.com/dcrodman/archon/internal/proto"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/serial"
	"github.com/dcrodman/archon/internal/session"
	"github.com/dcrodman/archon/internal/shipgateclient"
	"github.com/dcrodman/archon/internal/shipgateproto"
)

// shipCapabilities is the bit the client uses to tell it's talking to
// a ship rather than the login service.
const shipCapabilities = 0x00000102

// BlockEntry is one selectable block in this ship's menu.
type BlockEntry struct {
	Num  uint32
	Addr [4]byte
	Port uint16
	Name string
}

type pendingCall func(resp shipgateclient.Response)

type Server struct {
	log      *slog.Logger
	shipgate *shipgateclient.Client
	bbTable  [1024]uint32
	blocks   []BlockEntry

	conns   map[uint64]*session.ClientState
	pending map[uint32]pendingCall
}

func New(log *slog.Logger, sg *shipgateclient.Client, bbTable [1024]uint32, blocks []BlockEntry) *Server {
	return &Server{
		log: log, shipgate: sg, bbTable: bbTable, blocks: blocks,
		conns:   map[uint64]*session.ClientState{},
		pending: map[uint32]pendingCall{},
	}
}

// Register announces this ship to the shipgate so it appears in the
// login service's ShipList. Called once at startup, before Run.
func (s *Server) Register(name string, addr [4]byte, port uint16) error {
	w := shipgateclient.NewWriter()
	shipgateproto.RegisterShip{Addr: addr, Port: port, Name: name}.Encode(w)
	return s.shipgate.Send(shipgateproto.MsgRegisterShip, 0, w.Bytes())
}

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

func encode(m interface{ Encode(*serial.Writer) }) []byte {
	w := serial.NewWriter()
	m.Encode(w)
	return w.Bytes()
}

func (s *Server) dispatch(conn *reactor.Conn, cs *session.ClientState, f reactor.Frame) {
	switch f.Type {
	case bbproto.MsgLogin:
		s.handleLogin(conn, cs, f.Payload)
	case bbproto.MsgMenuSelect:
		s.handleMenuSelect(conn, cs, f.Payload)
	default:
		s.log.Debug("ship: unhandled message", "conn", cs.ConnID, "type", f.Type)
	}
}

func (s *Server) handleLogin(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	login := bbproto.DecodeLogin(serial.NewReader(payload))
	cs.SecurityData = login.SecurityData

	key := s.shipgate.NextKey()
	w := shipgateclient.NewWriter()
	shipgateproto.BbLoginChallenge{Username: login.Username, Password: login.Password}.Encode(w)
	if err := s.shipgate.Send(shipgateproto.MsgBbLoginChallenge, key, w.Bytes()); err != nil {
		s.log.Error("shipgate send failed", "error", err)
		conn.Close()
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
		s.log.Error("shipgate send failed", "error", err)
		conn.Close()
		return
	}
	s.pending[key] = func(resp shipgateclient.Response) {
		ack := shipgateproto.DecodeBbGetAccountInfoAck(serial.NewReader(resp.Body))
		if ack.Status != 0 {
			conn.Close()
			return
		}
		cs.GuildcardNum = ack.GuildcardNum
		cs.TeamID = ack.TeamID
		cs.TeamKeyData = ack.TeamKeyData

		s.send(conn, cs, bbproto.MsgSecurity, 0, encode(bbproto.Security{
			Guildcard: cs.GuildcardNum, TeamID: cs.TeamID, SecurityData: cs.SecurityData,
			Capabilities: shipCapabilities,
		}))
		s.send(conn, cs, bbproto.MsgTimestamp, 0, encode(bbproto.Timestamp{Text: nowStamp()}))
		s.sendBlockList(conn, cs)
	}
}

func (s *Server) sendBlockList(conn *reactor.Conn, cs *session.ClientState) {
	entries := make([]bbproto.ShipEntry, len(s.blocks))
	for i, b := range s.blocks {
		entries[i] = bbproto.ShipEntry{ShipID: b.Num, Name: b.Name}
	}
	s.send(conn, cs, bbproto.MsgShipList, uint32(len(entries)), encode(bbproto.ShipList{ServerName: "Archon", Ships: entries}))
}

func (s *Server) handleMenuSelect(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	sel := bbproto.DecodeMenuSelect(serial.NewReader(payload))
	idx := int(sel.ItemID) - 1
	if idx < 0 || idx >= len(s.blocks) {
		s.send(conn, cs, bbproto.MsgMsg1, 0, encode(bbproto.Msg1{Text: "Invalid selection."}))
		return
	}
	block := s.blocks[idx]
	s.send(conn, cs, bbproto.MsgRedirect, 0, proto.EncodeRedirectBody(block.Addr, block.Port))
}

func nowStamp() string { return time.Now().Format("2006:01:02: 15:05:05") }
