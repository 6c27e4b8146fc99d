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
* The shipgate itself: one accept loop, one goroutine per connected
* service, authenticating with Auth before handling any other
* message, per spec.md section 4.3.
 */
package shipgatesvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net"

	"github.com/dcrodman/archon/internal/proto"
	"github.com/dcrodman/archon/internal/serial"
	"github.com/dcrodman/archon/internal/shipgateproto"
	"github.com/dcrodman/archon/internal/shipgatesvc/store"
)

type Server struct {
	listenAddr string
	password   string
	store      *store.Store
	log        *slog.Logger
}

func New(listenAddr, password string, st *store.Store, log *slog.Logger) *Server {
	return &Server{listenAddr: listenAddr, password: password, store: st, log: log}
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return err
	}
	defer ln.Close()
	s.log.Info("shipgate listening", "addr", s.listenAddr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.log.Error("accept failed", "error", err)
			continue
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	dec := proto.NewShipgateDecoder()
	buf := make([]byte, 8192)
	authenticated := false

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		frames, _, err := dec.Feed(buf[:n])
		if err != nil {
			s.log.Warn("shipgate framing error", "error", err)
			return
		}
		for _, f := range frames {
			if !authenticated {
				if f.Type != shipgateproto.MsgAuth {
					s.log.Warn("shipgate: first message was not Auth, dropping")
					return
				}
				auth := shipgateproto.DecodeAuth(serial.NewReader(f.Payload))
				if auth.Password != s.password {
					s.log.Warn("shipgate: auth password mismatch, dropping")
					s.reply(conn, f.CorrelationKey, shipgateproto.MsgAuthAck, shipgateproto.AuthAck{Status: 1})
					return
				}
				authenticated = true
				s.reply(conn, f.CorrelationKey, shipgateproto.MsgAuthAck, shipgateproto.AuthAck{Status: 0})
				continue
			}
			s.dispatch(conn, f)
		}
	}
}

type encodable interface{ Encode(w *serial.Writer) }

func (s *Server) reply(conn net.Conn, key uint32, msgType uint16, body encodable) {
	w := serial.NewWriter()
	body.Encode(w)
	frame := proto.EncodeShipgate(msgType, key, w.Bytes())
	if _, err := conn.Write(frame); err != nil {
		s.log.Warn("shipgate write failed", "error", err)
	}
}

func (s *Server) dispatch(conn net.Conn, f proto.ShipgateFrame) {
	ctx := context.Background()
	r := serial.NewReader(f.Payload)

	switch f.Type {
	case shipgateproto.MsgBbLoginChallenge:
		req := shipgateproto.DecodeBbLoginChallenge(r)
		hash := hashPassword(req.Password)
		acct, status, err := s.store.AuthenticateAccount(ctx, req.Username, hash)
		if err != nil {
			s.log.Error("shipgate: authenticate failed", "error", err)
			status = 1
		}
		s.reply(conn, f.CorrelationKey, shipgateproto.MsgBbLoginChallengeAck,
			shipgateproto.BbLoginChallengeAck{Status: uint32(status), AccountID: acct.ID})

	case shipgateproto.MsgBbGetAccountInfo:
		req := shipgateproto.DecodeBbGetAccountInfo(r)
		info, err := s.store.AccountInfo(ctx, req.AccountID)
		if err != nil {
			s.log.Error("shipgate: account info failed", "error", err)
			s.reply(conn, f.CorrelationKey, shipgateproto.MsgBbGetAccountInfoAck,
				shipgateproto.BbGetAccountInfoAck{Status: 1})
			return
		}
		s.reply(conn, f.CorrelationKey, shipgateproto.MsgBbGetAccountInfoAck,
			shipgateproto.BbGetAccountInfoAck{Status: 0, AccountID: req.AccountID, TeamKeyData: info.TeamKeyData})

	case shipgateproto.MsgBbUpdateOptions:
		req := shipgateproto.DecodeBbUpdateOptions(r)
		if err := s.store.UpdateOptions(ctx, req.AccountID, req.Options); err != nil {
			s.log.Error("shipgate: update options failed", "error", err)
		}

	case shipgateproto.MsgBbUpdateKeys:
		req := shipgateproto.DecodeBbUpdateKeys(r)
		if err := s.store.UpdateKeyConfig(ctx, req.AccountID, req.KeyConfig[:]); err != nil {
			s.log.Error("shipgate: update keys failed", "error", err)
		}

	case shipgateproto.MsgBbUpdateJoy:
		req := shipgateproto.DecodeBbUpdateJoy(r)
		if err := s.store.UpdateJoyConfig(ctx, req.AccountID, req.JoystickConfig[:]); err != nil {
			s.log.Error("shipgate: update joy failed", "error", err)
		}

	case shipgateproto.MsgBbGetCharacter:
		req := shipgateproto.DecodeBbGetCharacter(r)
		full, ok, err := s.store.GetCharacter(ctx, req.AccountID, req.Slot)
		if err != nil {
			s.log.Error("shipgate: get character failed", "error", err)
			s.reply(conn, f.CorrelationKey, shipgateproto.MsgBbGetCharacterAck,
				shipgateproto.BbGetCharacterAck{Status: 1, Slot: req.Slot})
			return
		}
		s.reply(conn, f.CorrelationKey, shipgateproto.MsgBbGetCharacterAck,
			shipgateproto.BbGetCharacterAck{Status: 0, Slot: req.Slot, HasChar: ok, FullChar: full})

	case shipgateproto.MsgBbPutCharacter:
		req := shipgateproto.DecodeBbPutCharacter(r)
		if err := s.store.PutCharacter(ctx, req.AccountID, req.Slot, req.FullChar, req.SaveAcctData); err != nil {
			s.log.Error("shipgate: put character failed", "error", err)
		}

	case shipgateproto.MsgBbSetLoginFlags:
		req := shipgateproto.DecodeBbSetLoginFlags(r)
		if err := s.store.SetLoginFlags(ctx, req.AccountID, req.Flags); err != nil {
			s.log.Error("shipgate: set login flags failed", "error", err)
		}

	case shipgateproto.MsgBbGetLoginFlags:
		req := shipgateproto.DecodeBbGetLoginFlags(r)
		flags, err := s.store.GetLoginFlags(ctx, req.AccountID)
		status := uint32(0)
		if err != nil {
			s.log.Error("shipgate: get login flags failed", "error", err)
			status = 1
		}
		s.reply(conn, f.CorrelationKey, shipgateproto.MsgBbGetLoginFlagsAck,
			shipgateproto.BbGetLoginFlagsAck{Status: status, Flags: flags})

	case shipgateproto.MsgRegisterShip:
		req := shipgateproto.DecodeRegisterShip(r)
		err := s.store.RegisterShip(ctx, store.RegisteredShip{Addr: req.Addr, Port: req.Port, Name: req.Name})
		status := uint32(0)
		if err != nil {
			s.log.Error("shipgate: register ship failed", "error", err)
			status = 1
		}
		s.reply(conn, f.CorrelationKey, shipgateproto.MsgRegisterShipAck, shipgateproto.RegisterShipAck{Status: status})

	case shipgateproto.MsgShipList:
		ships, err := s.store.ListShips(ctx)
		ack := shipgateproto.ShipListAck{}
		if err != nil {
			s.log.Error("shipgate: list ships failed", "error", err)
			ack.Status = 1
		} else {
			for _, sh := range ships {
				ack.Ships = append(ack.Ships, shipgateproto.ShipEntry{Addr: sh.Addr, Port: sh.Port, Name: sh.Name})
			}
		}
		s.reply(conn, f.CorrelationKey, shipgateproto.MsgShipListAck, ack)

	default:
		s.log.Warn("shipgate: unhandled message type", "type", f.Type)
	}
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
