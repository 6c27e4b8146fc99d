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
* 0x60/0x62/0x6C/0x6D subcommand relay and the bursting buffer, per
* spec.md section 4.8. Subcommands are opaque to this layer except for
* the handful the bursting and EXP contracts name explicitly.
 */
package block

import (
	"github.com/dcrodman/archon/internal/bbproto"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/session"
)

// handleBroadcastSubcommand relays a 0x60/0x6C message to every other
// occupant of the sender's lobby or party. While the party is still
// bursting, anything but the 0x7C pass-through opcode is buffered
// instead and replayed once bursting clears.
func (s *Server) handleBroadcastSubcommand(conn *reactor.Conn, cs *session.ClientState, msgType uint16, flags uint32, payload []byte) {
	if cs.Location == session.LocationParty {
		party := s.partiesByUID[cs.PartyID]
		if party == nil {
			return
		}
		if party.anyBursting() && bbproto.InnerOpcode(payload) != bbproto.SubOpPassThroughAfterBurst0x7C {
			party.pending = append(party.pending, pendingSubcommand{
				senderSlot: cs.ClientID, msgType: msgType, flags: flags, payload: payload,
			})
			return
		}
		if bbproto.InnerOpcode(payload) == bbproto.SubOpReqExp {
			s.handleReqExp(cs, payload)
			return
		}
		for i, o := range party.Slots {
			if o != nil && i != cs.ClientID {
				s.send(o.conn, o.cs, msgType, uint32(cs.ClientID), payload)
			}
		}
		return
	}

	if cs.Location == session.LocationLobby {
		lobby := s.lobbies[cs.LobbyNum]
		for i, o := range lobby.Slots {
			if o != nil && i != cs.ClientID {
				s.send(o.conn, o.cs, msgType, uint32(cs.ClientID), payload)
			}
		}
	}
}

// handleUnicastSubcommand relays a 0x62/0x6D message to the single
// occupant named by flags (the destination client_id), subject to the
// same bursting buffer as the broadcast form.
func (s *Server) handleUnicastSubcommand(conn *reactor.Conn, cs *session.ClientState, msgType uint16, flags uint32, payload []byte) {
	if cs.Location != session.LocationParty {
		return
	}
	party := s.partiesByUID[cs.PartyID]
	if party == nil {
		return
	}
	if party.anyBursting() && !bbproto.BurstSafe(payload) {
		party.pending = append(party.pending, pendingSubcommand{
			senderSlot: cs.ClientID, msgType: msgType, flags: flags, payload: payload,
		})
		return
	}
	dest := int(flags)
	if dest < 0 || dest >= PartyCapacity || party.Slots[dest] == nil {
		return
	}
	o := party.Slots[dest]
	s.send(o.conn, o.cs, msgType, uint32(cs.ClientID), payload)
}

// handleDoneBursting answers a client's MsgDoneBursting: clears its
// bursting flag, pings it, broadcasts DoneBurst, and — once no member
// is still bursting — drains the party's buffered relay queue in
// arrival order.
func (s *Server) handleDoneBursting(conn *reactor.Conn, cs *session.ClientState) {
	if cs.Location != session.LocationParty {
		return
	}
	party := s.partiesByUID[cs.PartyID]
	if party == nil {
		return
	}
	slot := cs.ClientID
	if !party.Bursting[slot] {
		s.sendStateError(conn, cs, "Not bursting.")
		return
	}
	party.Bursting[slot] = false
	s.send(conn, cs, bbproto.MsgPing, 0, encode(bbproto.Ping{}))

	for i, o := range party.Slots {
		if o != nil && i != slot {
			s.send(o.conn, o.cs, bbproto.MsgSubCmd60, uint32(slot), bbproto.DoneBurst(uint8(slot)))
		}
	}

	if party.anyBursting() {
		return
	}
	pending := party.pending
	party.pending = nil
	for _, p := range pending {
		o := party.Slots[p.senderSlot]
		if o == nil {
			continue
		}
		switch p.msgType {
		case bbproto.MsgSubCmd60, bbproto.MsgSubCmd6C:
			s.handleBroadcastSubcommand(o.conn, o.cs, p.msgType, p.flags, p.payload)
		case bbproto.MsgSubCmd62, bbproto.MsgSubCmd6D:
			s.handleUnicastSubcommand(o.conn, o.cs, p.msgType, p.flags, p.payload)
		}
	}
}
