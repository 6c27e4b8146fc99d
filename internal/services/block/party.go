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
* Party (game) creation, membership, and the game-selection menu,
* per spec.md section 4.8. The map-instance roll walks whichever
* areas the static-data loader actually found files for, in ascending
* AreaID order, standing in for the real client's canonical city/
* outdoor/indoor/boss area sequence the retrieval pack doesn't carry
* the literal area ID table for.
 */
package block

import (
	"math/rand"
	"sort"

	"github.com/dcrodman/archon/internal/bbproto"
	"github.com/dcrodman/archon/internal/enemygen"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/serial"
	"github.com/dcrodman/archon/internal/session"
	"github.com/dcrodman/archon/internal/staticdata/maps"
)

func (s *Server) handleCreateGame(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	if cs.Location != session.LocationLobby {
		s.sendFatalError(conn, cs, "Illegal message.")
		return
	}
	req := bbproto.DecodeCreateGame(serial.NewReader(payload))

	if _, exists := s.parties[req.Name]; exists {
		s.sendStateError(conn, cs, "A game with that name already exists.")
		return
	}
	if req.Challenge && req.Episode == 3 {
		s.sendStateError(conn, cs, "Challenge mode is not available on Episode 4.")
		return
	}
	if req.Battle {
		s.sendStateError(conn, cs, "Battle mode is not supported.")
		return
	}
	if req.Challenge {
		s.sendStateError(conn, cs, "Challenge mode is not supported.")
		return
	}

	variants, enemies := s.generateInstance(req.Episode, req.Difficulty)

	party := &Party{
		UID: s.nextUID, Name: req.Name, Password: req.Password,
		Difficulty: req.Difficulty, Episode: req.Episode, SinglePlayer: req.SinglePlayer,
		LeaderSlot: -1, Variants: variants, Enemies: enemies,
	}
	s.nextUID++
	s.parties[party.Name] = party
	s.partiesByUID[party.UID] = party

	lobby, departed := s.removeFromLobby(cs)
	s.broadcastLobbyLeave(lobby, departed)

	s.addPlayerToParty(conn, cs, party)
}

// generateInstance rolls the random map layout and its expanded enemy
// list for a fresh party, per spec.md section 4.8.
func (s *Server) generateInstance(episodeField uint8, difficulty uint8) ([32]uint32, []enemygen.InstanceEnemy) {
	var variants [32]uint32
	var areas maps.Areas
	ep := enemygen.Episode1
	switch episodeField {
	case 2:
		areas, ep = s.mapLoader.Ep2Areas, enemygen.Episode2
	case 3:
		areas, ep = s.mapLoader.Ep4Areas, enemygen.Episode4
	default:
		areas, ep = s.mapLoader.Ep1Areas, enemygen.Episode1
	}

	areaIDs := make([]maps.AreaID, 0, len(areas))
	for a := range areas {
		areaIDs = append(areaIDs, a)
	}
	sort.Slice(areaIDs, func(i, j int) bool { return areaIDs[i] < areaIDs[j] })

	var enemies []enemygen.InstanceEnemy
	idx := 0
	for _, area := range areaIDs {
		available := areas[area]
		if len(available) == 0 {
			continue
		}
		variant := available[rand.Intn(len(available))]
		records := s.mapLoader.EnemiesFor(area, variant)
		enemies = append(enemies, enemygen.Expand(records, ep, s.event, difficulty >= 1, s.log)...)

		if ep == enemygen.Episode4 {
			if idx < len(variants) {
				variants[idx] = uint32(variant)
				idx++
			}
		} else {
			if idx+1 < len(variants) {
				variants[idx] = uint32(area)
				variants[idx+1] = uint32(variant)
				idx += 2
			}
		}
	}
	return variants, enemies
}

// addPlayerToParty seats cs in the first empty slot, sends it the
// GameJoin snapshot, and broadcasts GameAddMember to the rest.
func (s *Server) addPlayerToParty(conn *reactor.Conn, cs *session.ClientState, party *Party) {
	slot := party.firstEmpty()
	o := &occupant{cs: cs, conn: conn}
	party.Slots[slot] = o
	if party.LeaderSlot == -1 {
		party.LeaderSlot = slot
		if cs.Char != nil {
			party.SectionID = cs.Char.Character.SectionID
		}
	}
	party.Bursting[slot] = true

	cs.Location = session.LocationParty
	cs.PartyID = party.UID
	cs.ClientID = slot

	var players [PartyCapacity]bbproto.PlayerHeader
	for i, occ := range party.Slots {
		if occ == nil {
			continue
		}
		name := ""
		if occ.cs.Char != nil {
			name = decodeName(occ.cs.Char.Character.Name)
		}
		players[i] = bbproto.PlayerHeader{Guildcard: occ.cs.GuildcardNum, ClientID: uint32(i), Name: name}
	}

	s.send(conn, cs, bbproto.MsgGameJoin, 0, encode(bbproto.GameJoin{
		Variants: party.Variants, SlotID: uint32(slot), LeaderID: uint32(party.LeaderSlot),
		Difficulty: party.Difficulty, Episode: party.Episode, SectionID: party.SectionID,
		SinglePlayer: party.SinglePlayer, Players: players,
	}))

	for i, occ := range party.Slots {
		if occ == nil || i == slot {
			continue
		}
		s.send(occ.conn, occ.cs, bbproto.MsgGameAddMember, 0, encode(bbproto.GameAddMember{
			Member: snapshotOf(slot, o),
		}))
	}
}

// removePlayerFromParty implements spec.md section 4.8's remove_player:
// leader re-election, a GameLeave broadcast, and destruction of a
// party left with no occupants.
func (s *Server) removePlayerFromParty(cs *session.ClientState) {
	party := s.partiesByUID[cs.PartyID]
	if party == nil {
		return
	}
	slot := cs.ClientID
	party.Slots[slot] = nil
	party.Bursting[slot] = false
	cs.Location = session.LocationNone

	if party.occupantCount() == 0 {
		delete(s.parties, party.Name)
		delete(s.partiesByUID, party.UID)
		return
	}
	if party.LeaderSlot == slot {
		party.electLeader()
	}
	payload := encode(bbproto.LeaveNotice{DepartedSlot: uint32(slot), NewLeader: uint32(maxInt(party.LeaderSlot, 0))})
	for _, o := range party.Slots {
		if o != nil {
			s.send(o.conn, o.cs, bbproto.MsgGameLeave, 0, payload)
		}
	}
}

func (s *Server) handleGameList(conn *reactor.Conn, cs *session.ClientState) {
	entries := make([]bbproto.GameListEntry, 0, len(s.parties))
	for _, party := range s.parties {
		flags := uint8(0)
		if party.Password != "" {
			flags |= bbproto.GameFlagPassword
		}
		if party.Battle {
			flags |= bbproto.GameFlagBattle
		}
		if party.Challenge {
			flags |= bbproto.GameFlagChallenge
		}
		if party.SinglePlayer {
			flags |= bbproto.GameFlagSingle
		}
		entries = append(entries, bbproto.GameListEntry{
			ItemID: party.UID, Name: party.Name,
			Difficulty: 0x22 + party.Difficulty,
			NumPlayers: uint8(party.occupantCount()),
			Episode:    (4 << 4) | party.Episode,
			Flags:      flags,
		})
	}

	w := serial.NewWriter()
	bbproto.GameListHeader{}.Encode(w)
	for _, e := range entries {
		e.Encode(w)
	}
	s.send(conn, cs, bbproto.MsgGameList, uint32(len(entries)+1), w.Bytes())
}

const menuIDGameSelect = 0x00080000

func (s *Server) handleGameJoinByMenu(conn *reactor.Conn, cs *session.ClientState, payload []byte) {
	sel := bbproto.DecodeMenuSelect(serial.NewReader(payload))
	if sel.MenuID != menuIDGameSelect {
		return
	}
	party := s.partiesByUID[sel.ItemID]
	if party == nil {
		s.sendStateError(conn, cs, "That game no longer exists.")
		return
	}
	if party.anyBursting() {
		s.sendStateError(conn, cs, "That game isn't ready yet.")
		return
	}
	if party.SinglePlayer {
		s.sendStateError(conn, cs, "That game is single-player only.")
		return
	}
	if party.isFull() {
		s.sendStateError(conn, cs, "That game is full.")
		return
	}

	if cs.Location == session.LocationLobby {
		lobby, departed := s.removeFromLobby(cs)
		s.broadcastLobbyLeave(lobby, departed)
	}
	s.addPlayerToParty(conn, cs, party)
}
