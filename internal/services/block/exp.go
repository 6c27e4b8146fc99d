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
* EXP/level-up arbitration, spec.md section 4.8. ReqExp names the
* enemy and last-hitter but not the client slot to credit by
* accident: client_id must equal the sender's own slot, and a
* mismatched or implausible last_hitter flag is rejected rather than
* trusted, per spec.md's validation requirement.
 */
package block

import (
	"github.com/dcrodman/archon/internal/bbproto"
	"github.com/dcrodman/archon/internal/session"
	"github.com/dcrodman/archon/internal/staticdata/leveltable"
)

// handleReqExp answers a ReqExp subcommand: looks up the enemy and its
// battle parameters, credits the sender's party with an EXP award, and
// applies any level-ups that award crosses.
func (s *Server) handleReqExp(cs *session.ClientState, payload []byte) {
	if cs.Location != session.LocationParty {
		return
	}
	party := s.partiesByUID[cs.PartyID]
	if party == nil {
		return
	}
	req := bbproto.DecodeReqExp(payload)

	if int(req.ClientID) != cs.ClientID {
		s.log.Warn("block: exp request client_id mismatch", "claimed", req.ClientID, "actual", cs.ClientID)
		return
	}
	if req.LastHitter != 0 && req.LastHitter != 1 {
		s.log.Warn("block: exp request implausible last_hitter", "last_hitter", req.LastHitter)
		return
	}
	if int(req.EnemyID) >= len(party.Enemies) {
		s.log.Warn("block: exp request for out-of-range enemy", "enemy_id", req.EnemyID)
		return
	}
	enemy := party.Enemies[req.EnemyID]

	bp, ok := s.battleParams.Lookup(enemy.ParamEntry, party.Episode, party.SinglePlayer, party.Difficulty)
	if !ok {
		s.log.Warn("block: no battle params for enemy", "param_entry", enemy.ParamEntry)
		return
	}

	award := bp.EXP
	if req.LastHitter == 0 {
		award = award * 80 / 100
	}

	requesterSlot := cs.ClientID
	giveExp := bbproto.GiveExp{ClientID: uint8(requesterSlot), Exp: award}.Encode()
	for _, o := range party.Slots {
		if o != nil {
			s.send(o.conn, o.cs, bbproto.MsgSubCmd60, 0, giveExp)
		}
	}

	o := party.Slots[requesterSlot]
	if o == nil || o.cs.Char == nil {
		return
	}
	s.applyExp(party, o, award)
}

// applyExp credits award EXP to o's character and walks the level
// table forward while the new cumulative total clears each next
// level's threshold, broadcasting one LevelUp per level gained.
func (s *Server) applyExp(party *Party, o *occupant, award uint32) {
	char := &o.cs.Char.Character
	char.Experience += award

	leveled := false
	for uint32(char.Level)+1 < leveltable.MaxLevel {
		next := s.levelTable.Row(char.Class, int(char.Level)+1)
		if char.Experience < next.EXP {
			break
		}
		char.Level++
		char.ATP += next.ATP
		char.MST += next.MST
		char.EVP += next.EVP
		char.HP += next.HP
		char.DFP += next.DFP
		char.ATA += next.ATA
		leveled = true
	}
	if !leveled {
		return
	}

	levelUp := bbproto.LevelUp{
		ClientID: uint8(o.cs.ClientID),
		ATP:      char.ATP, MST: char.MST, EVP: char.EVP,
		HP: char.HP, DFP: char.DFP, ATA: char.ATA, Level: char.Level,
	}.Encode()
	for _, peer := range party.Slots {
		if peer != nil {
			s.send(peer.conn, peer.cs, bbproto.MsgSubCmd60, 0, levelUp)
		}
	}
}
