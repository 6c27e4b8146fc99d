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
* 0x60/0x62/0x6C/0x6D subcommand bodies. Most subcommands are relayed
* as an opaque buffer by the block/lobby/party layer (spec.md section
* 7's SerialError rule even prefers the raw form over a re-serialized
* one), so only the handful the EXP/level-up and bursting contracts
* actually need to parse are modeled here.
 */
package bbproto

import "github.com/dcrodman/archon/internal/serial"

// Inner subcommand opcodes, carried as the first byte of a 0x60/0x62/
// 0x6C/0x6D message's payload.
const (
	SubOpQuestData1 = 0x13
	SubOpReqExp     = 0xBC
	SubOpGiveExp    = 0xBD
	SubOpLevelUp    = 0xBE
	SubOpDoneBurst  = 0x18
	SubOpPassThroughAfterBurst0x7C = 0x7C
)

// burstSafeUnicastOps are the inner 0x62/0x6D opcodes allowed through
// while any party member is still bursting (spec.md section 4.8).
var burstSafeUnicastOps = map[byte]bool{
	0x6B: true, 0x6C: true, 0x6D: true, 0x6E: true, 0x6F: true, 0x70: true, 0x71: true,
}

// BurstSafe reports whether a 0x62/0x6D subcommand's inner opcode may
// pass through while the party is still bursting.
func BurstSafe(payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	return burstSafeUnicastOps[payload[0]]
}

// InnerOpcode returns a 0x60/0x62/0x6C/0x6D payload's first byte, or
// 0 if the payload is empty.
func InnerOpcode(payload []byte) byte {
	if len(payload) == 0 {
		return 0
	}
	return payload[0]
}

// ReqExp is the subcommand a party member sends when it lands the
// killing (or an assisting) blow on an enemy.
type ReqExp struct {
	ClientID   uint8
	EnemyID    uint16
	LastHitter uint8
}

func DecodeReqExp(payload []byte) ReqExp {
	r := serial.NewReader(payload)
	r.Skip(2) // opcode, size
	clientID := r.U8()
	r.Skip(1)
	enemyID := r.U16()
	r.Skip(2)
	lastHitter := r.U8()
	return ReqExp{ClientID: clientID, EnemyID: enemyID, LastHitter: lastHitter}
}

// GiveExp is broadcast to every party member once an award has been
// computed.
type GiveExp struct {
	ClientID uint8
	Exp      uint32
}

func (m GiveExp) Encode() []byte {
	w := serial.NewWriter()
	w.U8(SubOpGiveExp)
	w.U8(3)
	w.U8(m.ClientID)
	w.U8(0)
	w.U32(m.Exp)
	return w.Bytes()
}

// LevelUp is broadcast whenever the award crosses one or more level
// thresholds, carrying the character's new stat totals.
type LevelUp struct {
	ClientID                           uint8
	ATP, MST, EVP, HP, DFP, ATA, Level uint16
}

func (m LevelUp) Encode() []byte {
	w := serial.NewWriter()
	w.U8(SubOpLevelUp)
	w.U8(6)
	w.U8(m.ClientID)
	w.U8(0)
	w.U16(m.ATP)
	w.U16(m.MST)
	w.U16(m.EVP)
	w.U16(m.HP)
	w.U16(m.DFP)
	w.U16(m.ATA)
	w.U16(m.Level)
	w.U16(0)
	return w.Bytes()
}

// DoneBurst is broadcast after a bursting client clears its flag; its
// inner bytes begin 0x18, 0x08 per spec.md section 4.8.
func DoneBurst(clientID uint8) []byte {
	w := serial.NewWriter()
	w.U8(SubOpDoneBurst)
	w.U8(0x08)
	w.U8(clientID)
	w.U8(0)
	return w.Bytes()
}

// QuestData1 wraps the joiner's own quest-data-1 blob, sent back to
// it immediately after LobbyJoin.
func QuestData1(data []byte) []byte {
	w := serial.NewWriter()
	w.U8(SubOpQuestData1)
	w.U8(uint8((len(data) + 2 + 3) / 4))
	w.Raw(data)
	return w.Bytes()
}
