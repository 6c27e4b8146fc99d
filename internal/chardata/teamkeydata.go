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
 */
package chardata

import "github.com/dcrodman/archon/internal/serial"

const (
	keyConfigSize      = 0x16C
	joystickConfigSize = 56
	teamNameSize       = 32 // 16 UTF-16 code units
	teamFlagSize       = 2320
)

// BbTeamAndKeyData carries a player's key/joystick bindings alongside
// their team membership, sent together in the 0xE0/0xE2 option
// exchange during login. Exactly 0xAF0 (2800) bytes on the wire.
type BbTeamAndKeyData struct {
	KeyConfig      [keyConfigSize]byte
	JoystickConfig [joystickConfigSize]byte

	TeamRewards [2]uint32

	TeamID        uint32
	TeamInfo      [2]uint32
	TeamPrivilege uint16
	Unknown       uint16

	TeamName [teamNameSize / 2]uint16
	TeamFlag [teamFlagSize]byte

	TeamRewardFlags uint32
}

const BbTeamAndKeyDataSize = 0xAF0

func (t BbTeamAndKeyData) Encode(w *serial.Writer) {
	w.FixedBytes(t.KeyConfig[:], keyConfigSize)
	w.FixedBytes(t.JoystickConfig[:], joystickConfigSize)
	for _, v := range t.TeamRewards {
		w.U32(v)
	}
	w.U32(t.TeamID)
	for _, v := range t.TeamInfo {
		w.U32(v)
	}
	w.U16(t.TeamPrivilege)
	w.U16(t.Unknown)
	for _, u := range t.TeamName {
		w.U16(u)
	}
	w.FixedBytes(t.TeamFlag[:], teamFlagSize)
	w.U32(t.TeamRewardFlags)
}

func DecodeBbTeamAndKeyData(r *serial.Reader) BbTeamAndKeyData {
	var t BbTeamAndKeyData
	copy(t.KeyConfig[:], r.FixedBytes(keyConfigSize))
	copy(t.JoystickConfig[:], r.FixedBytes(joystickConfigSize))
	for i := range t.TeamRewards {
		t.TeamRewards[i] = r.U32()
	}
	t.TeamID = r.U32()
	for i := range t.TeamInfo {
		t.TeamInfo[i] = r.U32()
	}
	t.TeamPrivilege = r.U16()
	t.Unknown = r.U16()
	for i := range t.TeamName {
		t.TeamName[i] = r.U16()
	}
	copy(t.TeamFlag[:], r.FixedBytes(teamFlagSize))
	t.TeamRewardFlags = r.U32()
	return t
}
