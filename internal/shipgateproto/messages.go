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
* Shipgate message bodies, per spec.md section 4.3. Each type carries
* its own message-type constant for internal/proto's shipgate framer
* and an Encode/Decode pair over internal/serial.
 */
package shipgateproto

import (
	"github.com/dcrodman/archon/internal/chardata"
	"github.com/dcrodman/archon/internal/serial"
)

// Message type tags carried in the shipgate frame header.
const (
	MsgAuth                 = 0x01
	MsgAuthAck              = 0x02
	MsgBbLoginChallenge     = 0x03
	MsgBbLoginChallengeAck  = 0x04
	MsgBbGetAccountInfo     = 0x05
	MsgBbGetAccountInfoAck  = 0x06
	MsgBbUpdateOptions      = 0x07
	MsgBbUpdateKeys         = 0x08
	MsgBbUpdateJoy          = 0x09
	MsgBbGetCharacter       = 0x0A
	MsgBbGetCharacterAck    = 0x0B
	MsgBbPutCharacter       = 0x0C
	MsgBbSetLoginFlags      = 0x0D
	MsgBbGetLoginFlags      = 0x0E
	MsgBbGetLoginFlagsAck   = 0x0F
	MsgRegisterShip         = 0x10
	MsgRegisterShipAck      = 0x11
	MsgShipList             = 0x12
	MsgShipListAck          = 0x13
)

const usernameLen = 16
const passwordLen = 16

// Auth is the shipgate client's mandatory first message: protocol
// version (always 0) and a pre-shared password. Any other message
// sent first, or a mismatched password, gets the connection dropped.
type Auth struct {
	Version  uint32
	Password string
}

func (m Auth) Encode(w *serial.Writer) {
	w.U32(m.Version)
	w.FixedASCII(m.Password, 32)
}

func DecodeAuth(r *serial.Reader) Auth {
	return Auth{Version: r.U32(), Password: r.FixedASCII(32)}
}

type AuthAck struct{ Status uint32 }

func (m AuthAck) Encode(w *serial.Writer) { w.U32(m.Status) }
func DecodeAuthAck(r *serial.Reader) AuthAck {
	return AuthAck{Status: r.U32()}
}

type BbLoginChallenge struct {
	Username string
	Password string
}

func (m BbLoginChallenge) Encode(w *serial.Writer) {
	w.FixedASCII(m.Username, usernameLen)
	w.FixedASCII(m.Password, passwordLen)
}

func DecodeBbLoginChallenge(r *serial.Reader) BbLoginChallenge {
	return BbLoginChallenge{Username: r.FixedASCII(usernameLen), Password: r.FixedASCII(passwordLen)}
}

// Status codes shared by every shipgate ack, matching spec.md section
// 7's AuthError mapping: 0=ok, 2=bad credentials, 6=banned, 8=no such
// account, others=generic.
const (
	StatusOK               = 0
	StatusBadCredentials   = 2
	StatusBanned           = 6
	StatusNoSuchAccount    = 8
)

type BbLoginChallengeAck struct {
	Status    uint32
	AccountID uint32
}

func (m BbLoginChallengeAck) Encode(w *serial.Writer) {
	w.U32(m.Status)
	w.U32(m.AccountID)
}

func DecodeBbLoginChallengeAck(r *serial.Reader) BbLoginChallengeAck {
	return BbLoginChallengeAck{Status: r.U32(), AccountID: r.U32()}
}

type BbGetAccountInfo struct{ AccountID uint32 }

func (m BbGetAccountInfo) Encode(w *serial.Writer) { w.U32(m.AccountID) }
func DecodeBbGetAccountInfo(r *serial.Reader) BbGetAccountInfo {
	return BbGetAccountInfo{AccountID: r.U32()}
}

type BbGetAccountInfoAck struct {
	Status       uint32
	AccountID    uint32
	GuildcardNum uint32
	TeamID       uint32
	TeamKeyData  chardata.BbTeamAndKeyData
}

func (m BbGetAccountInfoAck) Encode(w *serial.Writer) {
	w.U32(m.Status)
	w.U32(m.AccountID)
	w.U32(m.GuildcardNum)
	w.U32(m.TeamID)
	m.TeamKeyData.Encode(w)
}

func DecodeBbGetAccountInfoAck(r *serial.Reader) BbGetAccountInfoAck {
	var m BbGetAccountInfoAck
	m.Status = r.U32()
	m.AccountID = r.U32()
	m.GuildcardNum = r.U32()
	m.TeamID = r.U32()
	m.TeamKeyData = chardata.DecodeBbTeamAndKeyData(r)
	return m
}

// BbUpdateOptions / BbUpdateKeys / BbUpdateJoy are fire-and-forget
// (correlation_key == 0): the client never waits on an ack.
type BbUpdateOptions struct {
	AccountID uint32
	Options   uint32
}

func (m BbUpdateOptions) Encode(w *serial.Writer) {
	w.U32(m.AccountID)
	w.U32(m.Options)
}

func DecodeBbUpdateOptions(r *serial.Reader) BbUpdateOptions {
	return BbUpdateOptions{AccountID: r.U32(), Options: r.U32()}
}

type BbUpdateKeys struct {
	AccountID uint32
	KeyConfig [0x16C]byte
}

func (m BbUpdateKeys) Encode(w *serial.Writer) {
	w.U32(m.AccountID)
	w.FixedBytes(m.KeyConfig[:], 0x16C)
}

func DecodeBbUpdateKeys(r *serial.Reader) BbUpdateKeys {
	var m BbUpdateKeys
	m.AccountID = r.U32()
	copy(m.KeyConfig[:], r.FixedBytes(0x16C))
	return m
}

type BbUpdateJoy struct {
	AccountID     uint32
	JoystickConfig [56]byte
}

func (m BbUpdateJoy) Encode(w *serial.Writer) {
	w.U32(m.AccountID)
	w.FixedBytes(m.JoystickConfig[:], 56)
}

func DecodeBbUpdateJoy(r *serial.Reader) BbUpdateJoy {
	var m BbUpdateJoy
	m.AccountID = r.U32()
	copy(m.JoystickConfig[:], r.FixedBytes(56))
	return m
}

type BbGetCharacter struct {
	AccountID uint32
	Slot      uint8
}

func (m BbGetCharacter) Encode(w *serial.Writer) {
	w.U32(m.AccountID)
	w.U8(m.Slot)
	w.Pad(3)
}

func DecodeBbGetCharacter(r *serial.Reader) BbGetCharacter {
	m := BbGetCharacter{AccountID: r.U32(), Slot: r.U8()}
	r.Skip(3)
	return m
}

type BbGetCharacterAck struct {
	Status   uint32
	Slot     uint8
	HasChar  bool
	FullChar chardata.BbFullCharData
}

func (m BbGetCharacterAck) Encode(w *serial.Writer) {
	w.U32(m.Status)
	w.U8(m.Slot)
	if m.HasChar {
		w.U8(1)
	} else {
		w.U8(0)
	}
	w.Pad(2)
	m.FullChar.Encode(w)
}

func DecodeBbGetCharacterAck(r *serial.Reader) BbGetCharacterAck {
	var m BbGetCharacterAck
	m.Status = r.U32()
	m.Slot = r.U8()
	m.HasChar = r.U8() != 0
	r.Skip(2)
	m.FullChar = chardata.DecodeBbFullCharData(r)
	return m
}

// BbPutCharacter is fire-and-forget: the service never waits for a
// response before proceeding.
type BbPutCharacter struct {
	AccountID     uint32
	Slot          uint8
	SaveAcctData  bool
	FullChar      chardata.BbFullCharData
}

func (m BbPutCharacter) Encode(w *serial.Writer) {
	w.U32(m.AccountID)
	w.U8(m.Slot)
	if m.SaveAcctData {
		w.U8(1)
	} else {
		w.U8(0)
	}
	w.Pad(2)
	m.FullChar.Encode(w)
}

func DecodeBbPutCharacter(r *serial.Reader) BbPutCharacter {
	var m BbPutCharacter
	m.AccountID = r.U32()
	m.Slot = r.U8()
	m.SaveAcctData = r.U8() != 0
	r.Skip(2)
	m.FullChar = chardata.DecodeBbFullCharData(r)
	return m
}

type BbSetLoginFlags struct {
	AccountID uint32
	Flags     uint32
}

func (m BbSetLoginFlags) Encode(w *serial.Writer) {
	w.U32(m.AccountID)
	w.U32(m.Flags)
}

func DecodeBbSetLoginFlags(r *serial.Reader) BbSetLoginFlags {
	return BbSetLoginFlags{AccountID: r.U32(), Flags: r.U32()}
}

type BbGetLoginFlags struct{ AccountID uint32 }

func (m BbGetLoginFlags) Encode(w *serial.Writer) { w.U32(m.AccountID) }
func DecodeBbGetLoginFlags(r *serial.Reader) BbGetLoginFlags {
	return BbGetLoginFlags{AccountID: r.U32()}
}

type BbGetLoginFlagsAck struct {
	Status uint32
	Flags  uint32
}

func (m BbGetLoginFlagsAck) Encode(w *serial.Writer) {
	w.U32(m.Status)
	w.U32(m.Flags)
}

func DecodeBbGetLoginFlagsAck(r *serial.Reader) BbGetLoginFlagsAck {
	return BbGetLoginFlagsAck{Status: r.U32(), Flags: r.U32()}
}

const shipNameLen = 23

type RegisterShip struct {
	Addr [4]byte
	Port uint16
	Name string
}

func (m RegisterShip) Encode(w *serial.Writer) {
	w.IPv4(m.Addr)
	w.U16(m.Port)
	w.FixedASCII(m.Name, shipNameLen)
}

func DecodeRegisterShip(r *serial.Reader) RegisterShip {
	return RegisterShip{Addr: r.IPv4(), Port: r.U16(), Name: r.FixedASCII(shipNameLen)}
}

type RegisterShipAck struct{ Status uint32 }

func (m RegisterShipAck) Encode(w *serial.Writer) { w.U32(m.Status) }
func DecodeRegisterShipAck(r *serial.Reader) RegisterShipAck {
	return RegisterShipAck{Status: r.U32()}
}

type ShipList struct{}

func (m ShipList) Encode(w *serial.Writer)       {}
func DecodeShipList(r *serial.Reader) ShipList    { return ShipList{} }

// ShipEntry is one (address, name) pair in a ShipListAck.
type ShipEntry struct {
	Addr [4]byte
	Port uint16
	Name string
}

type ShipListAck struct {
	Status uint32
	Ships  []ShipEntry
}

func (m ShipListAck) Encode(w *serial.Writer) {
	w.U32(m.Status)
	w.U32(uint32(len(m.Ships)))
	for _, s := range m.Ships {
		w.IPv4(s.Addr)
		w.U16(s.Port)
		w.FixedASCII(s.Name, shipNameLen)
		w.Pad(1)
	}
}

func DecodeShipListAck(r *serial.Reader) ShipListAck {
	var m ShipListAck
	m.Status = r.U32()
	count := r.U32()
	m.Ships = make([]ShipEntry, count)
	for i := range m.Ships {
		m.Ships[i] = ShipEntry{Addr: r.IPv4(), Port: r.U16(), Name: r.FixedASCII(shipNameLen)}
		r.Skip(1)
	}
	return m
}
