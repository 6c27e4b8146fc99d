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
* ClientState: the per-connection entity spec.md section 3 names,
* owned exclusively by a service's single dispatch goroutine.
 */
package session

import (
	"github.com/dcrodman/archon/internal/chardata"
	"github.com/dcrodman/archon/internal/encryption"
)

// Location describes where a connected player currently is: nowhere
// yet, a lobby, or a party, so the block service's dispatch loop can
// route an inbound subcommand without a type switch on two optional
// pointers.
type Location int

const (
	LocationNone Location = iota
	LocationLobby
	LocationParty
)

// ClientState is everything the owning service's dispatch goroutine
// tracks for one connected socket across its lifetime.
type ClientState struct {
	ConnID uint64

	AccountID    uint32
	GuildcardNum uint32
	TeamID       uint32

	SecurityData chardata.SecurityData

	Options     uint32
	TeamKeyData chardata.BbTeamAndKeyData

	// Slot is the character slot the client most recently selected or
	// is creating (0-3).
	Slot uint8

	// Char is the loaded full character record once a slot has been
	// selected; nil before then.
	Char *chardata.BbFullCharData

	// CharBytes is the raw CharDat snapshot the client sent on joining
	// the block, echoed verbatim into lobby/party member snapshots for
	// the lifetime of the connection.
	CharBytes []byte

	// Ships is the last ship-list snapshot relayed from the shipgate,
	// cached so MenuSelect doesn't need a second round-trip.
	Ships []ShipListEntry

	Location  Location
	LobbyNum  int
	PartyID   uint32
	ClientID  int // slot within the current lobby/party

	ServerCipher *encryption.BBCipher
	ClientCipher *encryption.BBCipher
}

// ShipListEntry mirrors shipgateproto.ShipEntry without importing that
// package from session, keeping session free of the shipgate wire
// format's specifics.
type ShipListEntry struct {
	Addr [4]byte
	Port uint16
	Name string
}

// NewClientState allocates a fresh, unauthenticated session entity for
// a newly accepted connection.
func NewClientState(connID uint64) *ClientState {
	return &ClientState{ConnID: connID, Location: LocationNone}
}

// InGame reports whether the client currently occupies a lobby or
// party slot.
func (c *ClientState) InGame() bool { return c.Location != LocationNone }
