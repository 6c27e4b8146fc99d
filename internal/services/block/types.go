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
* Lobby and party occupancy types. spec.md leaves lobby/party
* capacity as an implementation constant; LobbyCapacity=12 and
* PartyCapacity=4 follow the client's own fixed menu/slot layout
* (BbGameJoin's Players is a length-4 array), which is the only
* capacity the wire format itself constrains.
 */
package block

import (
	"github.com/dcrodman/archon/internal/enemygen"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/session"
)

const (
	LobbyCount    = 15
	LobbyCapacity = 12
	PartyCapacity = 4
)

// occupant is one connection seated in a lobby or party slot.
type occupant struct {
	cs   *session.ClientState
	conn *reactor.Conn
}

// Lobby is one of a block's 15 fixed public lobbies.
type Lobby struct {
	Num        int
	Slots      [LobbyCapacity]*occupant
	LeaderSlot int
}

func newLobby(num int) *Lobby {
	return &Lobby{Num: num, LeaderSlot: -1}
}

func (l *Lobby) firstEmpty() int {
	for i, o := range l.Slots {
		if o == nil {
			return i
		}
	}
	return -1
}

func (l *Lobby) occupantCount() int {
	n := 0
	for _, o := range l.Slots {
		if o != nil {
			n++
		}
	}
	return n
}

func (l *Lobby) electLeader() {
	for i, o := range l.Slots {
		if o != nil {
			l.LeaderSlot = i
			return
		}
	}
	l.LeaderSlot = -1
}

// pendingSubcommand is one buffered relay while a party is bursting.
type pendingSubcommand struct {
	senderSlot int
	msgType    uint16
	flags      uint32
	payload    []byte
}

// Party is one active game instance.
type Party struct {
	UID          uint32
	Name         string
	Password     string
	Difficulty   uint8
	Episode      uint8
	Battle       bool
	Challenge    bool
	SinglePlayer bool
	SectionID    uint8

	Slots      [PartyCapacity]*occupant
	LeaderSlot int
	Bursting   [PartyCapacity]bool

	Variants [32]uint32
	Enemies  []enemygen.InstanceEnemy

	pending []pendingSubcommand
}

func (p *Party) firstEmpty() int {
	for i, o := range p.Slots {
		if o == nil {
			return i
		}
	}
	return -1
}

func (p *Party) occupantCount() int {
	n := 0
	for _, o := range p.Slots {
		if o != nil {
			n++
		}
	}
	return n
}

func (p *Party) electLeader() {
	for i, o := range p.Slots {
		if o != nil {
			p.LeaderSlot = i
			return
		}
	}
	p.LeaderSlot = -1
}

func (p *Party) anyBursting() bool {
	for i, o := range p.Slots {
		if o != nil && p.Bursting[i] {
			return true
		}
	}
	return false
}

func (p *Party) isFull() bool { return p.firstEmpty() == -1 }
