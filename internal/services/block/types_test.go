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
 */
package block

import (
	"testing"

	"github.com/dcrodman/archon/internal/bbproto"
	"github.com/dcrodman/archon/internal/session"
)

func fillLobby(l *Lobby, n int) {
	for i := 0; i < n; i++ {
		l.Slots[i] = &occupant{cs: session.NewClientState(uint64(i))}
	}
	l.electLeader()
}

func TestLobbyNeverExceedsCapacity(t *testing.T) {
	l := newLobby(0)
	if len(l.Slots) != LobbyCapacity {
		t.Fatalf("Lobby.Slots must be sized to LobbyCapacity (%d), got %d", LobbyCapacity, len(l.Slots))
	}
	fillLobby(l, LobbyCapacity)
	if l.firstEmpty() != -1 {
		t.Fatalf("a fully occupied lobby must report no empty slot")
	}
	if l.occupantCount() != LobbyCapacity {
		t.Fatalf("expected occupantCount == %d, got %d", LobbyCapacity, l.occupantCount())
	}
}

func TestLobbyLeaderSlotAlwaysOccupiedWhenNonEmpty(t *testing.T) {
	l := newLobby(0)
	fillLobby(l, 3)
	if l.Slots[l.LeaderSlot] == nil {
		t.Fatalf("leader slot %d is unoccupied in a non-empty lobby", l.LeaderSlot)
	}

	// Departing leader must trigger re-election onto another occupied slot.
	l.Slots[l.LeaderSlot] = nil
	l.electLeader()
	if l.occupantCount() > 0 && l.Slots[l.LeaderSlot] == nil {
		t.Fatalf("re-elected leader slot %d is unoccupied", l.LeaderSlot)
	}

	// Draining every occupant must clear the leader slot entirely.
	for i := range l.Slots {
		l.Slots[i] = nil
	}
	l.electLeader()
	if l.LeaderSlot != -1 {
		t.Fatalf("expected LeaderSlot -1 for an empty lobby, got %d", l.LeaderSlot)
	}
}

func fillParty(p *Party, n int) {
	for i := 0; i < n; i++ {
		p.Slots[i] = &occupant{cs: session.NewClientState(uint64(i))}
	}
	p.electLeader()
}

func TestPartyNeverExceedsCapacity(t *testing.T) {
	p := &Party{LeaderSlot: -1}
	if len(p.Slots) != PartyCapacity {
		t.Fatalf("Party.Slots must be sized to PartyCapacity (%d), got %d", PartyCapacity, len(p.Slots))
	}
	fillParty(p, PartyCapacity)
	if !p.isFull() {
		t.Fatalf("a party filled to PartyCapacity must report isFull")
	}
	if p.firstEmpty() != -1 {
		t.Fatalf("a full party must report no empty slot")
	}
}

// queueIfBursting mirrors handleBroadcastSubcommand/handleUnicastSubcommand's
// decision of whether a relay must be buffered while the party bursts.
func queueIfBursting(p *Party, senderSlot int, msgType uint16, flags uint32, payload []byte) bool {
	if !p.anyBursting() {
		return false
	}
	safe := bbproto.InnerOpcode(payload) == bbproto.SubOpPassThroughAfterBurst0x7C || bbproto.BurstSafe(payload)
	if safe {
		return false
	}
	p.pending = append(p.pending, pendingSubcommand{senderSlot: senderSlot, msgType: msgType, flags: flags, payload: payload})
	return true
}

func TestPartyPendingQueueOnlyHoldsBlockedMessages(t *testing.T) {
	p := &Party{LeaderSlot: -1}
	fillParty(p, 2)
	p.Bursting[0] = true

	unsafePayload := []byte{0x01, 0x02}
	if !queueIfBursting(p, 1, bbproto.MsgSubCmd60, 0, unsafePayload) {
		t.Fatalf("expected a non-pass-through broadcast to be buffered while bursting")
	}
	if len(p.pending) != 1 {
		t.Fatalf("expected exactly one buffered message, got %d", len(p.pending))
	}

	burstSafePayload := []byte{0x6B}
	if queueIfBursting(p, 1, bbproto.MsgSubCmd62, 0, burstSafePayload) {
		t.Fatalf("a burst-safe unicast opcode must never be buffered")
	}
	passThrough := []byte{bbproto.SubOpPassThroughAfterBurst0x7C}
	if queueIfBursting(p, 1, bbproto.MsgSubCmd60, 0, passThrough) {
		t.Fatalf("the 0x7C pass-through opcode must never be buffered")
	}
	if len(p.pending) != 1 {
		t.Fatalf("burst-safe/pass-through traffic must not grow the pending queue, got %d entries", len(p.pending))
	}
}

func TestPartyPendingQueueDrainsToZeroOnceDoneBursting(t *testing.T) {
	p := &Party{LeaderSlot: -1}
	fillParty(p, 2)
	p.Bursting[0] = true
	p.Bursting[1] = true

	queueIfBursting(p, 0, bbproto.MsgSubCmd60, 0, []byte{0x01})
	queueIfBursting(p, 1, bbproto.MsgSubCmd60, 0, []byte{0x02})
	if len(p.pending) != 2 {
		t.Fatalf("expected 2 buffered messages while both members burst, got %d", len(p.pending))
	}

	p.Bursting[0] = false
	if p.anyBursting() {
		// member 1 still bursting: queue must not drain yet.
		if len(p.pending) != 2 {
			t.Fatalf("queue must hold until every member clears bursting")
		}
	}

	p.Bursting[1] = false
	if p.anyBursting() {
		t.Fatalf("expected anyBursting to be false once every slot clears")
	}
	// This is the drain handleDoneBursting performs once no one is bursting.
	pending := p.pending
	p.pending = nil
	if len(pending) != 2 {
		t.Fatalf("expected to drain exactly the 2 buffered messages, got %d", len(pending))
	}
	if len(p.pending) != 0 {
		t.Fatalf("pending queue must drain to exactly zero, got %d", len(p.pending))
	}
}
