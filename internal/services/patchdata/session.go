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
* Handshake and send-path shared by the patch and data services:
* both speak PC framing and both open with the same unencrypted
* Welcome + cipher-seed exchange, grounded on pkt_funcs.go's
* SendPCWelcome/sendEncrypted pair.
 */
package patchdata

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"

	"github.com/dcrodman/archon/internal/encryption"
	"github.com/dcrodman/archon/internal/patchproto"
	"github.com/dcrodman/archon/internal/proto"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/serial"
)

const copyrightMessage = "Patch Server. Copyright SonicTeam, LTD. 2001"

// clientState is the per-connection entity owned exclusively by the
// patch/data dispatch goroutine, analogous to session.ClientState but
// scoped to the much smaller patch/data handshake.
type clientState struct {
	conn         *reactor.Conn
	serverCipher encryption.Cipher
	welcomeSent  bool
}

func randSeed() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the platform's entropy source is
		// broken; nothing downstream can recover from that.
		panic(err)
	}
	return binary.LittleEndian.Uint32(b[:])
}

// sendWelcome transmits the unencrypted Welcome packet and installs
// both directions' ciphers: the decoder's (for frames arriving after
// this one) and the session's own serverCipher for everything this
// dispatch loop sends from here on.
func sendWelcome(conn *reactor.Conn) encryption.Cipher {
	serverSeed, clientSeed := randSeed(), randSeed()

	w := serial.NewWriter()
	patchproto.Welcome{
		Copyright:    copyrightMessage,
		ServerVector: serverSeed,
		ClientVector: clientSeed,
	}.Encode(w)
	conn.Send(proto.EncodePC(patchproto.MsgWelcome, w.Bytes()))

	conn.SetCipher(encryption.NewPCCipher(clientSeed))
	return encryption.NewPCCipher(serverSeed)
}

// sendEncrypted encodes msgType/payload as a PC frame and encrypts it
// with this connection's server cipher before enqueuing it, matching
// pkt_funcs.go's sendEncrypted.
func sendEncrypted(cs *clientState, msgType uint16, payload []byte) {
	frame := proto.EncodePC(msgType, payload)
	cs.serverCipher.Encrypt(frame)
	cs.conn.Send(frame)
}

func sendEmpty(cs *clientState, msgType uint16) {
	sendEncrypted(cs, msgType, nil)
}

func logFrame(log *slog.Logger, label string, connID uint64, msgType uint16) {
	log.Debug(label, "conn", connID, "type", msgType)
}
