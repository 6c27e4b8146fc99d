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
* The patch service: welcome/login/motd/redirect-to-data, per
* spec.md section 4.4. Grounded on pkt_funcs.go's SendPCWelcome,
* SendWelcomeAck, SendWelcomeMessage and SendPatchRedirect, adapted
* from the teacher's blocking per-connection goroutine onto
* internal/reactor's event-driven model.
 */
package patchdata

import (
	"log/slog"
	"net"
	"strconv"

	"github.com/dcrodman/archon/internal/patchproto"
	"github.com/dcrodman/archon/internal/proto"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/serial"
)

type patchPhase int

const (
	phaseAwaitingWelcomeAck patchPhase = iota
	phaseAwaitingLogin
	phaseDone
)

type patchConn struct {
	clientState
	phase patchPhase
}

// PatchServer drives the patch handshake: Welcome, an empty ack,
// the download-screen message, and a redirect to one of the
// configured data hosts.
type PatchServer struct {
	log       *slog.Logger
	message   string
	dataHosts []string

	conns map[uint64]*patchConn
}

func NewPatchServer(log *slog.Logger, message string, dataHosts []string) *PatchServer {
	return &PatchServer{log: log, message: message, dataHosts: dataHosts, conns: map[uint64]*patchConn{}}
}

// Run drives the reactor's event stream until it closes (listener
// shutdown). It is the single goroutine that owns every patchConn.
func (s *PatchServer) Run(r *reactor.Reactor) {
	for ev := range r.Events() {
		switch ev.Kind {
		case reactor.EventConnected:
			conn := r.Conn(ev.ConnID)
			if conn == nil {
				continue
			}
			cs := &patchConn{clientState: clientState{conn: conn}}
			cs.serverCipher = sendWelcome(conn)
			cs.welcomeSent = true
			s.conns[ev.ConnID] = cs

		case reactor.EventFrame:
			cs, ok := s.conns[ev.ConnID]
			if !ok {
				continue
			}
			logFrame(s.log, "patch: frame", ev.ConnID, ev.Frame.Type)
			s.handle(cs, ev.Frame)

		case reactor.EventDisconnected:
			delete(s.conns, ev.ConnID)
		}
	}
}

func (s *PatchServer) handle(cs *patchConn, f reactor.Frame) {
	switch cs.phase {
	case phaseAwaitingWelcomeAck:
		// The client echoes an empty Welcome-type frame; any frame
		// here is treated as that ack per pkt_funcs.go's SendWelcomeAck
		// comment ("treated as an ack").
		sendEmpty(&cs.clientState, patchproto.MsgLogin)
		cs.phase = phaseAwaitingLogin

	case phaseAwaitingLogin:
		if f.Type != patchproto.MsgLogin {
			return
		}
		// Credentials in the patch Login body are never checked; the
		// patch service exists only to steer the client toward data
		// updates, not to authenticate it.
		w := serial.NewWriter()
		patchproto.Message{Text: s.message}.Encode(w)
		sendEncrypted(&cs.clientState, patchproto.MsgMessage, w.Bytes())
		s.redirectToData(cs)
		cs.phase = phaseDone
	}
}

func (s *PatchServer) redirectToData(cs *patchConn) {
	if len(s.dataHosts) == 0 {
		s.log.Warn("patch: no data hosts configured, cannot redirect")
		return
	}
	host, port, ip, ok := resolveHostPort(s.dataHosts[0])
	if !ok {
		s.log.Error("patch: failed to resolve data host", "host", host)
		return
	}
	body := proto.EncodeRedirectBody(ip, port)
	sendEncrypted(&cs.clientState, patchproto.MsgRedirect, body)
}

func resolveHostPort(hostport string) (host string, port uint16, ip [4]byte, ok bool) {
	h, p, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, 0, ip, false
	}
	addr, err := net.ResolveIPAddr("ip4", h)
	if err != nil {
		return h, 0, ip, false
	}
	v4 := addr.IP.To4()
	if v4 == nil {
		return h, 0, ip, false
	}
	copy(ip[:], v4)
	portNum, err := strconv.Atoi(p)
	if err != nil {
		return h, 0, ip, false
	}
	return h, uint16(portNum), ip, true
}
