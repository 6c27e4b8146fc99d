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
* The data service: welcome/login handshake followed by the zero-file
* "already up to date" patch-list exchange (no patch tree is
* served). Grounded on pkt_funcs.go's
* SendDataAck/SendChangeDir/SendFileListDone/SendDirAbove/
* SendUpdateFiles/SendUpdateComplete sequence.
 */
package patchdata

import (
	"log/slog"

	"github.com/dcrodman/archon/internal/patchproto"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/serial"
)

type dataPhase int

const (
	dataAwaitingLogin dataPhase = iota
	dataDone
)

type dataConn struct {
	clientState
	phase dataPhase
}

// DataServer drives the data handshake and always reports that
// nothing needs updating: no file tree is served.
type DataServer struct {
	log   *slog.Logger
	conns map[uint64]*dataConn
}

func NewDataServer(log *slog.Logger) *DataServer {
	return &DataServer{log: log, conns: map[uint64]*dataConn{}}
}

func (s *DataServer) Run(r *reactor.Reactor) {
	for ev := range r.Events() {
		switch ev.Kind {
		case reactor.EventConnected:
			conn := r.Conn(ev.ConnID)
			if conn == nil {
				continue
			}
			cs := &dataConn{clientState: clientState{conn: conn}}
			cs.serverCipher = sendWelcome(conn)
			cs.welcomeSent = true
			s.conns[ev.ConnID] = cs

		case reactor.EventFrame:
			cs, ok := s.conns[ev.ConnID]
			if !ok {
				continue
			}
			logFrame(s.log, "data: frame", ev.ConnID, ev.Frame.Type)
			s.handle(cs, ev.Frame)

		case reactor.EventDisconnected:
			delete(s.conns, ev.ConnID)
		}
	}
}

func (s *DataServer) handle(cs *dataConn, f reactor.Frame) {
	if cs.phase != dataAwaitingLogin {
		return
	}
	// The first frame on the data connection is the client's login
	// echo (credentials already verified by the patch service); any
	// frame here advances the handshake.
	_ = f

	sendEmpty(&cs.clientState, patchproto.MsgDataAck)

	dirWriter := serial.NewWriter()
	patchproto.ChangeDir{Dirname: "."}.Encode(dirWriter)
	sendEncrypted(&cs.clientState, patchproto.MsgChangeDir, dirWriter.Bytes())

	sendEmpty(&cs.clientState, patchproto.MsgFileListDone)
	sendEmpty(&cs.clientState, patchproto.MsgDirAbove)

	updateWriter := serial.NewWriter()
	patchproto.UpdateFiles{NumFiles: 0, TotalSize: 0}.Encode(updateWriter)
	sendEncrypted(&cs.clientState, patchproto.MsgUpdateFiles, updateWriter.Bytes())

	sendEmpty(&cs.clientState, patchproto.MsgUpdateDone)
	cs.phase = dataDone
}
