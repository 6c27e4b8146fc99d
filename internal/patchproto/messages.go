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
* Message bodies exchanged over PC framing by the patch and data
* services, grounded on pkt_funcs.go's SendPCWelcome/SendWelcomeAck/
* SendWelcomeMessage/SendPatchRedirect/SendDataAck/SendDirAbove/
* SendChangeDir/SendCheckFile/SendFileListDone/SendUpdateFiles family,
* adapted from util.BytesFromStruct reflection to explicit encode/
* decode so field layout is pinned down rather than inferred from
* struct tags.
 */
package patchproto

import "github.com/dcrodman/archon/internal/serial"

// Message type opcodes used on the PC-framed patch/data wire.
const (
	MsgWelcome      uint16 = 0x02
	MsgLogin        uint16 = 0x04 // also used, empty, as the server's ack
	MsgMessage      uint16 = 0x13 // patch download-screen MOTD
	MsgRedirect     uint16 = 0x14
	MsgDataAck      uint16 = 0x0B // data service handshake ack
	MsgChangeDir    uint16 = 0x09
	MsgDirAbove     uint16 = 0x0A
	MsgCheckFile    uint16 = 0x0C
	MsgFileListDone uint16 = 0x0D
	MsgUpdateFiles  uint16 = 0x0F
	MsgFileHeader   uint16 = 0x06
	MsgFileChunk    uint16 = 0x07
	MsgFileComplete uint16 = 0x08
	MsgUpdateDone   uint16 = 0x10
)

const copyrightSize = 44

// Welcome carries the copyright banner and the two PC-cipher seeds;
// it is sent unencrypted, before either side installs a cipher.
type Welcome struct {
	Copyright    string
	ServerVector uint32
	ClientVector uint32
}

func (w Welcome) Encode(wr *serial.Writer) {
	wr.FixedASCII(w.Copyright, copyrightSize)
	wr.Pad(20)
	wr.U32(w.ServerVector)
	wr.U32(w.ClientVector)
}

// Redirect points the client at the next server in the chain (data,
// or ship). Its integers are big-endian, handled by proto.EncodeRedirectBody
// rather than here; this package only names its opcode (MsgRedirect)
// alongside its PC-framed siblings.

// Message is the MOTD/download-screen banner, UTF-16LE, zero-terminated
// (VarUTF16 appends a NUL code unit).
type Message struct {
	Text string
}

func (m Message) Encode(wr *serial.Writer) {
	wr.VarUTF16(m.Text)
}

// ChangeDir tells the client to descend into a named directory of its
// patch tree.
type ChangeDir struct {
	Dirname string
}

func (c ChangeDir) Encode(wr *serial.Writer) {
	wr.FixedASCII(c.Dirname, 64)
}

// CheckFile asks the client to report (via its own CRC check, handled
// client-side) whether the named file in the current directory needs
// patching.
type CheckFile struct {
	PatchID  uint32
	Filename string
}

func (c CheckFile) Encode(wr *serial.Writer) {
	wr.U32(c.PatchID)
	wr.FixedASCII(c.Filename, 32)
}

// UpdateFiles summarizes how many files (and total bytes) still need
// updating; archon's file-push pipeline isn't implemented here, so
// this server always reports zero.
type UpdateFiles struct {
	NumFiles  uint32
	TotalSize uint32
}

func (u UpdateFiles) Encode(wr *serial.Writer) {
	wr.U32(u.NumFiles)
	wr.U32(u.TotalSize)
}
