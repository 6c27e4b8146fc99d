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
* The cooperative, single-threaded reactor spec.md section 5 calls
* for. A goroutine per connection does the only genuinely blocking
* work (socket read/write); every one of them only ever produces
* Events onto a single channel or drains its own outbox, and all
* session mutation happens on the one Reactor.Run goroutine that reads
* that channel. This gets the same "all per-connection state is owned
* by one thread" property spec.md asks for using Go's native
* concurrency primitives instead of hand-rolled epoll/kqueue polling,
* which the standard library doesn't expose directly anyway.
 */
package reactor

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/dcrodman/archon/internal/encryption"
	"github.com/dcrodman/archon/internal/hexdump"
)

// Frame is a protocol-agnostic decoded message; Flags is unused (0)
// for PC framing and carries the BB header's flags word for BB
// framing.
type Frame struct {
	Type    uint16
	Flags   uint32
	Payload []byte
}

// Decoder is the minimal contract internal/proto's PC/BB/shipgate
// decoders satisfy, wrapped per-protocol by the adapters in this
// package so Reactor itself stays protocol-agnostic.
type Decoder interface {
	Feed(data []byte) (consumedFrames []Frame, consumed int, err error)
	SetCipher(c encryption.Cipher)
}

// EventKind tags the three things that can happen to a connection.
type EventKind int

const (
	EventConnected EventKind = iota
	EventFrame
	EventDisconnected
)

// Event is the one struct the reactor's dispatch goroutine receives
// for every per-connection occurrence; it is fully self-contained so
// the dispatch loop never needs to touch the network directly.
type Event struct {
	Kind  EventKind
	ConnID uint64
	Frame  Frame
	Err    error
}

// Conn is the reactor's handle to one accepted socket: an outbox the
// dispatch loop writes frames to, drained by a dedicated writer
// goroutine so a slow client can never block the dispatch loop.
type Conn struct {
	ID     uint64
	Remote string

	netConn   net.Conn
	decoder   Decoder
	decoderMu sync.Mutex
	outbox    chan []byte
	closed    chan struct{}
	once      sync.Once
}

// SetCipher installs the read-direction cipher on this connection's
// decoder. Called by the dispatch loop once it has generated the
// per-connection seeds (after sending the unencrypted Welcome); a
// mutex guards the handoff against the reader goroutine's concurrent
// Feed calls, since the two run on different goroutines by design.
func (c *Conn) SetCipher(cipher encryption.Cipher) {
	c.decoderMu.Lock()
	defer c.decoderMu.Unlock()
	c.decoder.SetCipher(cipher)
}

// Send enqueues a fully framed (and, if applicable, already
// encrypted) buffer for writing. Never blocks the caller past the
// outbox's buffer depth.
func (c *Conn) Send(frame []byte) {
	select {
	case c.outbox <- frame:
	case <-c.closed:
	}
}

// Close tears down the connection; safe to call multiple times and
// from any goroutine.
func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.closed)
		c.netConn.Close()
	})
}

// Reactor owns the accept loop and the single Events channel every
// connection's reader goroutine feeds.
type Reactor struct {
	log      *slog.Logger
	newDecoder func() Decoder

	nextID  uint64
	events  chan Event
	conns   map[uint64]*Conn
	connsMu sync.Mutex
}

// New builds a Reactor. newDecoder constructs a fresh protocol decoder
// for each accepted connection (a PC, BB, or shipgate decoder
// wrapped to satisfy Decoder).
func New(log *slog.Logger, newDecoder func() Decoder) *Reactor {
	return &Reactor{
		log:        log,
		newDecoder: newDecoder,
		events:     make(chan Event, 256),
		conns:      map[uint64]*Conn{},
	}
}

// Events is read by the service's single dispatch goroutine (see
// internal/services/*), usually in a select alongside the shipgate
// client's Responses() channel.
func (r *Reactor) Events() <-chan Event { return r.events }

// Conn looks up a still-open connection by ID; returns nil if it has
// since disconnected (the dispatch loop must tolerate this — a Send
// to a departed connection is a harmless no-op via Conn.Close).
func (r *Reactor) Conn(id uint64) *Conn {
	r.connsMu.Lock()
	defer r.connsMu.Unlock()
	return r.conns[id]
}

// Serve accepts connections on ln until it errors (typically on
// Listener.Close during shutdown).
func (r *Reactor) Serve(ln net.Listener) error {
	for {
		netConn, err := ln.Accept()
		if err != nil {
			return err
		}
		r.accept(netConn)
	}
}

func (r *Reactor) accept(netConn net.Conn) {
	id := atomic.AddUint64(&r.nextID, 1)
	conn := &Conn{
		ID:      id,
		Remote:  netConn.RemoteAddr().String(),
		netConn: netConn,
		decoder: r.newDecoder(),
		outbox:  make(chan []byte, 64),
		closed:  make(chan struct{}),
	}

	r.connsMu.Lock()
	r.conns[id] = conn
	r.connsMu.Unlock()

	go r.writeLoop(conn)
	go r.readLoop(conn)

	r.events <- Event{Kind: EventConnected, ConnID: id}
}

func (r *Reactor) writeLoop(conn *Conn) {
	for {
		select {
		case buf := <-conn.outbox:
			if _, err := conn.netConn.Write(buf); err != nil {
				conn.Close()
				return
			}
		case <-conn.closed:
			return
		}
	}
}

func (r *Reactor) readLoop(conn *Conn) {
	buf := make([]byte, 4096)
	defer r.deregister(conn)

	for {
		n, err := conn.netConn.Read(buf)
		if err != nil {
			return
		}
		conn.decoderMu.Lock()
		frames, _, err := conn.decoder.Feed(buf[:n])
		conn.decoderMu.Unlock()
		if err != nil {
			r.log.Warn("reactor: framing error, dropping connection", "conn", conn.ID, "error", err)
			return
		}
		for _, f := range frames {
			if r.log.Enabled(context.Background(), slog.LevelDebug) {
				r.log.Debug("reactor: frame received", "conn", conn.ID, "type", f.Type, "dump", hexdump.Dump(f.Payload))
			}
			r.events <- Event{Kind: EventFrame, ConnID: conn.ID, Frame: f}
		}
	}
}

func (r *Reactor) deregister(conn *Conn) {
	conn.Close()
	r.connsMu.Lock()
	delete(r.conns, conn.ID)
	r.connsMu.Unlock()
	r.events <- Event{Kind: EventDisconnected, ConnID: conn.ID}
}
