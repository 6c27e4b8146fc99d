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
* Shipgate client: one blocking socket on its own goroutine (per
* spec.md section 5's "shipgate client connection runs as a sibling
* blocking socket on its own thread" rule), exposing a correlation-key
* keyed callback map that the owning service's single dispatch
* goroutine drains through Responses().
 */
package shipgateclient

import (
	"fmt"
	"net"
	"sync"

	"github.com/dcrodman/archon/internal/proto"
	"github.com/dcrodman/archon/internal/serial"
	"github.com/dcrodman/archon/internal/servererr"
	"github.com/dcrodman/archon/internal/shipgateproto"
)

// Response is one decoded shipgate reply delivered to the owning
// service, tagged with the correlation key so the dispatch loop can
// look up (and remove) the pending callback.
type Response struct {
	Key     uint32
	MsgType uint16
	Body    []byte
	Err     error
}

// Client owns the shipgate TCP connection. Encode is the caller's
// responsibility per message type (internal/shipgateproto); Client
// only manages framing, correlation keys, and the read/write pump.
type Client struct {
	conn net.Conn

	mu      sync.Mutex
	nextKey uint32
	pending map[uint32]struct{} // fire-and-forget guard: keys never added here

	responses chan Response
}

// Dial connects to the shipgate and performs the mandatory Auth
// handshake before returning: the shipgate requires Auth to be the
// first message on the connection (see shipgatesvc.Server.handle) and
// replies with an AuthAck the caller must see succeed before treating
// the connection as usable.
func Dial(addr string, password string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("shipgateclient: %w", err)
	}
	c := &Client{
		conn:      conn,
		nextKey:   1,
		pending:   map[uint32]struct{}{},
		responses: make(chan Response, 64),
	}
	go c.readLoop()

	key := c.NextKey()
	w := serial.NewWriter()
	shipgateproto.Auth{Password: password}.Encode(w)
	if err := c.Send(shipgateproto.MsgAuth, key, w.Bytes()); err != nil {
		conn.Close()
		return nil, err
	}

	resp := <-c.responses
	if resp.Err != nil {
		conn.Close()
		return nil, fmt.Errorf("shipgateclient: auth: %w", resp.Err)
	}
	if resp.MsgType != shipgateproto.MsgAuthAck {
		conn.Close()
		return nil, fmt.Errorf("shipgateclient: auth: unexpected reply type %d", resp.MsgType)
	}
	ack := shipgateproto.DecodeAuthAck(serial.NewReader(resp.Body))
	if ack.Status != 0 {
		conn.Close()
		return nil, fmt.Errorf("shipgateclient: auth rejected, status %d", ack.Status)
	}
	return c, nil
}

// Responses returns the channel the owning service's single dispatch
// goroutine should select on to receive shipgate replies in delivery
// order (spec.md section 5: "the service MUST NOT assume responses
// arrive in request order across different correlation keys").
func (c *Client) Responses() <-chan Response { return c.responses }

// NextKey allocates the next correlation key for a request that wants
// a response. Fire-and-forget sends use key 0 directly and must not
// call NextKey.
func (c *Client) NextKey() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.nextKey
	c.nextKey++
	c.pending[k] = struct{}{}
	return k
}

// Send writes one framed, correlated shipgate message. key == 0 means
// fire-and-forget: no response will ever arrive for this send.
func (c *Client) Send(msgType uint16, key uint32, body []byte) error {
	frame := proto.EncodeShipgate(msgType, key, body)
	_, err := c.conn.Write(frame)
	if err != nil {
		return &servererr.BackendError{Cause: err}
	}
	return nil
}

func (c *Client) readLoop() {
	dec := proto.NewShipgateDecoder()
	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			c.responses <- Response{Err: &servererr.BackendError{Cause: err}}
			close(c.responses)
			return
		}
		frames, _, err := dec.Feed(buf[:n])
		if err != nil {
			c.responses <- Response{Err: &servererr.ProtocolError{Reason: err.Error()}}
			continue
		}
		for _, f := range frames {
			c.mu.Lock()
			delete(c.pending, f.CorrelationKey)
			c.mu.Unlock()
			c.responses <- Response{Key: f.CorrelationKey, MsgType: f.Type, Body: f.Payload}
		}
	}
}

// Close tears down the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// NewWriter is a small convenience so callers building a request body
// don't need to import internal/serial directly just for this.
func NewWriter() *serial.Writer { return serial.NewWriter() }
