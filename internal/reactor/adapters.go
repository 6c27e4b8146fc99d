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
 */
package reactor

import (
	"github.com/dcrodman/archon/internal/encryption"
	"github.com/dcrodman/archon/internal/proto"
)

// PCAdapter wraps proto.PCDecoder to satisfy Decoder, used by the
// patch and data services.
type PCAdapter struct{ d *proto.PCDecoder }

func NewPCAdapter() *PCAdapter { return &PCAdapter{d: proto.NewPCDecoder()} }

func (a *PCAdapter) SetCipher(c encryption.Cipher) { a.d.SetCipher(c) }

func (a *PCAdapter) Feed(data []byte) ([]Frame, int, error) {
	raw, consumed, err := a.d.Feed(data)
	if err != nil {
		return nil, consumed, err
	}
	frames := make([]Frame, len(raw))
	for i, f := range raw {
		frames[i] = Frame{Type: f.Type, Payload: f.Payload}
	}
	return frames, consumed, nil
}

// BBAdapter wraps proto.BBDecoder to satisfy Decoder, used by the
// login, ship, and block services.
type BBAdapter struct{ d *proto.BBDecoder }

func NewBBAdapter() *BBAdapter { return &BBAdapter{d: proto.NewBBDecoder()} }

func (a *BBAdapter) SetCipher(c encryption.Cipher) { a.d.SetCipher(c) }

func (a *BBAdapter) Feed(data []byte) ([]Frame, int, error) {
	raw, consumed, err := a.d.Feed(data)
	if err != nil {
		return nil, consumed, err
	}
	frames := make([]Frame, len(raw))
	for i, f := range raw {
		frames[i] = Frame{Type: f.Type, Flags: f.Flags, Payload: f.Payload}
	}
	return frames, consumed, nil
}
