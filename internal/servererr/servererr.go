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
* The error taxonomy every service dispatch loop decides against:
* fatal errors close the connection, non-fatal ones are surfaced to
* the player and the session continues.
 */
package servererr

import "fmt"

// ProtocolError indicates framing or parsing failed, a message arrived
// out of sequence for the connection's current state, or a magic
// value didn't match. Always fatal.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "protocol error: " + e.Reason }
func (e *ProtocolError) Fatal() bool   { return true }

// AuthError wraps a shipgate login rejection status code.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth error: status %d", e.Status) }
func (e *AuthError) Fatal() bool   { return true }

// StateError is a non-fatal, user-visible condition: name collision,
// lobby/party full, bursting, invalid menu selection, unsupported
// mode. Delivered to the client as a small chat-bubble message
// (BbMsg1) with a "\tE" English-language prefix.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }
func (e *StateError) Fatal() bool   { return false }

// FatalGameError is an illegal-for-state condition severe enough to
// drop the connection after telling the player why (LargeMsg, "\tE"
// prefixed).
type FatalGameError struct {
	Message string
}

func (e *FatalGameError) Error() string { return e.Message }
func (e *FatalGameError) Fatal() bool   { return true }

// BackendError wraps a shipgate I/O or database failure. Always
// fatal: the owning connection cannot make progress without the
// shipgate.
type BackendError struct {
	Cause error
}

func (e *BackendError) Error() string { return "backend error: " + e.Cause.Error() }
func (e *BackendError) Fatal() bool   { return true }
func (e *BackendError) Unwrap() error { return e.Cause }

// Fatal reports whether err, if it implements the Fatal() bool
// convention used by this package's types, should close the
// connection. Unrecognized error types are treated as fatal, matching
// the "no unhandled error escapes the reactor thread" propagation
// policy: anything we don't have an explicit non-fatal classification
// for drops the connection rather than risk getting stuck.
func Fatal(err error) bool {
	if f, ok := err.(interface{ Fatal() bool }); ok {
		return f.Fatal()
	}
	return err != nil
}
