// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xerrors defines the error taxonomy raised at the boundaries of
// the network reduction engine: construction, topology mutation and
// simulation all fail with a typed Kind instead of an opaque error, so
// callers can branch on errors.As without string-matching messages.
package xerrors

import (
	"fmt"

	"github.com/cpmech/gosl/chk"
)

// Kind identifies the category of a boundary error.
type Kind int

// Error kinds, one per row of spec §7.
const (
	InvalidPort Kind = iota
	PortAlreadyConnected
	DuplicateId
	UnknownComponent
	UnknownPort
	FrequencyMismatch
	DomainError
	DataError
	PortNameConflict
	ConcurrentMutation
	WorkerFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidPort:
		return "InvalidPort"
	case PortAlreadyConnected:
		return "PortAlreadyConnected"
	case DuplicateId:
		return "DuplicateId"
	case UnknownComponent:
		return "UnknownComponent"
	case UnknownPort:
		return "UnknownPort"
	case FrequencyMismatch:
		return "FrequencyMismatch"
	case DomainError:
		return "DomainError"
	case DataError:
		return "DataError"
	case PortNameConflict:
		return "PortNameConflict"
	case ConcurrentMutation:
		return "ConcurrentMutation"
	case WorkerFailure:
		return "WorkerFailure"
	}
	return "Unknown"
}

// Error is a boundary error carrying a Kind plus a chk-formatted message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds an Error of the given Kind, formatting msg/args the same way
// chk.Err does, so messages read consistently with the rest of the stack.
func New(kind Kind, msg string, args ...interface{}) error {
	err := chk.Err(msg, args...)
	return &Error{Kind: kind, Msg: err.Error()}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}
