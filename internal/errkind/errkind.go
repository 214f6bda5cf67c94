// Copyright 2026 The cntr-go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errkind defines the semantic error kinds that the Container Entry
// Engine, the overlay engines and the exec daemon surface, so that callers
// can dispatch on Is(err, kind), or errors.As into an *Error, instead of
// string-matching messages.
package errkind

import "fmt"

// Kind identifies which broad failure category an error belongs to.
type Kind int

const (
	// Probe is a container runtime lookup failure: tool missing, non-zero
	// exit, unparseable output, or a container that is not running.
	Probe Kind = iota
	// Introspection is a /proc parsing failure: missing field, unparseable
	// value, unreadable path.
	Introspection
	// Namespace is a namespace failure: unsupported kind, open, or setns.
	Namespace
	// Security is a capability/uid/gid/LSM failure.
	Security
	// Mount is an unshare/bind/move/chroot failure, or both overlay paths
	// being unavailable.
	Mount
	// Protocol is a wire-format failure on the daemon socket.
	Protocol
	// Overlay is a host syscall error surfaced by the FUSE server.
	Overlay
)

func (k Kind) String() string {
	switch k {
	case Probe:
		return "probe"
	case Introspection:
		return "introspection"
	case Namespace:
		return "namespace"
	case Security:
		return "security"
	case Mount:
		return "mount"
	case Protocol:
		return "protocol"
	case Overlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind, so that it can be matched
// with errors.As without depending on message text.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error of the given kind, describing the operation that
// failed. Returns nil if err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err (or anything it wraps) is an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	for err != nil {
		if ke, ok := err.(*Error); ok {
			e = ke
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == k
}
