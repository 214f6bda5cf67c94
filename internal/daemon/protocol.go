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

// Package daemon implements the long-lived process that stays resident
// inside a container's namespaces, accepting follow-up exec requests over
// a Unix socket. Each request runs in a re-executed helper that repeats the
// full container-entry sequence before running the command. Wire format
// grounded byte-for-byte on
// original_source/src/daemon/protocol.rs.
package daemon

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ExecRequest asks the daemon to run command (or, if empty, the
// container's default shell) with arguments.
//
// Wire format:
//   - 1 byte: has_command flag (0 = use default shell, 1 = Command set)
//   - if has_command: 4 bytes length (little-endian uint32) + N bytes UTF-8
//   - 4 bytes: argument count (little-endian uint32)
//   - for each argument: 4 bytes length + N bytes UTF-8
type ExecRequest struct {
	Command    string
	HasCommand bool
	Arguments  []string
}

func writeLenPrefixed(w io.Writer, s string) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readLenPrefixed(r io.Reader) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Serialize writes req to w in the wire format above.
func (req *ExecRequest) Serialize(w io.Writer) error {
	if req.HasCommand {
		if _, err := w.Write([]byte{1}); err != nil {
			return err
		}
		if err := writeLenPrefixed(w, req.Command); err != nil {
			return err
		}
	} else {
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(req.Arguments)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return err
	}
	for _, arg := range req.Arguments {
		if err := writeLenPrefixed(w, arg); err != nil {
			return err
		}
	}
	return nil
}

// DeserializeExecRequest reads an ExecRequest in the wire format above.
func DeserializeExecRequest(r io.Reader) (*ExecRequest, error) {
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return nil, fmt.Errorf("read has_command flag: %w", err)
	}

	req := &ExecRequest{}
	switch flag[0] {
	case 1:
		cmd, err := readLenPrefixed(r)
		if err != nil {
			return nil, fmt.Errorf("read command: %w", err)
		}
		req.HasCommand = true
		req.Command = cmd
	case 0:
		// default shell
	default:
		return nil, fmt.Errorf("invalid has_command flag: %d", flag[0])
	}

	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, fmt.Errorf("read argument count: %w", err)
	}
	count := binary.LittleEndian.Uint32(countBuf[:])

	req.Arguments = make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		arg, err := readLenPrefixed(r)
		if err != nil {
			return nil, fmt.Errorf("read argument %d: %w", i, err)
		}
		req.Arguments = append(req.Arguments, arg)
	}
	return req, nil
}

// ExecResponse is the daemon's acknowledgement that it accepted (or
// rejected) an ExecRequest. A successful response does not carry the
// command's exit status — the command itself runs with the connection as
// its stdin/stdout/stderr, and the client observes completion when the
// connection closes.
type ExecResponse struct {
	OK      bool
	Message string
}

// Serialize writes resp in the wire format: 1 byte type (0 = Ok, 1 =
// Error), followed for Error by a length-prefixed UTF-8 message.
func (resp *ExecResponse) Serialize(w io.Writer) error {
	if resp.OK {
		_, err := w.Write([]byte{0})
		return err
	}
	if _, err := w.Write([]byte{1}); err != nil {
		return err
	}
	return writeLenPrefixed(w, resp.Message)
}

// DeserializeExecResponse reads an ExecResponse in the wire format above.
func DeserializeExecResponse(r io.Reader) (*ExecResponse, error) {
	var typ [1]byte
	if _, err := io.ReadFull(r, typ[:]); err != nil {
		return nil, fmt.Errorf("read response type: %w", err)
	}
	switch typ[0] {
	case 0:
		return &ExecResponse{OK: true}, nil
	case 1:
		msg, err := readLenPrefixed(r)
		if err != nil {
			return nil, fmt.Errorf("read error message: %w", err)
		}
		return &ExecResponse{OK: false, Message: msg}, nil
	default:
		return nil, fmt.Errorf("invalid response type: %d", typ[0])
	}
}
