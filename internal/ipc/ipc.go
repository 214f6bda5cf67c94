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

// Package ipc is a typed SOCK_DGRAM socketpair channel that can pass open
// file descriptors (e.g. a namespace handle) as SCM_RIGHTS ancillary data
// between the parent and child of the attach fork, replacing a generic
// byte-stream pipe with something that understands "bytes plus fds" as a
// single message.
package ipc

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/errkind"
)

// linuxPathMax is PATH_MAX on Linux (linux/limits.h); x/sys/unix does not
// export it as a named constant.
const linuxPathMax = 4096

// maxMessageLength bounds a single receive: large enough for two NUL-joined
// PATH_MAX paths, the largest payload this channel ever carries.
const maxMessageLength = linuxPathMax * 2

// Socket is one end of a SOCK_DGRAM socketpair.
type Socket struct {
	file *os.File
}

// NewPair creates a connected, close-on-exec socketpair whose two ends are
// handed to the parent and child side of a fork (or, in this Go port, to
// the two halves of the mount-namespace handoff between the pre-chroot and
// post-chroot phases of internal/mountns, which communicate via a socketpair
// instead of an actual fork since both run in the same process).
func NewPair() (parent, child *Socket, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, nil, errkind.Wrap(errkind.Protocol, "socketpair", err)
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])
	return &Socket{file: os.NewFile(uintptr(fds[0]), "ipc-parent")},
		&Socket{file: os.NewFile(uintptr(fds[1]), "ipc-child")},
		nil
}

// File exposes the underlying file descriptor, e.g. to pass to
// cmd.ExtraFiles when the other end lives in a child process.
func (s *Socket) File() *os.File { return s.file }

// Close releases the socket.
func (s *Socket) Close() error { return s.file.Close() }

// Send writes messages concatenated as a single datagram, with files
// attached as an SCM_RIGHTS ancillary message.
func (s *Socket) Send(messages [][]byte, files []*os.File) error {
	var payload []byte
	for _, m := range messages {
		payload = append(payload, m...)
	}

	var rights []byte
	if len(files) > 0 {
		fds := make([]int, len(files))
		for i, f := range files {
			fds[i] = int(f.Fd())
		}
		rights = unix.UnixRights(fds...)
	}

	conn, err := s.file.SyscallConn()
	if err != nil {
		return errkind.Wrap(errkind.Protocol, "SyscallConn", err)
	}
	var sendErr error
	ctlErr := conn.Write(func(fd uintptr) bool {
		sendErr = unix.Sendmsg(int(fd), payload, rights, nil, 0)
		if sendErr == unix.EAGAIN {
			return false
		}
		return true
	})
	if ctlErr != nil {
		return errkind.Wrap(errkind.Protocol, "sendmsg", ctlErr)
	}
	if sendErr != nil {
		return errkind.Wrap(errkind.Protocol, "sendmsg", sendErr)
	}
	return nil
}

// Receive reads up to messageLength bytes and any SCM_RIGHTS-attached file
// descriptors, retrying on EAGAIN/EINTR.
func (s *Socket) Receive(messageLength int) ([]byte, []*os.File, error) {
	if messageLength <= 0 {
		messageLength = maxMessageLength
	}
	buf := make([]byte, messageLength)
	oob := make([]byte, unix.CmsgSpace(2*4)) // room for up to 2 fds

	var (
		n, oobn int
		recvErr error
	)
	conn, err := s.file.SyscallConn()
	if err != nil {
		return nil, nil, errkind.Wrap(errkind.Protocol, "SyscallConn", err)
	}
	ctlErr := conn.Read(func(fd uintptr) bool {
		for {
			var fromErr error
			n, oobn, _, _, fromErr = unix.Recvmsg(int(fd), buf, oob, 0)
			if fromErr == unix.EAGAIN || fromErr == unix.EINTR {
				continue
			}
			recvErr = fromErr
			return true
		}
	})
	if ctlErr != nil {
		return nil, nil, errkind.Wrap(errkind.Protocol, "recvmsg", ctlErr)
	}
	if recvErr != nil {
		return nil, nil, errkind.Wrap(errkind.Protocol, "recvmsg", recvErr)
	}

	var files []*os.File
	if oobn > 0 {
		cmsgs, err := unix.ParseSocketControlMessage(oob[:oobn])
		if err != nil {
			return nil, nil, errkind.Wrap(errkind.Protocol, "parse control message", err)
		}
		for _, cmsg := range cmsgs {
			fds, err := unix.ParseUnixRights(&cmsg)
			if err != nil {
				continue
			}
			for _, fd := range fds {
				files = append(files, os.NewFile(uintptr(fd), "ipc-received-fd"))
			}
		}
	}
	return buf[:n], files, nil
}
