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

package pty

import (
	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/errkind"
)

const forwardBufSize = 8192

// Forward shovels bytes between the operator's terminal (in/out) and the
// pty master until either side hits EOF, mirroring the Rust original's
// FilePair select loop: a single select(2) call watches both read ends at
// once, so a short write on one direction never stalls progress on the
// other the way two independent io.Copy goroutines blocked on separate
// syscalls would.
func Forward(master, in, out int) error {
	buf := make([]byte, forwardBufSize)
	inOpen, masterOpen := true, true

	for inOpen || masterOpen {
		rfds := unix.FdSet{}
		maxFd := 0
		if inOpen {
			fdSet(&rfds, in)
			if in > maxFd {
				maxFd = in
			}
		}
		if masterOpen {
			fdSet(&rfds, master)
			if master > maxFd {
				maxFd = master
			}
		}

		n, err := unix.Select(maxFd+1, &rfds, nil, nil, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return errkind.Wrap(errkind.Mount, "select", err)
		}
		if n == 0 {
			continue
		}

		if inOpen && fdIsSet(&rfds, in) {
			read, err := unix.Read(in, buf)
			if err != nil || read == 0 {
				inOpen = false
			} else if err := writeAll(master, buf[:read]); err != nil {
				masterOpen = false
			}
		}
		if masterOpen && fdIsSet(&rfds, master) {
			read, err := unix.Read(master, buf)
			if err != nil || read == 0 {
				masterOpen = false
			} else if err := writeAll(out, buf[:read]); err != nil {
				masterOpen = false
			}
		}
	}
	return nil
}

func writeAll(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := unix.Write(fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// fdSet/fdIsSet replace the unexported bit-twiddling unix.FdSet needs,
// since golang.org/x/sys/unix does not export FD_SET/FD_ISSET helpers.
func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
