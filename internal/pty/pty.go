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

// Package pty allocates a pseudo-terminal for the attaching operator,
// raw-modes the controlling terminal, propagates window-size changes, and
// forwards bytes bidirectionally until the child exits using a single
// select-driven forwarding loop, not two independent io.Copy goroutines,
// so backpressure on one direction never stalls the other.
package pty

import (
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/errkind"
)

// Pair is a freshly allocated master/slave pseudo-terminal pair.
type Pair struct {
	Master *os.File
	slave  string
}

// Open allocates a pty master via posix_openpt/grantpt/unlockpt and
// resolves its slave path.
func Open() (*Pair, error) {
	masterFD, err := unix.PosixOpenpt(unix.O_RDWR | unix.O_NOCTTY)
	if err != nil {
		return nil, errkind.Wrap(errkind.Mount, "posix_openpt", err)
	}
	master := os.NewFile(uintptr(masterFD), "pty-master")
	if err := unix.Grantpt(masterFD); err != nil {
		master.Close()
		return nil, errkind.Wrap(errkind.Mount, "grantpt", err)
	}
	if err := unix.Unlockpt(masterFD); err != nil {
		master.Close()
		return nil, errkind.Wrap(errkind.Mount, "unlockpt", err)
	}
	slave, err := unix.Ptsname(masterFD)
	if err != nil {
		master.Close()
		return nil, errkind.Wrap(errkind.Mount, "ptsname", err)
	}
	return &Pair{Master: master, slave: slave}, nil
}

// SlavePath is the filesystem path of the pty slave, to be opened by the
// child after it calls setsid.
func (p *Pair) SlavePath() string { return p.slave }

// AttachSlave is called in the child, after setsid: it opens the slave and
// dup2s it onto stdin/stdout/stderr, replacing whatever the child
// inherited.
func AttachSlave(slavePath string) error {
	if _, err := unix.Setsid(); err != nil {
		// Already a session leader (e.g. re-exec helper invoked directly);
		// not fatal.
		if err != unix.EPERM {
			return errkind.Wrap(errkind.Mount, "setsid", err)
		}
	}
	fd, err := unix.Open(slavePath, unix.O_RDWR, 0)
	if err != nil {
		return errkind.Wrap(errkind.Mount, "open "+slavePath, err)
	}
	defer unix.Close(fd)
	for _, target := range []int{0, 1, 2} {
		if err := unix.Dup2(fd, target); err != nil {
			return errkind.Wrap(errkind.Mount, fmt.Sprintf("dup2(%d)", target), err)
		}
	}
	return nil
}

// RawMode puts fd (usually os.Stdin) into raw mode and returns a restore
// function that puts back the termios state it captured.
func RawMode(fd int) (restore func(), err error) {
	original, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, errkind.Wrap(errkind.Mount, "TCGETS", err)
	}
	raw := *original
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return nil, errkind.Wrap(errkind.Mount, "TCSETS", err)
	}
	return func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, original)
	}, nil
}

// WindowSize mirrors unix.Winsize.
type WindowSize = unix.Winsize

// GetWinsize reads the current window size of fd.
func GetWinsize(fd int) (*WindowSize, error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return nil, errkind.Wrap(errkind.Mount, "TIOCGWINSZ", err)
	}
	return ws, nil
}

// SetWinsize propagates ws onto the pty master, so the child's controlling
// terminal reports the operator's real terminal size.
func (p *Pair) SetWinsize(ws *WindowSize) error {
	if err := unix.IoctlSetWinsize(int(p.Master.Fd()), unix.TIOCSWINSZ, ws); err != nil {
		return errkind.Wrap(errkind.Mount, "TIOCSWINSZ", err)
	}
	return nil
}

// WatchResize propagates SIGWINCH on watched (usually os.Stdin) to the pty
// master for as long as stop is not closed. The initial size is propagated
// once immediately.
func (p *Pair) WatchResize(watched int, stop <-chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGWINCH)
	defer signal.Stop(sigCh)

	propagate := func() {
		if ws, err := GetWinsize(watched); err == nil {
			_ = p.SetWinsize(ws)
		}
	}
	propagate()
	for {
		select {
		case <-stop:
			return
		case <-sigCh:
			propagate()
		}
	}
}
