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
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/stretchr/testify/require"
)

func TestFdSetRoundTrip(t *testing.T) {
	var set unix.FdSet
	fdSet(&set, 5)
	fdSet(&set, 130)

	require.True(t, fdIsSet(&set, 5))
	require.True(t, fdIsSet(&set, 130))
	require.False(t, fdIsSet(&set, 6))
}

// TestForwardShovelsBothDirectionsUntilEOF drives Forward over a socketpair
// standing in for the pty master, and a pipe pair standing in for the
// operator's terminal, checking bytes flow both ways and that closing the
// "in" side unwinds the loop once the master side also reaches EOF.
func TestForwardShovelsBothDirectionsUntilEOF(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	master := fds[0]
	masterPeer := os.NewFile(uintptr(fds[1]), "master-peer")
	defer masterPeer.Close()

	inRead, inWrite, err := os.Pipe()
	require.NoError(t, err)
	outRead, outWrite, err := os.Pipe()
	require.NoError(t, err)
	defer outRead.Close()

	done := make(chan error, 1)
	go func() {
		done <- Forward(master, int(inRead.Fd()), int(outWrite.Fd()))
	}()

	_, err = inWrite.Write([]byte("hello"))
	require.NoError(t, err)

	buf := make([]byte, 5)
	_, err = masterPeer.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf))

	_, err = masterPeer.Write([]byte("world"))
	require.NoError(t, err)

	buf2 := make([]byte, 5)
	_, err = outRead.Read(buf2)
	require.NoError(t, err)
	require.Equal(t, "world", string(buf2))

	inWrite.Close()
	masterPeer.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Forward did not return after both sides closed")
	}
}
