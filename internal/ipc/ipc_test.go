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

package ipc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendReceiveRoundTripsBytesAndFD(t *testing.T) {
	parent, child, err := NewPair()
	require.NoError(t, err)
	defer parent.Close()
	defer child.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "passed.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	passed, err := os.Open(path)
	require.NoError(t, err)
	defer passed.Close()

	require.NoError(t, parent.Send([][]byte{[]byte("/mnt"), {0}, []byte("/tmp")}, []*os.File{passed}))

	data, files, err := child.Receive(0)
	require.NoError(t, err)
	require.Equal(t, "/mnt\x00/tmp", string(data))
	require.Len(t, files, 1)
	defer files[0].Close()

	got := make([]byte, 5)
	n, err := files[0].ReadAt(got, 0)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got[:n]))
}

func TestSendWithoutFiles(t *testing.T) {
	parent, child, err := NewPair()
	require.NoError(t, err)
	defer parent.Close()
	defer child.Close()

	require.NoError(t, parent.Send([][]byte{[]byte("ping")}, nil))
	data, files, err := child.Receive(0)
	require.NoError(t, err)
	require.Equal(t, "ping", string(data))
	require.Empty(t, files)
}
