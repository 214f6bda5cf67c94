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

package daemon

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecRequestRoundTripWithCommand(t *testing.T) {
	req := &ExecRequest{HasCommand: true, Command: "bash", Arguments: []string{"-c", "echo hello"}}

	var buf bytes.Buffer
	require.NoError(t, req.Serialize(&buf))

	got, err := DeserializeExecRequest(&buf)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestExecRequestRoundTripDefaultShell(t *testing.T) {
	req := &ExecRequest{Arguments: []string{"-l"}}

	var buf bytes.Buffer
	require.NoError(t, req.Serialize(&buf))

	got, err := DeserializeExecRequest(&buf)
	require.NoError(t, err)
	require.False(t, got.HasCommand)
	require.Equal(t, []string{"-l"}, got.Arguments)
}

func TestExecResponseRoundTripOK(t *testing.T) {
	resp := &ExecResponse{OK: true}

	var buf bytes.Buffer
	require.NoError(t, resp.Serialize(&buf))

	got, err := DeserializeExecResponse(&buf)
	require.NoError(t, err)
	require.Equal(t, resp, got)
}

func TestExecResponseRoundTripError(t *testing.T) {
	resp := &ExecResponse{Message: "no such file"}

	var buf bytes.Buffer
	require.NoError(t, resp.Serialize(&buf))

	got, err := DeserializeExecResponse(&buf)
	require.NoError(t, err)
	require.Equal(t, resp, got)
}

func TestDeserializeExecResponseRejectsUnknownType(t *testing.T) {
	_, err := DeserializeExecResponse(bytes.NewReader([]byte{7}))
	require.ErrorContains(t, err, "invalid response type")
}
