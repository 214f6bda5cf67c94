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

package attach

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cntr-go/cntr/internal/daemon"
)

// TestExecRequestFromOptionsDefaultsToNoCommand mirrors the request-building
// step in attachShell: an empty Options.Command must produce HasCommand ==
// false so the exec helper falls back to $SHELL (else sh), never an empty
// command string.
func TestExecRequestFromOptionsDefaultsToNoCommand(t *testing.T) {
	opts := Options{Arguments: []string{"-l"}}
	req := &daemon.ExecRequest{
		Command:    opts.Command,
		HasCommand: opts.Command != "",
		Arguments:  opts.Arguments,
	}
	require.False(t, req.HasCommand)
	require.Equal(t, []string{"-l"}, req.Arguments)
}

func TestExecRequestFromOptionsWithCommand(t *testing.T) {
	opts := Options{Command: "bash", Arguments: []string{"-c", "echo hi"}}
	req := &daemon.ExecRequest{
		Command:    opts.Command,
		HasCommand: opts.Command != "",
		Arguments:  opts.Arguments,
	}
	require.True(t, req.HasCommand)
	require.Equal(t, "bash", req.Command)
}
