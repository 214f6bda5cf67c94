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

package main

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/cntr-go/cntr/internal/daemon"
	"github.com/cntr-go/cntr/internal/pty"
)

var execCmd = &cobra.Command{
	Use:   "exec [command] [args...]",
	Short: "Run a command in an already-attached container via the resident exec daemon",
	Long: `exec dials the exec daemon started by a prior "cntr attach" (reachable
at /var/lib/cntr/.exec.sock from inside that attach's own shell). The daemon
runs the command in a helper that enters the container's cgroups, namespaces
and security context again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &daemon.ExecRequest{}
		if len(args) > 0 {
			req.HasCommand = true
			req.Command = args[0]
			req.Arguments = args[1:]
		}
		return runExec(req)
	},
}

func runExec(req *daemon.ExecRequest) error {
	conn, err := net.Dial("unix", daemon.SocketPath)
	if err != nil {
		return fmt.Errorf("connect to exec daemon at %s: %w", daemon.SocketPath, err)
	}
	defer conn.Close()

	if err := req.Serialize(conn); err != nil {
		return fmt.Errorf("send exec request: %w", err)
	}
	resp, err := daemon.DeserializeExecResponse(conn)
	if err != nil {
		return fmt.Errorf("read exec ack: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("exec daemon rejected request: %s", resp.Message)
	}

	if restore, rmErr := pty.RawMode(int(os.Stdin.Fd())); rmErr == nil {
		defer restore()
	}

	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(conn, os.Stdin)
		if uc, ok := conn.(interface{ CloseWrite() error }); ok {
			_ = uc.CloseWrite()
		}
		close(done)
	}()
	_, err = io.Copy(os.Stdout, conn)
	<-done
	return err
}
