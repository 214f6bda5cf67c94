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
	"fmt"
	"net"
	"os"

	"github.com/cntr-go/cntr/internal/errkind"
	"github.com/cntr-go/cntr/internal/logger"
)

// SocketPath is the fixed location of the exec daemon's listening socket,
// always addressed from inside the entered mount namespace. Because the
// staging tmpfs is private per container, there is no path collision
// between daemons serving different containers.
const SocketPath = "/var/lib/cntr/.exec.sock"

// Daemon accepts follow-up exec requests for one already-entered container.
// Each request is run by a re-executed helper that enters the container's
// cgroups, namespaces and security context again before running the command.
type Daemon struct {
	containerPID int
	listener     *net.UnixListener
}

// Listen binds and listens on SocketPath, removing any stale socket file
// left behind by a previous run, matching DaemonSocket::bind_internal.
func Listen(containerPID int) (*Daemon, error) {
	_ = os.Remove(SocketPath)

	addr, err := net.ResolveUnixAddr("unix", SocketPath)
	if err != nil {
		return nil, errkind.Wrap(errkind.Protocol, "resolve "+SocketPath, err)
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, errkind.Wrap(errkind.Protocol, "listen "+SocketPath, err)
	}
	return &Daemon{containerPID: containerPID, listener: ln}, nil
}

// Close stops accepting connections and removes the socket file.
func (d *Daemon) Close() error {
	err := d.listener.Close()
	_ = os.Remove(SocketPath)
	return err
}

// Serve accepts connections one at a time, handling each to completion
// before accepting the next — the accept loop is single-goroutine-serial.
func (d *Daemon) Serve() error {
	for {
		conn, err := d.listener.AcceptUnix()
		if err != nil {
			if isClosed(err) {
				return nil
			}
			return errkind.Wrap(errkind.Protocol, "accept", err)
		}
		if err := d.handle(conn); err != nil {
			logger.Warnf("failed to handle exec request: %v", err)
		}
	}
}

// handle reads one ExecRequest off conn, immediately acknowledges it, then
// runs the command using conn itself as the combined stdin/stdout/stderr
// pipe, matching DaemonSocket::handle_request's deserialize-then-ack-then-
// execute sequence.
func (d *Daemon) handle(conn *net.UnixConn) error {
	defer conn.Close()

	req, err := DeserializeExecRequest(conn)
	if err != nil {
		return fmt.Errorf("deserialize exec request: %w", err)
	}

	ack := &ExecResponse{OK: true}
	if err := ack.Serialize(conn); err != nil {
		return fmt.Errorf("send ack: %w", err)
	}

	if err := Execute(d.containerPID, req, conn, conn, conn, nil); err != nil {
		return fmt.Errorf("execute in container: %w", err)
	}
	return nil
}

func isClosed(err error) bool {
	return err != nil && (err.Error() == "use of closed network connection" ||
		os.IsNotExist(err))
}
