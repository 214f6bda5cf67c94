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

package procfs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cntr-go/cntr/internal/errkind"
)

// findRootMountOptions returns the mount options field (4th column) of the
// "/" entry of /proc/<pid>/mounts, e.g.
//
//	tmpfs /proc/kcore tmpfs rw,context="system_u:object_r:container_file_t:s0:c125,c287",nosuid,mode=755 0 0
func findRootMountOptions(pid int) (string, error) {
	path := filepath.Join(BasePath(), strconv.Itoa(pid), "mounts")
	f, err := os.Open(path)
	if err != nil {
		return "", errkind.Wrap(errkind.Introspection, "open "+path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 4 && fields[1] == "/" {
			return fields[3], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errkind.Wrap(errkind.Introspection, "read "+path, err)
	}
	return "", errkind.Wrap(errkind.Introspection, path, fmt.Errorf("no / entry found"))
}

// ParseSELinuxMountContext extracts the context="..." option from pid's root
// mount, as reported in /proc/<pid>/mounts. Returns an Introspection error
// if pid's root is not mounted with an SELinux context (e.g. SELinux is
// disabled, or the filesystem does not support it).
func ParseSELinuxMountContext(pid int) (string, error) {
	options, err := findRootMountOptions(pid)
	if err != nil {
		return "", fmt.Errorf("failed to parse mount options of /: %w", err)
	}
	const needle = `context="`
	idx := strings.Index(options, needle)
	if idx < 0 {
		return "", errkind.Wrap(errkind.Introspection, "", fmt.Errorf("no selinux mount option found for / entry: %s", options))
	}
	rest := options[idx+len(needle):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", errkind.Wrap(errkind.Introspection, "", fmt.Errorf("missing closing quote in selinux context: %s", options))
	}
	return rest[:end], nil
}
