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

package mountapi

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAvailableIsMemoized exercises the probe's sync.Once path: the raw
// syscall result (ENOSYS vs anything else) must not change between calls
// regardless of what the underlying kernel actually reports.
func TestAvailableIsMemoized(t *testing.T) {
	first := Available()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Available())
	}
}

// TestCloneRootWhenAvailable only runs a real open_tree(2) of "/" when the
// kernel mount API is actually usable and the test has enough privilege;
// otherwise it skips rather than asserting a specific errno, since the exact
// failure mode (ENOSYS, EPERM, EINVAL) depends on the host kernel and
// namespace.
func TestCloneRootWhenAvailable(t *testing.T) {
	if !Available() {
		t.Skip("kernel mount API not available on this host")
	}
	if os.Getuid() != 0 {
		t.Skip("open_tree requires privilege this test process does not have")
	}
	fd, err := Clone("/")
	if err != nil {
		t.Skipf("open_tree failed in this sandbox: %v", err)
	}
	defer func() { _ = os.NewFile(uintptr(fd), "tree").Close() }()
	require.GreaterOrEqual(t, fd, 0)
}
