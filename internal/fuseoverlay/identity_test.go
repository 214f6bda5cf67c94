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

package fuseoverlay

import (
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/stretchr/testify/require"
)

// TestAsUserRunsFnAndCachesIdentity exercises the thread-local cache path:
// calling asUser twice in a row with the same (uid, gid) runs fn both
// times, and while fn runs the calling thread's cache entry holds that
// identity.
func TestAsUserRunsFnAndCachesIdentity(t *testing.T) {
	if os.Getuid() != 0 {
		t.Skip("setfsuid/setfsgid require root in this sandbox")
	}

	calls := 0
	for i := 0; i < 2; i++ {
		err := asUser(0, 0, func() error {
			calls++
			cached, ok := identityCache.Load(unix.Gettid())
			require.True(t, ok)
			require.Equal(t, callerIdentity{uid: 0, gid: 0}, cached)
			return nil
		})
		require.NoError(t, err)
	}
	require.Equal(t, 2, calls)
}

// TestFileSystemAsCallerAndAsRootUseDistinctIdentities verifies the
// fileSystem helpers forward to the expected uid/gid, as recorded in the
// thread's identity cache while fn runs, without requiring a live FUSE
// mount.
func TestFileSystemAsCallerAndAsRootUseDistinctIdentities(t *testing.T) {
	if os.Getuid() != 0 {
		t.Skip("setfsuid/setfsgid require root in this sandbox")
	}

	fs := &fileSystem{uid: 1000, gid: 1000}

	ran := false
	require.NoError(t, fs.asCaller(func() error {
		ran = true
		cached, ok := identityCache.Load(unix.Gettid())
		require.True(t, ok)
		require.Equal(t, callerIdentity{uid: 1000, gid: 1000}, cached)
		return nil
	}))
	require.True(t, ran)

	require.NoError(t, fs.asRoot(func() error {
		cached, ok := identityCache.Load(unix.Gettid())
		require.True(t, ok)
		require.Equal(t, callerIdentity{uid: 0, gid: 0}, cached)
		return nil
	}))
}
