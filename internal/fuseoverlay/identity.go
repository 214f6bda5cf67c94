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
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// callerIdentity is the last (uid, gid) pair an OS thread's fsuid/fsgid
// were set to. asUser locks the calling goroutine to its OS thread for the
// whole call, so gettid names the thread whose fsuid/fsgid fn runs under.
type callerIdentity struct {
	uid uint32
	gid uint32
}

var identityCache sync.Map // map[int]callerIdentity, keyed by unix.Gettid()

// asUser runs fn with the calling OS thread's fsuid/fsgid temporarily set to
// uid/gid, so kernel permission checks inside fn (open, mkdir, chmod, ...)
// are evaluated as that user rather than as cntr's own (typically root)
// identity. The calling goroutine stays locked to its OS thread until fn
// returns.
//
// jacobsa/fuse's Op structs carry no per-request caller uid/gid (unlike
// libfuse's fuse_req_ctx()), so every FUSE worker goroutine runs each
// request as the single identity the overlay was mounted for: the
// container's own owning uid/gid, looked up once via the target's id map
// when the overlay starts (see fileSystem.asCaller).
func asUser(uid, gid uint32, fn func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid := unix.Gettid()
	want := callerIdentity{uid: uid, gid: gid}

	if cached, ok := identityCache.Load(tid); ok && cached.(callerIdentity) == want {
		return fn()
	}

	// Order matters: raise/lower gid while we still have the privilege to
	// do so, then switch uid.
	if _, _, errno := unix.Syscall(unix.SYS_SETFSGID, uintptr(gid), 0, 0); errno != 0 {
		return errno
	}
	if _, _, errno := unix.Syscall(unix.SYS_SETFSUID, uintptr(uid), 0, 0); errno != 0 {
		return errno
	}
	identityCache.Store(tid, want)

	return fn()
}
