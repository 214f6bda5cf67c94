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

// Package procfs reads and interprets the host's procfs: namespace
// entries, process status, id maps, cgroups, mountinfo and SELinux mount
// context. The base path is configurable so tests can point it at fixture
// directories.
package procfs

import "os"

// BasePath returns the procfs mount point to read from, honoring
// CNTR_PROC, defaulting to /proc.
func BasePath() string {
	if p := os.Getenv("CNTR_PROC"); p != "" {
		return p
	}
	return "/proc"
}
