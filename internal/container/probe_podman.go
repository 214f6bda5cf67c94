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

package container

import "context"

// podmanProbe shells out to `podman inspect`, grounded on
// original_source/src/container/podman.rs, which reuses docker's own
// output parser against podman's "{{.State.Running}};{{.State.Pid}}"
// template (a boolean rather than docker's status string).
type podmanProbe struct{}

func (podmanProbe) Lookup(ctx context.Context, id string) (int, error) {
	return runInspectStyle(ctx, "podman",
		[]string{"inspect", "--format", "{{.State.Running}};{{.State.Pid}}", id}, id, "true")
}

func (podmanProbe) CheckRequiredTools() error { return which("podman") }
