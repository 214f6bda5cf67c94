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

// Package container resolves an operator-supplied container identifier to
// a host-visible process id by trying, in order, one probe per supported
// container runtime. Each probe shells out to that runtime's own CLI (or
// scans /proc directly); this package is explicitly a non-core
// collaborator behind the Resolver interface, not part of the core
// subsystems that do namespace entry and overlay mounting.
package container

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cntr-go/cntr/internal/config"
	"github.com/cntr-go/cntr/internal/errkind"
)

// Resolver is the interface every runtime probe implements: find the
// host-visible pid of the process identified by id, and optionally check
// that whatever external tool the probe shells out to is present.
type Resolver interface {
	Lookup(ctx context.Context, id string) (int, error)
	CheckRequiredTools() error
}

// registry maps a configured runtime kind to its probe implementation.
var registry = map[config.RuntimeKind]Resolver{
	config.RuntimePID:        pidProbe{},
	config.RuntimeDocker:     dockerProbe{},
	config.RuntimePodman:     podmanProbe{},
	config.RuntimeContainerd: containerdProbe{},
	config.RuntimeLXC:        lxcProbe{},
	config.RuntimeLXD:        lxdProbe{},
	config.RuntimeNspawn:     nspawnProbe{},
	config.RuntimeRkt:        rktProbe{},
	config.RuntimeCommand:    commandProbe{},
}

// Resolve tries each runtime in order and returns the pid from the first
// one that succeeds. If every probe fails, the returned error names each
// runtime and its failure, exactly matching the original tool's
// "no suitable container found, got the following errors:" message.
func Resolve(ctx context.Context, id string, order []config.RuntimeKind) (int, error) {
	if len(order) == 0 {
		order = config.DefaultRuntimeOrder
	}

	var failures strings.Builder
	failures.WriteString("no suitable container found, got the following errors:")
	for _, kind := range order {
		probe, ok := registry[kind]
		if !ok {
			fmt.Fprintf(&failures, "\n%s: unknown runtime probe", kind)
			continue
		}
		pid, err := probe.Lookup(ctx, id)
		if err == nil {
			return pid, nil
		}
		fmt.Fprintf(&failures, "\n%s: %s", kind, err)
	}
	return 0, errkind.Wrap(errkind.Probe, "resolve "+id, fmt.Errorf("%s", failures.String()))
}

// CheckRequiredTools fans out CheckRequiredTools across every probe
// concurrently (the one place resolving a container calls for errgroup-style
// fan-out; Lookup itself always stays sequential, since "first success
// wins" requires trying probes in a fixed order).
func CheckRequiredTools(ctx context.Context, order []config.RuntimeKind) error {
	if len(order) == 0 {
		order = config.DefaultRuntimeOrder
	}
	g, _ := errgroup.WithContext(ctx)
	results := make([]error, len(order))
	for i, kind := range order {
		i, kind := i, kind
		g.Go(func() error {
			probe, ok := registry[kind]
			if !ok {
				results[i] = fmt.Errorf("%s: unknown runtime probe", kind)
				return nil
			}
			if err := probe.CheckRequiredTools(); err != nil {
				results[i] = fmt.Errorf("%s: %w", kind, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var problems []string
	for _, err := range results {
		if err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("missing tools:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
