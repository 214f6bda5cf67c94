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
	"github.com/spf13/cobra"

	"github.com/cntr-go/cntr/internal/daemon"
)

// execHelperCmd is never invoked directly by an operator: internal/daemon's
// Execute re-execs the current binary with this hidden subcommand to run a
// single command inside an already-resolved container, since Go cannot
// safely fork() without exec() once its runtime has started.
var execHelperCmd = &cobra.Command{
	Use:    "__exec-helper",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return daemon.RunHelper()
	},
}
