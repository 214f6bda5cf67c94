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
	"context"

	"github.com/spf13/cobra"

	"github.com/cntr-go/cntr/internal/attach"
)

var attachCmd = &cobra.Command{
	Use:   "attach <container> [command] [args...]",
	Short: "Attach an interactive shell inside a container",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := attach.Options{
			ContainerID: args[0],
			Runtimes:    cfg.Runtimes,
		}
		if len(args) > 1 {
			opts.Command = args[1]
			opts.Arguments = args[2:]
		}
		return attach.Run(context.Background(), opts)
	},
}
