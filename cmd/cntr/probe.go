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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cntr-go/cntr/internal/container"
)

var probeCmd = &cobra.Command{
	Use:    "probe",
	Short:  "Check that every configured container runtime's external tools are present",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := container.CheckRequiredTools(context.Background(), cfg.Runtimes); err != nil {
			return err
		}
		fmt.Println("all configured runtime probes have their required tools")
		return nil
	},
}
