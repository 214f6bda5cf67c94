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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cntr-go/cntr/internal/config"
	"github.com/cntr-go/cntr/internal/logger"
	"github.com/cntr-go/cntr/internal/telemetry"
)

var (
	bindErr error
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cntr",
	Short: "Enter a container's namespaces while keeping the host's tools on PATH",
	Long: `cntr attaches an interactive shell inside a running container's
namespaces without installing a debugger into the container image itself:
the container's own filesystem stays reachable at /var/lib/cntr while the
host's binaries, libraries and package manager remain on PATH.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		logger.SetSeverity(cfg.LogSeverity)
		logger.SetFormat(cfg.LogFormat)
		if cfg.LogFile != "" {
			if err := logger.InitLogFile(cfg.LogFile, logger.DefaultRotateConfig()); err != nil {
				return err
			}
		}
		if cfg.Trace {
			if err := telemetry.Init(os.Stderr); err != nil {
				return fmt.Errorf("failed to initialize tracing: %w", err)
			}
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("proc-path", "/proc", "path to the procfs mount to read container state from")
	flags.String("base-dir", "/var/lib/cntr", "mountpoint under which the container's own root is exposed")
	flags.String("runtimes", "", "comma-separated container runtime probe order (default: try every known runtime)")
	flags.String("log-format", "text", "log output format: text or json")
	flags.String("log-file", "", "write logs to this file instead of stderr (rotated)")
	flags.String("log-severity", "INFO", "minimum log severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF")
	flags.Bool("trace", false, "emit OpenTelemetry spans for container entry and exec requests")
	bindErr = config.BindFlags(flags)

	rootCmd.AddCommand(attachCmd, execCmd, probeCmd, execHelperCmd)
}

func main() {
	defer func() {
		_ = telemetry.Shutdown(rootCmd.Context())
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
