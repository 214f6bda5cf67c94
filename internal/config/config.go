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

// Package config binds the cobra command-line flags of cmd/cntr to viper,
// then decodes them into a single struct via mapstructure, with a decode
// hook translating the one field whose wire shape differs from its flag
// shape (the comma separated probe order becoming a typed slice).
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RuntimeKind names one of the container-runtime probes cmd/cntr tries in
// order. It is its own type (rather than a bare string) so the mapstructure
// decode hook below can target it specifically, following a
// LogSeverity/Protocol newtype-plus-hook pattern.
type RuntimeKind string

const (
	RuntimePID        RuntimeKind = "pid"
	RuntimeDocker     RuntimeKind = "docker"
	RuntimePodman     RuntimeKind = "podman"
	RuntimeContainerd RuntimeKind = "containerd"
	RuntimeLXC        RuntimeKind = "lxc"
	RuntimeLXD        RuntimeKind = "lxd"
	RuntimeNspawn     RuntimeKind = "nspawn"
	RuntimeRkt        RuntimeKind = "rkt"
	RuntimeCommand    RuntimeKind = "command"
)

// DefaultRuntimeOrder is tried when the operator does not specify
// --runtimes: cheapest/most specific probes first, "command" last since it
// is the least precise (a substring scan over every process's cmdline).
var DefaultRuntimeOrder = []RuntimeKind{
	RuntimePID, RuntimeDocker, RuntimePodman, RuntimeContainerd,
	RuntimeLXC, RuntimeLXD, RuntimeNspawn, RuntimeRkt, RuntimeCommand,
}

// Config is the full set of options cmd/cntr's persistent flags populate,
// decoded from viper once per invocation.
type Config struct {
	ProcPath    string        `mapstructure:"proc-path"`
	BaseDir     string        `mapstructure:"base-dir"`
	Runtimes    []RuntimeKind `mapstructure:"runtimes"`
	LogFormat   string        `mapstructure:"log-format"`
	LogFile     string        `mapstructure:"log-file"`
	LogSeverity string        `mapstructure:"log-severity"`
	Trace       bool          `mapstructure:"trace"`
}

var runtimeKindsType = reflect.TypeOf([]RuntimeKind(nil))

// runtimeKindsHook decodes a comma-separated "docker,pid" string (as
// produced by a --runtimes flag or config file value) into a []RuntimeKind,
// following a hookFunc switch-on-target-type shape.
func runtimeKindsHook() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != runtimeKindsType {
			return data, nil
		}
		s, _ := data.(string)
		if strings.TrimSpace(s) == "" {
			return []RuntimeKind{}, nil
		}
		var out []RuntimeKind
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, RuntimeKind(part))
		}
		return out, nil
	}
}

// decodeHook composes the one custom hook above with mapstructure's own
// default string-to-slice/duration hooks.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		runtimeKindsHook(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// BindFlags registers every persistent flag cmd/cntr's root command
// exposes with viper.
func BindFlags(flags *pflag.FlagSet) error {
	for _, name := range []string{
		"proc-path", "base-dir", "runtimes",
		"log-format", "log-file", "log-severity", "trace",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load decodes the bound viper state into a Config, applying defaults for
// anything left unset.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if cfg.ProcPath == "" {
		cfg.ProcPath = "/proc"
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = "/var/lib/cntr"
	}
	if len(cfg.Runtimes) == 0 {
		cfg.Runtimes = DefaultRuntimeOrder
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogSeverity == "" {
		cfg.LogSeverity = "INFO"
	}
	return &cfg, nil
}
