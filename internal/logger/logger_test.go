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

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func redirect(t *testing.T, format, severity string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	defaultLoggerFactory = &loggerFactory{writer: &buf, format: format, level: new(slog.LevelVar)}
	defaultLogger = slog.New(defaultLoggerFactory.createHandler())
	SetSeverity(severity)
	return &buf
}

func TestSeverityFiltering(t *testing.T) {
	buf := redirect(t, "text", WARNING)

	Infof("hidden")
	require.Empty(t, buf.String())

	Warnf("visible %d", 1)
	require.Contains(t, buf.String(), "severity=WARNING")
	require.Contains(t, buf.String(), "visible 1")
}

func TestJSONFormatUsesSeverityKey(t *testing.T) {
	buf := redirect(t, "json", TRACE)

	Errorf("boom")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, ERROR, decoded["severity"])
	require.Equal(t, "boom", decoded["msg"])
}

func TestOffSuppressesEverything(t *testing.T) {
	buf := redirect(t, "text", OFF)

	Tracef("t")
	Debugf("d")
	Infof("i")
	Warnf("w")
	Errorf("e")

	require.True(t, strings.TrimSpace(buf.String()) == "")
}
