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

package errkind

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapNilReturnsNil(t *testing.T) {
	require.NoError(t, Wrap(Mount, "op", nil))
}

func TestWrapPreservesKindAndMessage(t *testing.T) {
	err := Wrap(Namespace, "setns", errors.New("boom"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "namespace")
	require.Contains(t, err.Error(), "setns")
	require.Contains(t, err.Error(), "boom")
}

func TestWrapWithoutOpOmitsSeparator(t *testing.T) {
	err := Wrap(Protocol, "", errors.New("bad byte"))
	require.Equal(t, "protocol: bad byte", err.Error())
}

func TestIsMatchesWrappedChain(t *testing.T) {
	inner := Wrap(Security, "capset", errors.New("EPERM"))
	outer := fmt.Errorf("entering container: %w", inner)
	require.True(t, Is(outer, Security))
	require.False(t, Is(outer, Mount))
}

func TestIsFalseForPlainError(t *testing.T) {
	require.False(t, Is(errors.New("plain"), Probe))
}

func TestKindStringCoversAllValues(t *testing.T) {
	kinds := []Kind{Probe, Introspection, Namespace, Security, Mount, Protocol, Overlay}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		require.NotEqual(t, "unknown", s)
		require.False(t, seen[s], "duplicate Kind string %q", s)
		seen[s] = true
	}
	require.Equal(t, "unknown", Kind(99).String())
}

func TestUnwrapExposesUnderlyingError(t *testing.T) {
	base := errors.New("base")
	err := Wrap(Overlay, "read", base)
	require.ErrorIs(t, err, base)
}
