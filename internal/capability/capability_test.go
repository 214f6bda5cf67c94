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

package capability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitsToDropExcludesEffectiveAndChrootPtrace(t *testing.T) {
	effective := uint64(1<<0 | 1<<5)
	drop := bitsToDrop(effective, 10)
	require.NotContains(t, drop, uint(0))
	require.NotContains(t, drop, uint(5))
	require.NotContains(t, drop, uint(CapSysChroot))
	require.Contains(t, drop, uint(1))
	require.Contains(t, drop, uint(9))
}

func TestBitsToDropRespectsLastCap(t *testing.T) {
	drop := bitsToDrop(0, 3)
	require.Equal(t, []uint{0, 1, 2, 3}, drop)
}
