// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package util

import (
	"testing"
	"time"

	"github.com/consensys/go-bmc/pkg/util/assert"
)

func Test_PerfStats_01(t *testing.T) {
	stats := NewPerfStats()
	before := stats.Elapsed()
	//
	time.Sleep(time.Millisecond)
	assert.True(t, stats.Elapsed() >= before)
	assert.True(t, stats.Elapsed() >= time.Millisecond)
	// Logging only reads the snapshot.
	stats.Log("test")
	assert.True(t, stats.Elapsed() >= time.Millisecond)
}
