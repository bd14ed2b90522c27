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
package test

import (
	"testing"
)

// ===================================================================
// Valid Models
// ===================================================================

func Test_Model_Toggle(t *testing.T) {
	Check(t, "models/toggle")
}

func Test_Model_Counter(t *testing.T) {
	Check(t, "models/counter")
}

func Test_Model_Handshake(t *testing.T) {
	Check(t, "models/handshake")
}

func Test_Model_Fair(t *testing.T) {
	Check(t, "models/fair")
}

func Test_Model_Delay(t *testing.T) {
	Check(t, "models/delay")
}

// ===================================================================
// Invalid Models
// ===================================================================

func Test_Invalid_UnknownVariable(t *testing.T) {
	CheckInvalid(t, "invalid/unknown_variable")
}

func Test_Invalid_NextInInvar(t *testing.T) {
	CheckInvalid(t, "invalid/next_in_invar")
}

func Test_Invalid_UntilArity(t *testing.T) {
	CheckInvalid(t, "invalid/until_arity")
}

func Test_Invalid_DuplicateVariable(t *testing.T) {
	CheckInvalid(t, "invalid/duplicate_variable")
}

func Test_Invalid_Unbalanced(t *testing.T) {
	CheckInvalid(t, "invalid/unbalanced")
}

func Test_Invalid_InvarInput(t *testing.T) {
	CheckInvalid(t, "invalid/invar_input")
}
