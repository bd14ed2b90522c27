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
package bmc

import (
	"fmt"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/ltl"
)

// ArgumentError indicates an encoding was requested with arguments which make
// no sense, such as a negative bound or a loop beyond the bound.
type ArgumentError struct {
	// Name of the offending argument
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Argument, e.Reason)
}

// UnsupportedOperatorError indicates a formula contains an operator which the
// encoders do not support, such as a past-time operator.
type UnsupportedOperatorError struct {
	Formula *ltl.Formula
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator %s in %s", e.Formula.Op(), e.Formula)
}

// ConsistencyError indicates an attempt to bind a key of the cache to an
// expression different from the one it is already bound to.  This can only
// arise from a defect.
type ConsistencyError struct {
	Key      Key
	Cached   be.Expr
	Computed be.Expr
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent encoding of %s (time %d, bound %d, loop %s, offset %d)",
		e.Key.Formula, e.Key.Time, e.Key.Bound, e.Key.Loop, e.Key.Offset)
}
