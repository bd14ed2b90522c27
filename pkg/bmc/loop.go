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
	"math"
	"strconv"
	"strings"
)

// Loop identifies the start of a back-loop on a bounded path.  That is, a path
// of length k with loop l is one where the state at time k repeats the state
// at time l.  Besides absolute times, a loop can be relative to the bound
// (i.e. negative, where -1 identifies k-1), or one of two sentinels.
type Loop int

const (
	// NoLoopback indicates a path without a back-loop.
	NoLoopback Loop = math.MaxInt - 1
	// AllLoopbacks indicates a path which may loop back to any earlier time.
	AllLoopbacks Loop = math.MaxInt
)

// IsNoLoopback checks whether this is the no-loop sentinel.
func (l Loop) IsNoLoopback() bool {
	return l == NoLoopback
}

// IsAllLoopbacks checks whether this is the all-loops sentinel.
func (l Loop) IsAllLoopbacks() bool {
	return l == AllLoopbacks
}

// IsSingle checks whether this identifies a single (absolute or relative)
// loop, rather than a sentinel.
func (l Loop) IsSingle() bool {
	return l != NoLoopback && l != AllLoopbacks
}

// IsRelative checks whether this is a loop relative to the bound.
func (l Loop) IsRelative() bool {
	return l < 0
}

// Absolute converts a relative loop into an absolute loop for a given bound.
// Absolute loops and sentinels are returned unchanged.
func (l Loop) Absolute(bound int) Loop {
	if l.IsRelative() {
		return Loop(bound) + l
	}
	//
	return l
}

func (l Loop) String() string {
	switch l {
	case NoLoopback:
		return "none"
	case AllLoopbacks:
		return "all"
	default:
		return strconv.Itoa(int(l))
	}
}

// ParseLoop parses a loop specification.  This is either a (possibly negative)
// integer, or one of the sentinels "*", "all" or "all loops" (for all
// loopbacks) and "x", "no", "none" or "no loop" (for no loopback).
func ParseLoop(text string) (Loop, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "*", "all", "all loops":
		return AllLoopbacks, nil
	case "x", "no", "none", "no loop":
		return NoLoopback, nil
	}
	//
	n, err := strconv.Atoi(strings.TrimSpace(text))
	//
	if err != nil || Loop(n) == NoLoopback || Loop(n) == AllLoopbacks {
		return 0, fmt.Errorf("invalid loop \"%s\"", text)
	}
	//
	return Loop(n), nil
}

// CheckConsistency checks that a given bound and loop make sense together.
// That is, the bound is non-negative and the loop is either a sentinel, or
// identifies a time between 0 and the bound (inclusive).
func CheckConsistency(bound int, loop Loop) error {
	switch {
	case bound < 0:
		return &ArgumentError{"bound", fmt.Sprintf("bound %d is negative", bound)}
	case !loop.IsSingle():
		return nil
	case loop.Absolute(bound) < 0:
		return &ArgumentError{"loop", fmt.Sprintf("relative loop %d exceeds bound %d", loop, bound)}
	case loop.Absolute(bound) > Loop(bound):
		return &ArgumentError{"loop", fmt.Sprintf("loop %d exceeds bound %d", loop, bound)}
	}
	//
	return nil
}

// Successor returns the time following a given time on a path of length k with
// loop l.  Without a loop, this is simply the next time (and callers must
// themselves check the bound is not exceeded).  Otherwise, the path wraps from
// k-1 back to l, since walking k steps along a k-l loop returns to l.
func Successor(k int, l Loop, time int) int {
	if l.IsNoLoopback() || time < k-1 {
		return time + 1
	}
	//
	return int(l)
}

// SuccessorOf is a checked variant of Successor.  This reports false when
// there is no successor (i.e. the end of a path without a loop is reached),
// and an error when the arguments are inconsistent.
func SuccessorOf(time int, k int, l Loop) (int, bool, error) {
	if err := CheckConsistency(k, l); err != nil {
		return 0, false, err
	} else if time < 0 || time > k {
		return 0, false, &ArgumentError{"time", fmt.Sprintf("time %d outside of [0,%d]", time, k)}
	} else if l.IsAllLoopbacks() {
		return 0, false, &ArgumentError{"loop", "successor undefined for all loopbacks"}
	} else if l.IsNoLoopback() && time == k {
		return 0, false, nil
	}
	//
	return Successor(k, l.Absolute(k), time), true, nil
}
