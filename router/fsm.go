// Copyright 2025 The Real Router Authors
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

package router

import "sync"

// LifecycleState is one of the router's lifecycle states (spec §3).
type LifecycleState int

const (
	StateIdle LifecycleState = iota
	StateStarting
	StateReady
	StateTransitioning
	StateDisposed
)

func (s LifecycleState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateReady:
		return "READY"
	case StateTransitioning:
		return "TRANSITIONING"
	case StateDisposed:
		return "DISPOSED"
	default:
		return "UNKNOWN"
	}
}

// LifecycleEvent drives a LifecycleState transition.
type LifecycleEvent int

const (
	EventStart LifecycleEvent = iota
	EventStarted
	EventFail
	EventStop
	EventNavigate
	EventComplete
	EventCancel
	EventDispose
)

// transitions is the FSM table from spec §3. A (state, event) pair
// absent from the table is a no-op: the FSM does not move, and the
// caller (the facade) is expected to surface that as a typed error.
var transitions = map[LifecycleState]map[LifecycleEvent]LifecycleState{
	StateIdle: {
		EventStart: StateStarting,
	},
	StateStarting: {
		EventStarted: StateReady,
		EventFail:    StateIdle,
		EventStop:    StateIdle,
	},
	StateReady: {
		EventNavigate: StateTransitioning,
		EventStop:     StateIdle,
		EventDispose:  StateDisposed,
	},
	StateTransitioning: {
		EventComplete: StateReady,
		EventCancel:   StateReady,
		EventFail:     StateReady,
		EventStop:     StateIdle,
	},
}

// fsm is the RouterFSM component (C10): the sole authority for "is
// active", "can navigate now", "is transitioning".
type fsm struct {
	mu    sync.RWMutex
	state LifecycleState
}

func newFSM() *fsm {
	return &fsm{state: StateIdle}
}

// Current returns the current lifecycle state.
func (f *fsm) Current() LifecycleState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Send applies event if the current state allows it, returning the new
// state and whether the transition was accepted. An unaccepted send
// leaves the FSM untouched.
func (f *fsm) Send(event LifecycleEvent) (LifecycleState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, ok := transitions[f.state][event]
	if !ok {
		return f.state, false
	}
	f.state = next
	return next, true
}

// IsTransitioning reports whether the FSM is in TRANSITIONING.
func (f *fsm) IsTransitioning() bool {
	return f.Current() == StateTransitioning
}

// IsReady reports whether the FSM is in READY.
func (f *fsm) IsReady() bool {
	return f.Current() == StateReady
}

// IsDisposed reports whether the FSM is in DISPOSED.
func (f *fsm) IsDisposed() bool {
	return f.Current() == StateDisposed
}

// ForceDispose unconditionally moves the FSM to DISPOSED, bypassing the
// transition table. dispose() must succeed from any state, including
// mid-transition, where the table has no direct edge to DISPOSED.
func (f *fsm) ForceDispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateDisposed
}
