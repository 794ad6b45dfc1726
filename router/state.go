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

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/greydragon888/real-router-sub000/contract"
)

// stateStore is the StateStore component (C9): current/previous State,
// and the monotonic id counter that stamps every new one.
type stateStore struct {
	mu       sync.RWMutex
	current  *contract.State
	previous *contract.State
	nextID   atomic.Int64
}

func newStateStore() *stateStore {
	return &stateStore{}
}

// makeState builds a new, independently-owned State. A non-zero forceID
// overrides the monotonic counter; with 0 the next counter value is
// used, so every state built that way gets a fresh id.
func (s *stateStore) makeState(name string, params map[string]any, path string, meta *contract.Meta, forceID int64) *contract.State {
	id := forceID
	if id == 0 {
		id = s.nextID.Add(1)
	}
	st := &contract.State{ID: id, Name: name, Params: params, Path: path, Meta: meta}
	return st.Clone()
}

// makeNotFoundState builds the reserved sentinel state for an
// unmatched path, per spec §6.
func (s *stateStore) makeNotFoundState(path string, opts contract.NavigationOptions) *contract.State {
	return s.makeState(contract.UnknownRouteName, map[string]any{"path": path}, path, &contract.Meta{Options: opts}, 0)
}

// Current returns a defensive copy of the current state, or nil.
func (s *stateStore) Current() *contract.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Previous returns a defensive copy of the previous state, or nil.
func (s *stateStore) Previous() *contract.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previous.Clone()
}

// SetState commits to as the new current state, shifting the old
// current into previous. Called exactly once per successful,
// non-cancelled transition (invariant 1, spec §8).
func (s *stateStore) SetState(to *contract.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previous = s.current
	s.current = to.Clone()
}

// Reset clears both current and previous.
func (s *stateStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.previous = nil
}

// areStatesEqual compares a and b by name and, depending on
// ignoreQueryParams, either every param (deep equality) or only the
// params each state's own Meta records as non-query. Two nil states are
// equal; a nil and non-nil state are not.
func areStatesEqual(a, b *contract.State, ignoreQueryParams bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name {
		return false
	}
	if !ignoreQueryParams {
		return reflect.DeepEqual(a.Params, b.Params)
	}

	skip := func(st *contract.State, key string) bool {
		if st.Meta == nil || st.Meta.Params == nil {
			return false
		}
		kind, ok := st.Meta.Params[key]
		return ok && kind == contract.ParamKindQuery
	}

	keys := make(map[string]bool)
	for k := range a.Params {
		if !skip(a, k) {
			keys[k] = true
		}
	}
	for k := range b.Params {
		if !skip(b, k) {
			keys[k] = true
		}
	}
	for k := range keys {
		if !reflect.DeepEqual(a.Params[k], b.Params[k]) {
			return false
		}
	}
	return true
}
