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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greydragon888/real-router-sub000/contract"
)

func TestStateStoreMakeStateAssignsMonotonicID(t *testing.T) {
	s := newStateStore()
	a := s.makeState("home", nil, "/home", &contract.Meta{}, 0)
	b := s.makeState("home", nil, "/home", &contract.Meta{}, 0)
	assert.Less(t, a.ID, b.ID)
}

func TestStateStoreMakeStateForceIDOverridesCounter(t *testing.T) {
	s := newStateStore()
	st := s.makeState("home", nil, "/home", &contract.Meta{}, 99)
	assert.Equal(t, int64(99), st.ID)
}

func TestStateStoreSetStateShiftsCurrentToPrevious(t *testing.T) {
	s := newStateStore()
	first := s.makeState("home", nil, "/home", &contract.Meta{}, 0)
	s.SetState(first)
	assert.Nil(t, s.Previous())
	assert.Equal(t, "home", s.Current().Name)

	second := s.makeState("users", nil, "/users", &contract.Meta{}, 0)
	s.SetState(second)
	assert.Equal(t, "home", s.Previous().Name)
	assert.Equal(t, "users", s.Current().Name)
}

func TestStateStoreCurrentReturnsDefensiveCopy(t *testing.T) {
	s := newStateStore()
	st := s.makeState("home", map[string]any{"a": 1}, "/home", &contract.Meta{}, 0)
	s.SetState(st)

	got := s.Current()
	got.Params["a"] = 999
	assert.Equal(t, 1, s.Current().Params["a"])
}

func TestStateStoreResetClearsBoth(t *testing.T) {
	s := newStateStore()
	s.SetState(s.makeState("home", nil, "/home", &contract.Meta{}, 0))
	s.SetState(s.makeState("users", nil, "/users", &contract.Meta{}, 0))

	s.Reset()
	assert.Nil(t, s.Current())
	assert.Nil(t, s.Previous())
}

func TestMakeNotFoundStateUsesReservedName(t *testing.T) {
	s := newStateStore()
	st := s.makeNotFoundState("/nope", contract.NavigationOptions{})
	assert.True(t, st.IsUnknownRoute())
	assert.Equal(t, "/nope", st.Params["path"])
}

func TestAreStatesEqualByNameAndParams(t *testing.T) {
	a := &contract.State{Name: "users.view", Params: map[string]any{"id": "1"}}
	b := &contract.State{Name: "users.view", Params: map[string]any{"id": "1"}}
	c := &contract.State{Name: "users.view", Params: map[string]any{"id": "2"}}

	assert.True(t, areStatesEqual(a, b, false))
	assert.False(t, areStatesEqual(a, c, false))
}

func TestAreStatesEqualNilHandling(t *testing.T) {
	assert.True(t, areStatesEqual(nil, nil, false))
	assert.False(t, areStatesEqual(nil, &contract.State{}, false))
}

func TestAreStatesEqualIgnoresQueryParamsWhenRequested(t *testing.T) {
	a := &contract.State{
		Name:   "search",
		Params: map[string]any{"q": "go", "page": "1"},
		Meta:   &contract.Meta{Params: map[string]contract.ParamKind{"page": contract.ParamKindQuery}},
	}
	b := &contract.State{
		Name:   "search",
		Params: map[string]any{"q": "go", "page": "2"},
		Meta:   &contract.Meta{Params: map[string]contract.ParamKind{"page": contract.ParamKindQuery}},
	}

	require.False(t, areStatesEqual(a, b, false))
	assert.True(t, areStatesEqual(a, b, true))
}
