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

package route

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greydragon888/real-router-sub000/contract"
	"github.com/greydragon888/real-router-sub000/routererr"
)

// fakeMatcher/fakeBuilder are minimal stand-ins for the injected
// collaborators, exercising the Store logic in isolation from any
// particular matching strategy. When several patterns match, the one
// with the fewest params wins, so a static segment beats a param.
type fakeMatcher struct{}

func (fakeMatcher) Match(candidates map[string]string, path string) (string, map[string]string, bool) {
	bestName, bestParams, found := "", map[string]string(nil), false
	for name, pattern := range candidates {
		params := map[string]string{}
		pParts := strings.Split(strings.Trim(pattern, "/"), "/")
		pathParts := strings.Split(strings.Trim(path, "/"), "/")
		if len(pParts) != len(pathParts) {
			continue
		}
		ok := true
		for i, seg := range pParts {
			switch {
			case strings.HasPrefix(seg, ":"):
				params[seg[1:]] = pathParts[i]
			case seg != pathParts[i]:
				ok = false
			}
		}
		if ok && (!found || len(params) < len(bestParams)) {
			bestName, bestParams, found = name, params, true
		}
	}
	return bestName, bestParams, found
}

type fakeBuilder struct{}

func (fakeBuilder) Build(pattern string, params map[string]string) (string, error) {
	out := pattern
	for k, v := range params {
		out = strings.ReplaceAll(out, ":"+k, v)
	}
	return out, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New("", fakeMatcher{}, fakeBuilder{})
	err := s.AddRoutes([]Definition{
		{Name: "home", Path: "/home"},
		{
			Name: "users", Path: "/users",
			Children: []Definition{
				{Name: "view", Path: "/:id"},
				{Name: "list", Path: "/list?sort"},
			},
		},
	}, "")
	require.NoError(t, err)
	return s
}

func TestAddRoutesRejectsDuplicateName(t *testing.T) {
	s := newTestStore(t)
	err := s.AddRoutes([]Definition{{Name: "home", Path: "/dup"}}, "")
	require.Error(t, err)
	code, ok := routererr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, routererr.CodeInvalidArgument, code)
}

func TestAddRoutesRejectsInvalidName(t *testing.T) {
	s := New("", fakeMatcher{}, fakeBuilder{})
	err := s.AddRoutes([]Definition{{Name: "1bad", Path: "/x"}}, "")
	require.Error(t, err)
}

func TestBuildPathSubstitutesParams(t *testing.T) {
	s := newTestStore(t)
	p, err := s.BuildPath("users.view", map[string]any{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/users/42", p)
}

func TestBuildPathUnknownRoute(t *testing.T) {
	s := newTestStore(t)
	_, err := s.BuildPath("nope", nil)
	require.Error(t, err)
}

func TestMatchPathResolvesRouteAndParams(t *testing.T) {
	s := newTestStore(t)
	res, err := s.MatchPath("/users/7")
	require.NoError(t, err)
	assert.Equal(t, "users.view", res.Name)
	assert.Equal(t, "7", res.Params["id"])
	assert.False(t, res.Redirected)
}

func TestMatchPathQueryParams(t *testing.T) {
	s := newTestStore(t)
	res, err := s.MatchPath("/users/list?sort=name")
	require.NoError(t, err)
	assert.Equal(t, "name", res.Params["sort"])
}

func TestMatchPathNoMatch(t *testing.T) {
	s := newTestStore(t)
	_, err := s.MatchPath("/nowhere")
	require.Error(t, err)
	assert.True(t, routererr.Is(err, routererr.CodeRouteNotFound))
}

func TestRemoveRouteRefusedWhileTransitioning(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RemoveRoute("home", true, "")
	require.Error(t, err)
}

func TestRemoveRouteRefusedForActiveRoute(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RemoveRoute("users", false, "users.view")
	require.Error(t, err)
}

func TestRemoveRouteSucceeds(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RemoveRoute("home", false, "")
	require.NoError(t, err)
	assert.False(t, s.HasRoute("home"))
}

func TestUpdateRouteForwardTo(t *testing.T) {
	s := newTestStore(t)
	target := "users.list"
	err := s.UpdateRoute("home", RouteUpdate{ForwardTo: &target})
	require.NoError(t, err)
	got, ok := s.cfg.StaticForward("home")
	require.True(t, ok)
	assert.Equal(t, target, got)
}

func TestUpdateRouteUnknownRoute(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateRoute("nope", RouteUpdate{})
	require.Error(t, err)
}

func TestIsActiveRouteStrictEquality(t *testing.T) {
	s := newTestStore(t)
	active := &contract.State{Name: "users.view", Params: map[string]any{"id": "7"}}
	assert.True(t, s.IsActiveRoute("users.view", map[string]any{"id": "7"}, true, false, active))
	assert.False(t, s.IsActiveRoute("users.view", map[string]any{"id": "8"}, true, false, active))
}

func TestIsActiveRouteDescendant(t *testing.T) {
	s := newTestStore(t)
	active := &contract.State{Name: "users.view", Params: map[string]any{"id": "7"}}
	assert.True(t, s.IsActiveRoute("users", nil, false, false, active))
	assert.False(t, s.IsActiveRoute("users.view", nil, false, false, active))
}

func TestIsActiveRouteEmptyName(t *testing.T) {
	s := newTestStore(t)
	active := &contract.State{Name: "users.view"}
	assert.False(t, s.IsActiveRoute("", nil, false, false, active))
}

func TestTransitionPathComputesIntersectionAndLists(t *testing.T) {
	intersection, toActivate, toDeactivate := TransitionPath("a.b.c", "a.b.d")
	assert.Equal(t, "a.b", intersection)
	assert.Equal(t, []string{"a.b.c"}, toActivate)
	assert.Equal(t, []string{"a.b.d"}, toDeactivate)
}

func TestTransitionPathNoPriorState(t *testing.T) {
	intersection, toActivate, toDeactivate := TransitionPath("a.b", "")
	assert.Equal(t, "", intersection)
	assert.Equal(t, []string{"a", "a.b"}, toActivate)
	assert.Nil(t, toDeactivate)
}

func TestShouldUpdateNodeReload(t *testing.T) {
	s := newTestStore(t)
	fn := s.ShouldUpdateNode("users")
	to := &contract.State{Name: "users.view", Meta: &contract.Meta{Options: contract.NavigationOptions{Reload: true}}}
	assert.True(t, fn(to, nil))
}

func TestShouldUpdateNodeOutsidePath(t *testing.T) {
	s := newTestStore(t)
	fn := s.ShouldUpdateNode("home")
	to := &contract.State{Name: "users.view"}
	from := &contract.State{Name: "users.list"}
	assert.False(t, fn(to, from))
}

func TestCloneIsIndependent(t *testing.T) {
	s := newTestStore(t)
	clone := s.Clone()
	_, err := clone.RemoveRoute("home", false, "")
	require.NoError(t, err)
	assert.True(t, s.HasRoute("home"))
	assert.False(t, clone.HasRoute("home"))
}
