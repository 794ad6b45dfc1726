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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greydragon888/real-router-sub000/contract"
	"github.com/greydragon888/real-router-sub000/route"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	r, err := New([]route.Definition{
		{Name: "home", Path: "/home", CanActivate: contract.StaticGuard(true)},
		{Name: "users", Path: "/users", Children: []route.Definition{
			{Name: "view", Path: "/:id"},
		}},
	}, WithDefaultRoute("home"))
	require.NoError(t, err)
	return r
}

func TestCloneProducesIndependentUnstartedRouter(t *testing.T) {
	r := newTestRouter(t)
	_, err := r.Start(context.Background(), "")
	require.NoError(t, err)

	clone, err := r.Clone(nil)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, clone.fsm.Current())
	assert.Nil(t, clone.GetState())

	_, err = clone.Start(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "home", clone.GetState().Name)
	assert.Equal(t, "home", r.GetState().Name)
}

func TestCloneCarriesGuardFactoriesNotInstances(t *testing.T) {
	r := newTestRouter(t)
	clone, err := r.Clone(nil)
	require.NoError(t, err)

	_, err = clone.Start(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "home", clone.GetState().Name)
}

func TestCloneDoesNotInheritOriginalDependencies(t *testing.T) {
	r := newTestRouter(t)
	require.NoError(t, r.SetDependency("db", "original"))

	clone, err := r.Clone(map[string]any{"db": "cloned"})
	require.NoError(t, err)

	v, err := clone.GetDependency("db")
	require.NoError(t, err)
	assert.Equal(t, "cloned", v)
	assert.False(t, clone.HasDependency("nonexistent"))
}

func TestCloneMutatingRoutesDoesNotAffectOriginal(t *testing.T) {
	r := newTestRouter(t)
	clone, err := r.Clone(nil)
	require.NoError(t, err)

	require.NoError(t, clone.RemoveRoute("users"))
	assert.False(t, clone.HasRoute("users"))
	assert.True(t, r.HasRoute("users"))
}

func TestRemoveRouteClearsDescendantGuards(t *testing.T) {
	r, err := New([]route.Definition{
		{Name: "home", Path: "/home"},
		{Name: "users", Path: "/users", CanActivate: contract.StaticGuard(true), Children: []route.Definition{
			{Name: "view", Path: "/:id", CanActivate: contract.StaticGuard(true)},
		}},
	}, WithDefaultRoute("home"))
	require.NoError(t, err)
	_, err = r.Start(context.Background(), "")
	require.NoError(t, err)

	require.NoError(t, r.RemoveRoute("users"))
	assert.False(t, r.HasRoute("users"))
	assert.NotContains(t, r.guards.activateFactoriesSnapshot(), "users")
	assert.NotContains(t, r.guards.activateFactoriesSnapshot(), "users.view")
}

func TestCloneMiddlewareAndPluginsCarryOver(t *testing.T) {
	r := newTestRouter(t)
	mwCalls := 0
	_, err := r.UseMiddleware(func(contract.DependencyGetter) contract.MiddlewareFunc {
		return func(ctx context.Context, to, from *contract.State) (*contract.State, bool, error) {
			mwCalls++
			return nil, true, nil
		}
	})
	require.NoError(t, err)

	pluginStarted := 0
	_, err = r.UsePlugin(func(contract.DependencyGetter) *Plugin {
		return &Plugin{OnStart: func() { pluginStarted++ }}
	})
	require.NoError(t, err)

	clone, err := r.Clone(nil)
	require.NoError(t, err)

	_, err = clone.Start(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, mwCalls)
	assert.Equal(t, 1, pluginStarted)
}
