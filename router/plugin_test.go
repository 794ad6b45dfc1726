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
	"github.com/greydragon888/real-router-sub000/routererr"
)

func newTestBus() *eventBus {
	return newEventBus(DefaultLimits(), noopLogger, nil, nil)
}

func TestPluginRegistrySubscribesStartAndStop(t *testing.T) {
	bus := newTestBus()
	r := newPluginRegistry(10, noopGetDep, bus, noopLogger, nil)

	var started, stopped bool
	off, err := r.usePlugin(func(contract.DependencyGetter) *Plugin {
		return &Plugin{
			OnStart: func() { started = true },
			OnStop:  func() { stopped = true },
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.count())

	bus.Emit(EventRouterStart)
	assert.True(t, started)
	bus.Emit(EventRouterStop)
	assert.True(t, stopped)

	off()
	assert.Equal(t, 0, r.count())
}

func TestPluginRegistryTeardownCalledOnUnsubscribe(t *testing.T) {
	bus := newTestBus()
	r := newPluginRegistry(10, noopGetDep, bus, noopLogger, nil)

	torn := 0
	off, err := r.usePlugin(func(contract.DependencyGetter) *Plugin {
		return &Plugin{Teardown: func() { torn++ }}
	})
	require.NoError(t, err)

	off()
	off() // idempotent
	assert.Equal(t, 1, torn)
}

func TestPluginRegistryLimitReached(t *testing.T) {
	bus := newTestBus()
	r := newPluginRegistry(1, noopGetDep, bus, noopLogger, nil)

	_, err := r.usePlugin(func(contract.DependencyGetter) *Plugin { return &Plugin{} })
	require.NoError(t, err)

	_, err = r.usePlugin(func(contract.DependencyGetter) *Plugin { return &Plugin{} })
	require.Error(t, err)
	assert.True(t, routererr.Is(err, routererr.CodePluginLimit))
}

func TestPluginRegistryNilPluginRollsBackBatch(t *testing.T) {
	bus := newTestBus()
	r := newPluginRegistry(10, noopGetDep, bus, noopLogger, nil)

	torn := false
	_, err := r.usePlugin(
		func(contract.DependencyGetter) *Plugin {
			return &Plugin{Teardown: func() { torn = true }}
		},
		func(contract.DependencyGetter) *Plugin { return nil },
	)
	require.Error(t, err)
	assert.True(t, routererr.Is(err, routererr.CodeInvalidArgument))
	assert.Equal(t, 0, r.count())
	assert.True(t, torn)
}

func TestPluginRegistryDisposeAllTearsDownEverything(t *testing.T) {
	bus := newTestBus()
	r := newPluginRegistry(10, noopGetDep, bus, noopLogger, nil)

	torn := 0
	_, err := r.usePlugin(
		func(contract.DependencyGetter) *Plugin { return &Plugin{Teardown: func() { torn++ }} },
		func(contract.DependencyGetter) *Plugin { return &Plugin{Teardown: func() { torn++ }} },
	)
	require.NoError(t, err)

	r.disposeAll()
	assert.Equal(t, 2, torn)
	assert.Equal(t, 0, r.count())
}

func TestPluginRegistryFactoriesSnapshot(t *testing.T) {
	bus := newTestBus()
	r := newPluginRegistry(10, noopGetDep, bus, noopLogger, nil)

	f1 := func(contract.DependencyGetter) *Plugin { return &Plugin{} }
	f2 := func(contract.DependencyGetter) *Plugin { return &Plugin{} }
	_, err := r.usePlugin(f1, f2)
	require.NoError(t, err)

	assert.Len(t, r.factories(), 2)
}
