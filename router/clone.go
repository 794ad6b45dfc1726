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

// Clone is the CloneService component (C13): it produces an
// independent, unstarted Router with the same routes (tree and
// per-route config, deep-copied), the same options snapshot, the same
// guard, middleware, and plugin factories, but new dependencies
// (dependencies is an explicit argument; the original container is
// never carried over) and fresh registries, event bus, state store and
// FSM. Mutating the clone's routes, options, dependencies, listeners,
// guards, plugins, or middleware has no observable effect on r.
func (r *Router) Clone(dependencies map[string]any) (*Router, error) {
	o := r.opts.snapshot()
	newStore := r.store.Clone()

	deps := newDependencyContainer(o.limits.MaxDependencies, o.logger, o.diagnostics)
	if err := deps.SetMany(dependencies); err != nil {
		return nil, err
	}
	getDep := deps.TryGet
	newStore.SetDependencyGetter(getDep)
	if o.diagnostics != nil {
		diagnostics := o.diagnostics
		newStore.SetOnForwardCacheRebuilt(func() {
			diagnostics.OnDiagnostic(DiagnosticEvent{
				Kind:    DiagnosticForwardCacheRebuilt,
				Message: "forward cache invalidated and will be rebuilt lazily",
			})
		})
	}

	metrics := newMetricsRecorder(o.registerer)
	bus := newEventBus(o.limits, o.logger, metrics, o.diagnostics)

	guards := newGuardRegistry(o.limits.MaxLifecycleHandlers, getDep)
	for name, f := range r.guards.activateFactoriesSnapshot() {
		if err := guards.addActivateGuard(name, f); err != nil {
			return nil, err
		}
	}
	for name, f := range r.guards.deactivateFactoriesSnapshot() {
		if err := guards.addDeactivateGuard(name, f); err != nil {
			return nil, err
		}
	}

	middleware := newMiddlewarePipeline(o.limits.MaxMiddleware, getDep)
	if _, err := middleware.useMiddleware(r.middleware.factories()...); err != nil {
		return nil, err
	}

	plugins := newPluginRegistry(o.limits.MaxPlugins, getDep, bus, o.logger, o.diagnostics)
	if _, err := plugins.usePlugin(r.plugins.factories()...); err != nil {
		return nil, err
	}

	states := newStateStore()
	machine := newFSM()
	tr := newTracer(o.tracer)
	engine := newTransitionEngine(newStore, states, guards, middleware, bus, machine, o.logger, tr, metrics)

	return &Router{
		opts:       o,
		store:      newStore,
		deps:       deps,
		bus:        bus,
		guards:     guards,
		middleware: middleware,
		plugins:    plugins,
		states:     states,
		fsm:        machine,
		engine:     engine,
		metrics:    metrics,
		tracer:     tr,
	}, nil
}
