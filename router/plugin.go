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
	"sync"

	"github.com/greydragon888/real-router-sub000/contract"
	"github.com/greydragon888/real-router-sub000/routererr"
)

// Plugin is an object of optional lifecycle/transition event handlers.
// Any field may be nil; a nil handler is simply never invoked.
type Plugin struct {
	OnStart             func()
	OnStop              func()
	OnTransitionStart    func(to, from *contract.State)
	OnTransitionSuccess  func(to, from *contract.State)
	OnTransitionError    func(to, from *contract.State, err error)
	OnTransitionCancel   func(to, from *contract.State)
	Teardown             func()
}

// PluginFactory builds a Plugin given access to the router's
// dependencies.
type PluginFactory func(get contract.DependencyGetter) *Plugin

type installedPlugin struct {
	batch        int64
	plugin       *Plugin
	factory      PluginFactory
	unsubscribes []func()
	torndown     bool
	mu           sync.Mutex
}

func (p *installedPlugin) teardownOnce() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.torndown {
		return
	}
	p.torndown = true
	for _, off := range p.unsubscribes {
		off()
	}
	if p.plugin.Teardown != nil {
		p.plugin.Teardown()
	}
}

// pluginRegistry is the PluginRegistry component (C8).
type pluginRegistry struct {
	mu      sync.Mutex
	plugins []*installedPlugin
	nextID  int64
	limit       int
	getDep      contract.DependencyGetter
	bus         *eventBus
	ready       bool
	logger      LoggerSink
	diagnostics DiagnosticHandler
}

func newPluginRegistry(limit int, getDep contract.DependencyGetter, bus *eventBus, logger LoggerSink, diagnostics DiagnosticHandler) *pluginRegistry {
	return &pluginRegistry{limit: limit, getDep: getDep, bus: bus, logger: logger, diagnostics: diagnostics}
}

func (r *pluginRegistry) SetDependencyGetter(get contract.DependencyGetter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getDep = get
}

// SetReady marks the router as having completed its first start, so that
// a plugin registered afterward knows not to expect OnStart.
func (r *pluginRegistry) SetReady(ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = ready
}

// usePlugin instantiates each factory and subscribes its handlers,
// rolling back the entire batch if any factory fails or the plugin
// limit would be exceeded. Returns an idempotent unsubscribe for the
// whole batch.
func (r *pluginRegistry) usePlugin(factories ...PluginFactory) (func(), error) {
	r.mu.Lock()
	if len(r.plugins)+len(factories) > r.limit {
		r.mu.Unlock()
		return nil, routererr.Newf(routererr.CodePluginLimit, "plugin limit of %d reached", r.limit)
	}
	r.nextID++
	batch := r.nextID
	wasReady := r.ready
	getDep := r.getDep
	r.mu.Unlock()

	installed := make([]*installedPlugin, 0, len(factories))
	for _, f := range factories {
		if f == nil {
			rollback(installed)
			return nil, routererr.Newf(routererr.CodeInvalidArgument, "plugin factory must not be nil")
		}
		p := f(getDep)
		if p == nil {
			rollback(installed)
			return nil, routererr.Newf(routererr.CodeInvalidArgument, "plugin factory produced a nil plugin")
		}

		ip := &installedPlugin{batch: batch, plugin: p, factory: f}
		ip.unsubscribes = r.subscribe(p)
		installed = append(installed, ip)

		if wasReady && p.OnStart != nil {
			if r.logger != nil {
				r.logger.Warn("plugin registered after start; onStart will not replay")
			}
			if r.diagnostics != nil {
				r.diagnostics.OnDiagnostic(DiagnosticEvent{
					Kind:    DiagnosticOnStartMissedReplay,
					Message: "plugin registered after router start; onStart will not replay",
				})
			}
		}
	}

	r.mu.Lock()
	r.plugins = append(r.plugins, installed...)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.removeBatch(batch) })
	}, nil
}

func rollback(installed []*installedPlugin) {
	for _, ip := range installed {
		ip.teardownOnce()
	}
}

// subscribe wires p's non-nil handlers to the event bus, returning the
// unsubscribe funcs for each.
func (r *pluginRegistry) subscribe(p *Plugin) []func() {
	var offs []func()
	wrap := func(event EventName, call func(args []any)) {
		off, err := r.bus.On(event, func(args ...any) { call(args) })
		if err == nil {
			offs = append(offs, off)
		}
	}

	if p.OnStart != nil {
		wrap(EventRouterStart, func(args []any) { p.OnStart() })
	}
	if p.OnStop != nil {
		wrap(EventRouterStop, func(args []any) { p.OnStop() })
	}
	if p.OnTransitionStart != nil {
		wrap(EventTransitionStart, func(args []any) {
			to, from := stateArgs(args)
			p.OnTransitionStart(to, from)
		})
	}
	if p.OnTransitionSuccess != nil {
		wrap(EventTransitionSuccess, func(args []any) {
			to, from := stateArgs(args)
			p.OnTransitionSuccess(to, from)
		})
	}
	if p.OnTransitionError != nil {
		wrap(EventTransitionError, func(args []any) {
			to, from := stateArgs(args)
			var err error
			if len(args) > 2 {
				err, _ = args[2].(error)
			}
			p.OnTransitionError(to, from, err)
		})
	}
	if p.OnTransitionCancel != nil {
		wrap(EventTransitionCancel, func(args []any) {
			to, from := stateArgs(args)
			p.OnTransitionCancel(to, from)
		})
	}
	return offs
}

func stateArgs(args []any) (to, from *contract.State) {
	if len(args) > 0 {
		to, _ = args[0].(*contract.State)
	}
	if len(args) > 1 {
		from, _ = args[1].(*contract.State)
	}
	return to, from
}

func (r *pluginRegistry) removeBatch(batch int64) {
	r.mu.Lock()
	var kept []*installedPlugin
	var toTeardown []*installedPlugin
	for _, ip := range r.plugins {
		if ip.batch == batch {
			toTeardown = append(toTeardown, ip)
		} else {
			kept = append(kept, ip)
		}
	}
	r.plugins = kept
	r.mu.Unlock()

	for _, ip := range toTeardown {
		ip.teardownOnce()
	}
}

// disposeAll tears down every remaining plugin exactly once, idempotent
// with any prior manual unsubscribe of the same plugin.
func (r *pluginRegistry) disposeAll() {
	r.mu.Lock()
	all := r.plugins
	r.plugins = nil
	r.mu.Unlock()

	for _, ip := range all {
		ip.teardownOnce()
	}
}

// count reports the number of currently installed plugins.
func (r *pluginRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.plugins)
}

// factories returns a snapshot of the installed plugins' originating
// factories, in registration order, for CloneService.
func (r *pluginRegistry) factories() []PluginFactory {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PluginFactory, len(r.plugins))
	for i, ip := range r.plugins {
		out[i] = ip.factory
	}
	return out
}
