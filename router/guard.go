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

// guardRegistry is the GuardRegistry component (C6): per-route activate
// and deactivate guard factories, with their instantiated functions
// cached lazily on first use.
type guardRegistry struct {
	mu sync.Mutex

	activateFactories   map[string]contract.GuardFactory
	deactivateFactories map[string]contract.GuardFactory
	activateFuncs       map[string]contract.GuardFunc
	deactivateFuncs     map[string]contract.GuardFunc

	// registering latches a route name while its factory is being
	// invoked, so a factory that (directly or transitively) tries to
	// instantiate a guard for the same route recurses into an error
	// instead of looping forever.
	registering map[string]bool

	limit  int
	getDep contract.DependencyGetter
}

func newGuardRegistry(limit int, getDep contract.DependencyGetter) *guardRegistry {
	return &guardRegistry{
		activateFactories:   make(map[string]contract.GuardFactory),
		deactivateFactories: make(map[string]contract.GuardFactory),
		activateFuncs:       make(map[string]contract.GuardFunc),
		deactivateFuncs:     make(map[string]contract.GuardFunc),
		registering:         make(map[string]bool),
		limit:               limit,
		getDep:              getDep,
	}
}

// SetDependencyGetter rewires the getter consulted by factories not yet
// instantiated. Used once, after late-binding construction order.
func (g *guardRegistry) SetDependencyGetter(get contract.DependencyGetter) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getDep = get
}

// addActivateGuard registers factory as name's activate guard, lifting a
// bare bool via contract.StaticGuard at the call site if needed.
func (g *guardRegistry) addActivateGuard(name string, factory contract.GuardFactory) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.add(name, factory, g.activateFactories, g.activateFuncs)
}

func (g *guardRegistry) addDeactivateGuard(name string, factory contract.GuardFactory) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.add(name, factory, g.deactivateFactories, g.deactivateFuncs)
}

// add installs factory under name, invalidating any cached instance from
// a prior registration. Caller holds g.mu.
func (g *guardRegistry) add(name string, factory contract.GuardFactory, factories map[string]contract.GuardFactory, funcs map[string]contract.GuardFunc) error {
	if factory == nil {
		return routererr.Newf(routererr.CodeInvalidArgument, "guard factory for %q must not be nil", name)
	}
	if _, exists := factories[name]; !exists && g.count() >= g.limit {
		return routererr.Newf(routererr.CodeLifecycleHandlerLimit, "lifecycle handler limit of %d reached", g.limit)
	}
	factories[name] = factory
	delete(funcs, name)
	return nil
}

func (g *guardRegistry) removeActivateGuard(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.activateFactories, name)
	delete(g.activateFuncs, name)
}

func (g *guardRegistry) removeDeactivateGuard(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.deactivateFactories, name)
	delete(g.deactivateFuncs, name)
}

// clearAll drops every factory and cached function for every route.
func (g *guardRegistry) clearAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.activateFactories = make(map[string]contract.GuardFactory)
	g.deactivateFactories = make(map[string]contract.GuardFactory)
	g.activateFuncs = make(map[string]contract.GuardFunc)
	g.deactivateFuncs = make(map[string]contract.GuardFunc)
	g.registering = make(map[string]bool)
}

// count reports the total number of registered factories, activate and
// deactivate combined. Caller must hold g.mu.
func (g *guardRegistry) count() int {
	return len(g.activateFactories) + len(g.deactivateFactories)
}

// Count is the exported, locking equivalent of count.
func (g *guardRegistry) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count()
}

// activateFactoriesSnapshot returns a copy of the registered activate
// guard factories by route name, for CloneService.
func (g *guardRegistry) activateFactoriesSnapshot() map[string]contract.GuardFactory {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]contract.GuardFactory, len(g.activateFactories))
	for k, v := range g.activateFactories {
		out[k] = v
	}
	return out
}

// deactivateFactoriesSnapshot is activateFactoriesSnapshot's
// counterpart for deactivate guards.
func (g *guardRegistry) deactivateFactoriesSnapshot() map[string]contract.GuardFactory {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]contract.GuardFactory, len(g.deactivateFactories))
	for k, v := range g.deactivateFactories {
		out[k] = v
	}
	return out
}

// getFunctions returns the instantiated activate/deactivate guard
// functions for name, instantiating and caching each factory on first
// use. A nil return for either means "no guard registered": the caller
// treats an absent guard as an unconditional allow.
func (g *guardRegistry) getFunctions(name string) (activate, deactivate contract.GuardFunc, err error) {
	activate, err = g.instantiate(name, g.activateFactories, g.activateFuncs)
	if err != nil {
		return nil, nil, err
	}
	deactivate, err = g.instantiate(name, g.deactivateFactories, g.deactivateFuncs)
	if err != nil {
		return nil, nil, err
	}
	return activate, deactivate, nil
}

func (g *guardRegistry) instantiate(name string, factories map[string]contract.GuardFactory, funcs map[string]contract.GuardFunc) (contract.GuardFunc, error) {
	g.mu.Lock()
	if fn, ok := funcs[name]; ok {
		g.mu.Unlock()
		return fn, nil
	}
	factory, ok := factories[name]
	if !ok {
		g.mu.Unlock()
		return nil, nil
	}
	if g.registering[name] {
		g.mu.Unlock()
		return nil, routererr.Newf(routererr.CodeInvalidArgument, "guard factory recursion detected for route %q", name)
	}
	g.registering[name] = true
	getDep := g.getDep
	g.mu.Unlock()

	fn := factory(getDep)

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.registering, name)
	funcs[name] = fn
	return fn, nil
}
