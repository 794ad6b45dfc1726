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
	"fmt"
	"strings"

	"github.com/greydragon888/real-router-sub000/contract"
	"github.com/greydragon888/real-router-sub000/pathmatch"
	"github.com/greydragon888/real-router-sub000/querystring"
	"github.com/greydragon888/real-router-sub000/route"
	"github.com/greydragon888/real-router-sub000/routererr"
)

// Router is the RouterFacade component (C12): a thin validating
// orchestrator over the leaf components it owns exclusively. Nothing
// outside this package ever holds a pointer into a component directly.
type Router struct {
	opts options

	store      *route.Store
	deps       *dependencyContainer
	bus        *eventBus
	guards     *guardRegistry
	middleware *middlewarePipeline
	plugins    *pluginRegistry
	states     *stateStore
	fsm        *fsm
	engine     *transitionEngine
	metrics    *metricsRecorder
	tracer     *tracer
}

// New builds a Router over routes, applying opts. The tree is compiled,
// canActivate/canDeactivate factories declared on the definitions are
// registered, and the router starts in IDLE: no navigation has
// happened yet, Start must be called.
func New(routes []route.Definition, opts ...Option) (*Router, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o = o.snapshot()
	o.limits = o.limits.normalize()

	store := route.New("", pathmatch.Matcher{}, pathmatch.Builder{})
	store.SetQueryCodec(querystring.New(o.queryParamsMode))
	store.SetRewritePathOnMatch(o.rewritePathOnMatch)
	if err := store.AddRoutes(routes, ""); err != nil {
		return nil, err
	}

	deps := newDependencyContainer(o.limits.MaxDependencies, o.logger, o.diagnostics)
	getDep := deps.TryGet
	store.SetDependencyGetter(getDep)
	if o.diagnostics != nil {
		diagnostics := o.diagnostics
		store.SetOnForwardCacheRebuilt(func() {
			diagnostics.OnDiagnostic(DiagnosticEvent{
				Kind:    DiagnosticForwardCacheRebuilt,
				Message: "forward cache invalidated and will be rebuilt lazily",
			})
		})
	}

	metrics := newMetricsRecorder(o.registerer)
	bus := newEventBus(o.limits, o.logger, metrics, o.diagnostics)

	guards := newGuardRegistry(o.limits.MaxLifecycleHandlers, getDep)
	if err := registerGuards(guards, routes, ""); err != nil {
		return nil, err
	}

	middleware := newMiddlewarePipeline(o.limits.MaxMiddleware, getDep)
	plugins := newPluginRegistry(o.limits.MaxPlugins, getDep, bus, o.logger, o.diagnostics)
	states := newStateStore()
	machine := newFSM()
	tr := newTracer(o.tracer)
	engine := newTransitionEngine(store, states, guards, middleware, bus, machine, o.logger, tr, metrics)

	return &Router{
		opts:       o,
		store:      store,
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

// registerGuards walks defs recursively, registering each definition's
// CanActivate/CanDeactivate factory under its fully qualified name.
func registerGuards(guards *guardRegistry, defs []route.Definition, parent string) error {
	for _, d := range defs {
		fqn := d.Name
		if parent != "" {
			fqn = parent + "." + d.Name
		}
		if d.CanActivate != nil {
			if err := guards.addActivateGuard(fqn, d.CanActivate); err != nil {
				return err
			}
		}
		if d.CanDeactivate != nil {
			if err := guards.addDeactivateGuard(fqn, d.CanDeactivate); err != nil {
				return err
			}
		}
		if err := registerGuards(guards, d.Children, fqn); err != nil {
			return err
		}
	}
	return nil
}

// paramKinds classifies every param a node's full pattern (including
// its ancestors') and declared query string contribute, for states
// built by name rather than by path match (MatchPath derives the same
// map for free from the matched segments).
func paramKinds(node *route.Node) map[string]contract.ParamKind {
	kinds := make(map[string]contract.ParamKind)
	for cur := node; cur != nil; cur = cur.Parent {
		for _, seg := range cur.Segments {
			switch seg.Kind {
			case route.SegParam:
				kinds[seg.Name] = contract.ParamKindURL
			case route.SegSplat:
				kinds[seg.Name] = contract.ParamKindSplat
			}
		}
	}
	for _, q := range node.QueryParams {
		kinds[q] = contract.ParamKindQuery
	}
	return kinds
}

func (r *Router) checkNotDisposed() error {
	if r.fsm.IsDisposed() {
		return routererr.New(routererr.CodeRouterDisposed, "router has been disposed")
	}
	return nil
}

// buildTargetState resolves forwards from name, builds its path, and
// stamps a fresh State with its param kinds attached. Shared by
// Navigate, NavigateToDefault, and Start's default-route resolution.
func (r *Router) buildTargetState(name string, params map[string]any, navOpts contract.NavigationOptions) (*contract.State, error) {
	resolvedName, merged, err := r.store.ForwardState(name, params)
	if err != nil {
		return nil, err
	}
	node := r.store.Tree().ByName[resolvedName]
	if node == nil {
		return nil, routererr.Newf(routererr.CodeRouteNotFound, "route %q not found", resolvedName)
	}
	path, err := r.store.BuildPath(resolvedName, merged)
	if err != nil {
		return nil, err
	}
	meta := &contract.Meta{
		Params:     paramKinds(node),
		Options:    navOpts,
		Redirected: resolvedName != name,
	}
	return r.states.makeState(resolvedName, merged, path, meta, 0), nil
}

// resolveStartState resolves the initial target for Start: a matched
// path, the not-found sentinel (if allowed and nothing matches), or
// the configured default route for an empty path.
func (r *Router) resolveStartState(path string) (*contract.State, error) {
	if path != "" {
		res, err := r.store.MatchPath(path)
		if err != nil {
			if r.opts.allowNotFound && routererr.Is(err, routererr.CodeRouteNotFound) {
				return r.states.makeNotFoundState(path, contract.NavigationOptions{}), nil
			}
			return nil, err
		}
		meta := &contract.Meta{
			Params:     res.ParamKinds,
			Redirected: res.Redirected,
		}
		return r.states.makeState(res.Name, res.Params, res.Path, meta, 0), nil
	}

	name := r.opts.resolveDefaultRoute()
	if name == "" {
		return nil, routererr.New(routererr.CodeNoStartPathOrState, "no start path or default route configured")
	}
	return r.buildTargetState(name, r.opts.resolveDefaultParams(), contract.NavigationOptions{})
}

// Start transitions the router from IDLE through STARTING to READY,
// running the initial navigation to path (or the configured default
// route, if path is empty). A failed initial navigation unwinds the
// whole start back to IDLE, not just the one transition.
func (r *Router) Start(ctx context.Context, path string) (*contract.State, error) {
	switch r.fsm.Current() {
	case StateDisposed:
		return nil, routererr.New(routererr.CodeRouterDisposed, "router has been disposed")
	case StateIdle:
	default:
		return nil, routererr.New(routererr.CodeRouterAlreadyStarted, "router has already been started")
	}

	if _, ok := r.fsm.Send(EventStart); !ok {
		return nil, routererr.New(routererr.CodeRouterAlreadyStarted, "router has already been started")
	}

	to, err := r.resolveStartState(path)
	if err != nil {
		r.fsm.Send(EventFail)
		return nil, err
	}

	if _, ok := r.fsm.Send(EventStarted); !ok {
		r.fsm.Send(EventFail)
		return nil, routererr.New(routererr.CodeRouterNotStarted, "router failed to complete startup")
	}

	_ = r.bus.Emit(EventRouterStart)
	r.plugins.SetReady(true)

	result, err := r.engine.Transition(ctx, to)
	if err != nil {
		r.plugins.SetReady(false)
		r.fsm.Send(EventStop)
		return nil, err
	}
	return result, nil
}

// Stop cancels any in-flight transition and returns the router to
// IDLE. A no-op if the router is already IDLE or DISPOSED.
func (r *Router) Stop(ctx context.Context) error {
	switch r.fsm.Current() {
	case StateDisposed, StateIdle:
		return nil
	}
	r.engine.cancelInFlight()
	r.fsm.Send(EventStop)
	r.plugins.SetReady(false)
	_ = r.bus.Emit(EventRouterStop)
	return nil
}

// Dispose cancels any in-flight transition, tears down every plugin
// exactly once, clears the event bus and registries, and irreversibly
// moves the router to DISPOSED. Idempotent.
func (r *Router) Dispose(ctx context.Context) error {
	if r.fsm.IsDisposed() {
		return nil
	}
	r.engine.cancelInFlight()
	r.fsm.ForceDispose()
	r.plugins.disposeAll()
	r.bus.ClearAll()
	r.guards.clearAll()
	r.middleware.clearAll()
	r.states.Reset()
	r.deps.Reset()
	return nil
}

// Navigate resolves name's forwards, builds its target State, and
// drives it through the transition engine.
func (r *Router) Navigate(ctx context.Context, name string, params map[string]any, navOpts contract.NavigationOptions) (*contract.State, error) {
	if err := r.checkNotDisposed(); err != nil {
		return nil, err
	}
	to, err := r.buildTargetState(name, params, navOpts)
	if err != nil {
		return nil, err
	}
	return r.engine.Transition(ctx, to)
}

// NavigateToDefault resolves the configured default route/params and
// delegates to Navigate, failing with no_start_path_or_state if no
// default route is configured.
func (r *Router) NavigateToDefault(ctx context.Context, navOpts contract.NavigationOptions) (*contract.State, error) {
	if err := r.checkNotDisposed(); err != nil {
		return nil, err
	}
	name := r.opts.resolveDefaultRoute()
	if name == "" {
		return nil, routererr.New(routererr.CodeNoStartPathOrState, "no default route configured")
	}
	return r.Navigate(ctx, name, r.opts.resolveDefaultParams(), navOpts)
}

// CanNavigateTo performs a synchronous dry run of a prospective
// navigation to name, evaluating every guard along the transition path
// without committing a state.
func (r *Router) CanNavigateTo(name string, params map[string]any) (bool, error) {
	if err := r.checkNotDisposed(); err != nil {
		return false, err
	}
	to, err := r.buildTargetState(name, params, contract.NavigationOptions{})
	if err != nil {
		return false, err
	}
	return r.engine.CanNavigateTo(context.Background(), to)
}

// IsNavigating reports whether a transition is currently in flight.
func (r *Router) IsNavigating() bool {
	return r.engine.IsNavigating()
}

// GetState returns a defensive copy of the current state, or nil if
// the router has not navigated anywhere yet.
func (r *Router) GetState() *contract.State {
	return r.states.Current()
}

// GetPreviousState returns a defensive copy of the state the router
// was in immediately before the current one.
func (r *Router) GetPreviousState() *contract.State {
	return r.states.Previous()
}

// Routes returns the currently registered top-level route definitions.
func (r *Router) Routes() []route.Definition {
	return r.store.Definitions()
}

// HasRoute reports whether name is a registered route.
func (r *Router) HasRoute(name string) bool {
	return r.store.HasRoute(name)
}

// BuildPath builds the concrete path for name/params without
// navigating to it.
func (r *Router) BuildPath(name string, params map[string]any) (string, error) {
	return r.store.BuildPath(name, params)
}

// MatchPath matches path against the route tree without navigating to
// it, resolving forwards the same way Start/Navigate do.
func (r *Router) MatchPath(path string) (*route.MatchResult, error) {
	return r.store.MatchPath(path)
}

// IsActiveRoute reports, with strictEquality, whether the current state
// is name with matching params; otherwise, whether the current state is
// a proper descendant of name whose params include the given ones. An
// empty name logs a warning and reports false.
func (r *Router) IsActiveRoute(name string, params map[string]any, strictEquality, ignoreQueryParams bool) bool {
	if name == "" {
		r.opts.logger.Warn("isActiveRoute called with an empty route name")
		return false
	}
	return r.store.IsActiveRoute(name, params, strictEquality, ignoreQueryParams, r.states.Current())
}

// AddRoutes registers defs under parent (the root, if empty), wiring
// any canActivate/canDeactivate factories they declare.
func (r *Router) AddRoutes(defs []route.Definition, parent string) error {
	if err := r.checkNotDisposed(); err != nil {
		return err
	}
	if err := r.store.AddRoutes(defs, parent); err != nil {
		return err
	}
	return registerGuards(r.guards, defs, parent)
}

// RemoveRoute removes name and its descendants, refusing while
// TRANSITIONING or if name is or ancestors the active route.
func (r *Router) RemoveRoute(name string) error {
	if err := r.checkNotDisposed(); err != nil {
		return err
	}
	activeName := ""
	if active := r.states.Current(); active != nil {
		activeName = active.Name
	}
	removed, err := r.store.RemoveRoute(name, r.fsm.IsTransitioning(), activeName)
	if err != nil {
		return err
	}
	for _, n := range removed {
		r.guards.removeActivateGuard(n)
		r.guards.removeDeactivateGuard(n)
	}
	return nil
}

// ClearRoutes wipes every route, its config, and its guards, refusing
// while TRANSITIONING.
func (r *Router) ClearRoutes() error {
	if err := r.checkNotDisposed(); err != nil {
		return err
	}
	if err := r.store.ClearRoutes(r.fsm.IsTransitioning()); err != nil {
		return err
	}
	r.guards.clearAll()
	r.states.Reset()
	return nil
}

// UpdateRoute applies u's optional-field updates to name, wiring any
// canActivate/canDeactivate changes into the guard registry.
func (r *Router) UpdateRoute(name string, u route.RouteUpdate) error {
	if err := r.checkNotDisposed(); err != nil {
		return err
	}
	if err := r.store.UpdateRoute(name, u); err != nil {
		return err
	}
	if u.ClearCanActivate {
		r.guards.removeActivateGuard(name)
	} else if u.CanActivate != nil {
		if err := r.guards.addActivateGuard(name, u.CanActivate); err != nil {
			return err
		}
	}
	if u.ClearCanDeactivate {
		r.guards.removeDeactivateGuard(name)
	} else if u.CanDeactivate != nil {
		if err := r.guards.addDeactivateGuard(name, u.CanDeactivate); err != nil {
			return err
		}
	}
	return nil
}

// UseMiddleware installs factories as one batch, returning an
// idempotent unsubscribe for the whole batch.
func (r *Router) UseMiddleware(factories ...contract.MiddlewareFactory) (func(), error) {
	if err := r.checkNotDisposed(); err != nil {
		return nil, err
	}
	return r.middleware.useMiddleware(factories...)
}

// UsePlugin installs factories as one batch, subscribing each
// instantiated plugin's handlers to the event bus.
func (r *Router) UsePlugin(factories ...PluginFactory) (func(), error) {
	if err := r.checkNotDisposed(); err != nil {
		return nil, err
	}
	return r.plugins.usePlugin(factories...)
}

// On subscribes cb to event, returning an unsubscribe func.
func (r *Router) On(event EventName, cb Listener) (func(), error) {
	if err := r.checkNotDisposed(); err != nil {
		return nil, err
	}
	return r.bus.On(event, cb)
}

// Off unsubscribes cb from event.
func (r *Router) Off(event EventName, cb Listener) {
	r.bus.Off(event, cb)
}

// SetDependency registers name -> value with the router's dependency
// container.
func (r *Router) SetDependency(name string, value any) error {
	if err := r.checkNotDisposed(); err != nil {
		return err
	}
	return r.deps.Set(name, value)
}

// SetDependencies registers multiple dependencies, stopping at the
// first error.
func (r *Router) SetDependencies(values map[string]any) error {
	if err := r.checkNotDisposed(); err != nil {
		return err
	}
	return r.deps.SetMany(values)
}

// GetDependency returns the named dependency, or dependency_not_found.
func (r *Router) GetDependency(name string) (any, error) {
	return r.deps.Get(name)
}

// HasDependency reports whether name is registered.
func (r *Router) HasDependency(name string) bool {
	return r.deps.Has(name)
}

// RemoveDependency deletes name, a no-op if absent.
func (r *Router) RemoveDependency(name string) {
	r.deps.Remove(name)
}

// String renders a one-line lifecycle summary, for logs.
func (r *Router) String() string {
	name := "<none>"
	if s := r.states.Current(); s != nil {
		name = s.Name
	}
	return fmt.Sprintf("Router{state=%s, current=%s}", r.fsm.Current(), name)
}

// GoString renders a debug dump including route count and guard,
// middleware and plugin registry sizes, for %#v formatting.
func (r *Router) GoString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Router{\n")
	fmt.Fprintf(&b, "  state: %s\n", r.fsm.Current())
	fmt.Fprintf(&b, "  routes: %d\n", len(r.store.Tree().ByName))
	fmt.Fprintf(&b, "  guards: %d\n", r.guards.Count())
	fmt.Fprintf(&b, "  middleware: %d\n", r.middleware.count())
	fmt.Fprintf(&b, "  plugins: %d\n", r.plugins.count())
	if s := r.states.Current(); s != nil {
		fmt.Fprintf(&b, "  current: %s %v\n", s.Name, s.Params)
	}
	b.WriteString("}")
	return b.String()
}
