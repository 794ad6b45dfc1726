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
	"sync"
	"time"

	"github.com/greydragon888/real-router-sub000/contract"
	"github.com/greydragon888/real-router-sub000/route"
	"github.com/greydragon888/real-router-sub000/routererr"
)

// transitionEngine is the TransitionEngine component (C11): the only
// place a committed transition happens. It is handed a fully-resolved
// target State (forwards already followed, path already built) by the
// facade and drives it through deactivate, activate, middleware and
// commit.
type transitionEngine struct {
	store      *route.Store
	states     *stateStore
	guards     *guardRegistry
	middleware *middlewarePipeline
	bus        *eventBus
	fsm        *fsm
	logger     LoggerSink
	tr         *tracer
	metrics    *metricsRecorder

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newTransitionEngine(store *route.Store, states *stateStore, guards *guardRegistry, mw *middlewarePipeline, bus *eventBus, fsm *fsm, logger LoggerSink, tr *tracer, metrics *metricsRecorder) *transitionEngine {
	return &transitionEngine{
		store: store, states: states, guards: guards, middleware: mw,
		bus: bus, fsm: fsm, logger: logger, tr: tr, metrics: metrics,
	}
}

// Transition runs the full spec §4.11 algorithm for a move to "to". The
// caller (the facade) has already resolved forwards and built the path;
// "to" carries its NavigationOptions in Meta.Options.
func (e *transitionEngine) Transition(ctx context.Context, to *contract.State) (*contract.State, error) {
	from := e.states.Current()

	opts := contract.NavigationOptions{}
	if to.Meta != nil {
		opts = to.Meta.Options
	}
	if !opts.Force && !opts.Reload && areStatesEqual(from, to, false) {
		return nil, routererr.New(routererr.CodeSameStates, "navigation target equals the current state")
	}

	// A navigate that arrives while a prior one is still transitioning
	// cancels it and proceeds without a fresh FSM send (the FSM is
	// already TRANSITIONING); any other non-READY state rejects outright.
	switch e.fsm.Current() {
	case StateReady:
		if _, ok := e.fsm.Send(EventNavigate); !ok {
			return nil, routererr.New(routererr.CodeRouterNotStarted, "router is not ready to navigate")
		}
	case StateTransitioning:
	case StateDisposed:
		return nil, routererr.New(routererr.CodeRouterDisposed, "router has been disposed")
	default:
		return nil, routererr.New(routererr.CodeRouterNotStarted, "router has not been started")
	}

	transCtx, cancel := e.beginTransition(ctx)
	defer e.endTransition(cancel)

	toName := to.Name
	fromName := ""
	if from != nil {
		fromName = from.Name
	}
	_, toActivate, toDeactivate := route.TransitionPath(toName, fromName)
	startedAt := time.Now()
	_ = e.bus.Emit(EventTransitionStart, to, from)
	spanCtx, endSpan := e.tr.startTransitionSpan(transCtx, toName, fromName)

	finish := func(outcome string, err error) {
		endSpan(outcome, err)
		e.metrics.recordTransition(outcome, time.Since(startedAt).Seconds())
	}

	if err := e.checkCancelled(transCtx); err != nil {
		e.cancelTransition(to, from)
		finish("cancel", nil)
		return nil, err
	}

	for _, name := range toDeactivate {
		if err := e.checkCancelled(spanCtx); err != nil {
			e.cancelTransition(to, from)
			finish("cancel", nil)
			return nil, err
		}
		_, deactivate, err := e.guards.getFunctions(name)
		if err != nil {
			return nil, e.failTransition(to, from, err, finish)
		}
		if deactivate == nil {
			continue
		}
		allow, err := deactivate(spanCtx, to, from)
		if err != nil {
			return nil, e.failTransition(to, from, routererr.Wrap(routererr.CodeCannotDeactivate, "deactivate guard failed for "+name, err), finish)
		}
		if !allow {
			e.metrics.recordGuardRejection("deactivate")
			return nil, e.failTransition(to, from, routererr.Newf(routererr.CodeCannotDeactivate, "deactivate guard rejected %q", name), finish)
		}
	}

	for _, name := range toActivate {
		if err := e.checkCancelled(spanCtx); err != nil {
			e.cancelTransition(to, from)
			finish("cancel", nil)
			return nil, err
		}
		activate, _, err := e.guards.getFunctions(name)
		if err != nil {
			return nil, e.failTransition(to, from, err, finish)
		}
		if activate == nil {
			continue
		}
		allow, err := activate(spanCtx, to, from)
		if err != nil {
			return nil, e.failTransition(to, from, routererr.Wrap(routererr.CodeCannotActivate, "activate guard failed for "+name, err), finish)
		}
		if !allow {
			e.metrics.recordGuardRejection("activate")
			return nil, e.failTransition(to, from, routererr.Newf(routererr.CodeCannotActivate, "activate guard rejected %q", name), finish)
		}
	}

	current := to
	for _, mw := range e.middleware.functions() {
		if err := e.checkCancelled(spanCtx); err != nil {
			e.cancelTransition(current, from)
			finish("cancel", nil)
			return nil, err
		}
		next, allow, err := mw(spanCtx, current, from)
		if err != nil {
			return nil, e.failTransition(current, from, routererr.Wrap(routererr.CodeTransitionErr, "middleware rejected transition", err), finish)
		}
		if !allow {
			return nil, e.failTransition(current, from, routererr.New(routererr.CodeTransitionErr, "middleware blocked transition"), finish)
		}
		if next != nil {
			current = next
		}
	}

	if err := e.checkCancelled(spanCtx); err != nil {
		e.cancelTransition(current, from)
		finish("cancel", nil)
		return nil, err
	}

	if !current.IsUnknownRoute() && !e.store.HasRoute(current.Name) {
		return nil, e.failTransition(current, from, routererr.Newf(routererr.CodeRouteNotFound, "route %q no longer exists", current.Name), finish)
	}

	e.states.SetState(current)
	e.fsm.Send(EventComplete)
	_ = e.bus.Emit(EventTransitionSuccess, current, from)
	finish("success", nil)
	return current.Clone(), nil
}

// beginTransition cancels any prior in-flight transition and opens a new
// cancellable context derived from ctx.
func (e *transitionEngine) beginTransition(ctx context.Context) (context.Context, context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	transCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	return transCtx, cancel
}

func (e *transitionEngine) endTransition(cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cancel()
	e.cancel = nil
}

func (e *transitionEngine) checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return routererr.New(routererr.CodeTransitionCancelled, "transition was cancelled")
	default:
		return nil
	}
}

func (e *transitionEngine) cancelTransition(to, from *contract.State) {
	e.fsm.Send(EventCancel)
	_ = e.bus.Emit(EventTransitionCancel, to, from)
}

func (e *transitionEngine) failTransition(to, from *contract.State, err error, finish func(outcome string, err error)) error {
	e.fsm.Send(EventFail)
	_ = e.bus.Emit(EventTransitionError, to, from, err)
	finish("error", err)
	return err
}

// IsNavigating reports whether a transition is currently in flight.
func (e *transitionEngine) IsNavigating() bool {
	return e.fsm.IsTransitioning()
}

// cancelInFlight cancels whatever transition is currently running, if
// any. Used by Stop/Dispose, which must interrupt navigation rather
// than wait for its next cancellation checkpoint.
func (e *transitionEngine) cancelInFlight() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// CanNavigateTo performs the spec §4.11 synchronous dry run on an
// already built target state (the facade resolves forwards and builds
// it): compute the transition path and evaluate every registered guard
// along it. Go has no
// sync/async guard distinction at the type level (a GuardFunc is always
// a plain function call); unlike the distilled spec, which treats async
// guards as "conservatively allow", this evaluates every guard for real,
// which is the strictly more correct answer as long as guards do not
// perform blocking I/O. A guard that blocks will block this call too.
func (e *transitionEngine) CanNavigateTo(ctx context.Context, to *contract.State) (bool, error) {
	from := e.states.Current()
	toName := to.Name
	fromName := ""
	if from != nil {
		fromName = from.Name
	}
	_, toActivate, toDeactivate := route.TransitionPath(toName, fromName)

	for _, name := range toDeactivate {
		_, deactivate, err := e.guards.getFunctions(name)
		if err != nil {
			return false, err
		}
		if deactivate == nil {
			continue
		}
		allow, err := deactivate(ctx, to, from)
		if err != nil || !allow {
			return false, nil
		}
	}
	for _, name := range toActivate {
		activate, _, err := e.guards.getFunctions(name)
		if err != nil {
			return false, err
		}
		if activate == nil {
			continue
		}
		allow, err := activate(ctx, to, from)
		if err != nil || !allow {
			return false, nil
		}
	}
	return true, nil
}
