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
	"fmt"
	"reflect"
	"sync"

	"github.com/greydragon888/real-router-sub000/routererr"
)

// EventName identifies one of the core's emitted events.
type EventName string

const (
	EventRouterStart       EventName = "router_start"
	EventRouterStop        EventName = "router_stop"
	EventTransitionStart   EventName = "transition_start"
	EventTransitionSuccess EventName = "transition_success"
	EventTransitionError   EventName = "transition_error"
	EventTransitionCancel  EventName = "transition_cancel"
)

// Listener receives an event's argument tuple (see spec §4.1 for the
// shape per event name).
type Listener func(args ...any)

type registeredListener struct {
	ptr uintptr
	fn  Listener
}

// eventBus is the EventBus component (C1): typed pub/sub with bounded
// listeners, a per-event recursion cap, snapshot iteration, and
// per-listener error isolation.
type eventBus struct {
	mu        sync.Mutex
	listeners map[EventName][]registeredListener
	depth     map[EventName]int
	warned    map[EventName]bool

	limits      Limits
	logger      LoggerSink
	metrics     *metricsRecorder
	diagnostics DiagnosticHandler
}

func newEventBus(limits Limits, logger LoggerSink, metrics *metricsRecorder, diagnostics DiagnosticHandler) *eventBus {
	return &eventBus{
		listeners:   make(map[EventName][]registeredListener),
		depth:       make(map[EventName]int),
		warned:      make(map[EventName]bool),
		limits:      limits,
		logger:      logger,
		metrics:     metrics,
		diagnostics: diagnostics,
	}
}

// listenerPtr gives a best-effort identity for a func value, used for
// duplicate detection. Go has no general equality for funcs; comparing
// the underlying code pointer is the closest analogue to the distilled
// spec's reference-equality check, and correctly rejects registering
// the exact same function value twice.
func listenerPtr(fn Listener) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

// On subscribes cb to event, returning an unsubscribe func.
func (b *eventBus) On(event EventName, cb Listener) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ptr := listenerPtr(cb)
	existing := b.listeners[event]
	for _, l := range existing {
		if l.ptr == ptr {
			return nil, routererr.Newf(routererr.CodeDuplicateListener, "listener already registered for %s", event)
		}
	}

	if len(existing) >= b.limits.MaxListeners {
		return nil, routererr.Newf(routererr.CodeListenerLimit, "listener limit of %d reached for %s", b.limits.MaxListeners, event)
	}
	if len(existing) >= b.limits.WarnListeners && !b.warned[event] {
		b.warned[event] = true
		b.logger.Warn("listener count approaching limit", "event", string(event), "count", len(existing)+1)
		if b.diagnostics != nil {
			b.diagnostics.OnDiagnostic(DiagnosticEvent{
				Kind:    DiagnosticListenerLimitApproaching,
				Message: "listener count approaching limit",
				Fields:  map[string]any{"event": string(event), "count": len(existing) + 1},
			})
		}
	}

	b.listeners[event] = append(existing, registeredListener{ptr: ptr, fn: cb})
	if b.metrics != nil {
		b.metrics.setListenerCount(string(event), len(b.listeners[event]))
	}

	return func() { b.Off(event, cb) }, nil
}

// Off unsubscribes cb from event, a no-op if it was not registered.
func (b *eventBus) Off(event EventName, cb Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ptr := listenerPtr(cb)
	existing := b.listeners[event]
	for i, l := range existing {
		if l.ptr == ptr {
			b.listeners[event] = append(existing[:i:i], existing[i+1:]...)
			if b.metrics != nil {
				b.metrics.setListenerCount(string(event), len(b.listeners[event]))
			}
			return
		}
	}
}

// ListenerCount returns the number of listeners for event.
func (b *eventBus) ListenerCount(event EventName) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[event])
}

// ClearAll removes every listener for every event.
func (b *eventBus) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = make(map[EventName][]registeredListener)
	b.warned = make(map[EventName]bool)
}

// SetLimits overrides the resource caps consulted by On.
func (b *eventBus) SetLimits(l Limits) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limits = l
}

// Emit invokes event's listeners with args, over a snapshot of the
// listener set taken at call time: registrations or unsubscriptions
// that happen from within a listener only affect future Emit calls.
// A panicking listener is isolated (reported to the logger, not
// propagated) and does not stop the remaining listeners. Recursion past
// maxEventDepth is the one error Emit itself returns.
func (b *eventBus) Emit(event EventName, args ...any) error {
	b.mu.Lock()
	if b.depth[event]+1 > b.limits.MaxEventDepth {
		b.mu.Unlock()
		return routererr.Newf(routererr.CodeRecursionDepth, "event %s recursion exceeds depth %d", event, b.limits.MaxEventDepth)
	}
	b.depth[event]++
	snapshot := make([]registeredListener, len(b.listeners[event]))
	copy(snapshot, b.listeners[event])
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.depth[event]--
		b.mu.Unlock()
	}()

	for _, l := range snapshot {
		b.invokeSafely(event, l.fn, args)
	}
	return nil
}

func (b *eventBus) invokeSafely(event EventName, fn Listener, args []any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener panicked", "event", string(event), "recovered", fmt.Sprint(r))
		}
	}()
	fn(args...)
}
