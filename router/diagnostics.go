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

// DiagnosticKind classifies a DiagnosticEvent.
type DiagnosticKind string

const (
	DiagnosticListenerLimitApproaching DiagnosticKind = "listener_limit_approaching"
	DiagnosticForwardCacheRebuilt      DiagnosticKind = "forward_cache_rebuilt"
	DiagnosticDependencyOverwritten    DiagnosticKind = "dependency_overwritten"
	DiagnosticOnStartMissedReplay      DiagnosticKind = "onstart_missed_replay"
)

// DiagnosticEvent is a noteworthy-but-not-taxonomy condition, separate
// from the EventBus's transition_*/router_* events: things an operator
// might want to log or alert on without them being navigation errors.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticHandler receives DiagnosticEvents.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc adapts a function to a DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

// OnDiagnostic implements DiagnosticHandler.
func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) { f(e) }
