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

package contract

import "context"

// DependencyGetter is the narrow view of the dependency container that
// guard and middleware factories receive, instead of the container
// itself. It is one of the "small function sets" the design notes call
// for when breaking cyclic dependencies by late binding.
type DependencyGetter func(name string) (any, bool)

// GuardFunc gates activation or deactivation of a single route segment.
// A false result or non-nil error blocks the transition; ctx carries the
// in-flight transition's cancellation.
type GuardFunc func(ctx context.Context, to, from *State) (bool, error)

// GuardFactory builds a GuardFunc for one route, given access to the
// router's dependencies. Registered per-route, instantiated lazily the
// first time the route needs it (mirrors the JS "factory returns the
// actual guard" idiom from the distilled spec).
type GuardFactory func(get DependencyGetter) GuardFunc

// StaticGuard lifts a boolean short-hand ("always allow"/"always deny")
// into a trivial GuardFactory, per spec §4.5.
func StaticGuard(allow bool) GuardFactory {
	return func(DependencyGetter) GuardFunc {
		return func(context.Context, *State, *State) (bool, error) {
			return allow, nil
		}
	}
}

// MiddlewareFunc runs after all guards have passed. It may allow or
// block the transition, and may substitute the in-flight target State
// for subsequent middleware and for the final committed state. next is
// nil when the middleware does not want to replace the target state.
type MiddlewareFunc func(ctx context.Context, to, from *State) (next *State, allow bool, err error)

// MiddlewareFactory builds a MiddlewareFunc given access to the
// router's dependencies.
type MiddlewareFactory func(get DependencyGetter) MiddlewareFunc
