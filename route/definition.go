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

// Package route owns the route tree: definitions, the compiled tree,
// per-route config (encoders/decoders/defaultParams/forward targets),
// and forward-chain resolution. It has no notion of "the current state"
// or "the active router" — those live one layer up, in the root
// package, so that the tree can be built, validated, and even cloned
// without any live router around.
package route

import "github.com/greydragon888/real-router-sub000/contract"

// ForwardFn dynamically resolves a forward target at match time, given
// access to the router's dependencies and the in-flight params.
type ForwardFn func(get contract.DependencyGetter, params map[string]any) string

// ParamMapper transforms a route's params, used for both encodeParams
// (State params -> URL params) and decodeParams (URL params -> State
// params).
type ParamMapper func(params map[string]any) map[string]any

// Definition is the user-facing route definition from spec §3. Names
// are local; a Definition's fully qualified name is formed by
// dot-joining it with its ancestors' local names when the tree is
// built.
type Definition struct {
	Name     string
	Path     string
	Children []Definition

	CanActivate   contract.GuardFactory
	CanDeactivate contract.GuardFactory

	// ForwardTo is a static forward target. Mutually exclusive with
	// ForwardFn; at most one should be set.
	ForwardTo string
	ForwardFn ForwardFn

	EncodeParams  ParamMapper
	DecodeParams  ParamMapper
	DefaultParams map[string]any
}

// hasForward reports whether this definition declares any forward
// target, static or dynamic.
func (d Definition) hasForward() bool {
	return d.ForwardTo != "" || d.ForwardFn != nil
}
