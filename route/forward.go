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

package route

import (
	"github.com/greydragon888/real-router-sub000/contract"
	"github.com/greydragon888/real-router-sub000/routererr"
)

// MaxForwardChainLength is the hard cap on resolved forward chain
// length from spec §3/§4.12.
const MaxForwardChainLength = 100

// ResolveForward follows forwardMap/forwardFnMap from name until a node
// without a forward is reached, memoizing the result in cfg's resolved
// cache. get is used to invoke dynamic (ForwardFn) targets; it may be
// nil if no dynamic forwards are registered.
func ResolveForward(tree *Tree, cfg *Config, name string, params map[string]any, get contract.DependencyGetter) (string, error) {
	if cached, ok := cfg.Cached(name); ok {
		return cached, nil
	}

	visited := make(map[string]bool)
	cur := name
	depth := 0
	for {
		if !cfg.HasForward(cur) {
			cfg.SetCached(name, cur)
			return cur, nil
		}
		if visited[cur] {
			return "", routererr.Newf(routererr.CodeCircularForward, "circular forward detected at %q", cur)
		}
		visited[cur] = true
		depth++
		if depth > MaxForwardChainLength {
			return "", routererr.Newf(routererr.CodeForwardDepthExceeded, "forward chain from %q exceeds %d hops", name, MaxForwardChainLength)
		}

		var next string
		if target, ok := cfg.StaticForward(cur); ok {
			next = target
		} else if fn, ok := cfg.DynamicForward(cur); ok {
			next = fn(get, params)
		}
		if next == "" {
			return "", routererr.Newf(routererr.CodeRouteNotFound, "forward target for %q resolved to empty name", cur)
		}
		if _, ok := tree.ByName[next]; !ok {
			return "", routererr.Newf(routererr.CodeRouteNotFound, "forward target %q does not exist", next)
		}
		cur = next
	}
}

// ValidateForward checks that adding/updating a forward from src to dst
// does not introduce a cycle and that dst's required params are a
// subset of src's (spec §4.4 parameter compatibility rule). It does
// not mutate cfg.
func ValidateForward(tree *Tree, cfg *Config, src, dst string) error {
	dstNode, ok := tree.ByName[dst]
	if !ok {
		return routererr.Newf(routererr.CodeRouteNotFound, "forward target %q does not exist", dst)
	}
	srcNode, ok := tree.ByName[src]
	if !ok {
		return routererr.Newf(routererr.CodeRouteNotFound, "forward source %q does not exist", src)
	}

	// Cycle check: walk the existing chain from dst; if we ever reach
	// src again (directly or through further forwards), it's a cycle.
	visited := map[string]bool{src: true}
	cur := dst
	depth := 0
	for cfg.HasForward(cur) {
		if visited[cur] {
			return routererr.Newf(routererr.CodeCircularForward, "forward %s -> %s would create a cycle", src, dst)
		}
		visited[cur] = true
		depth++
		if depth > MaxForwardChainLength {
			return routererr.Newf(routererr.CodeForwardDepthExceeded, "forward chain would exceed %d hops", MaxForwardChainLength)
		}
		if target, ok := cfg.StaticForward(cur); ok {
			if target == src {
				return routererr.Newf(routererr.CodeCircularForward, "forward %s -> %s would create a cycle", src, dst)
			}
			cur = target
			continue
		}
		// Dynamic forwards cannot be statically resolved; stop here.
		break
	}
	if dst == src {
		return routererr.Newf(routererr.CodeCircularForward, "forward %s -> %s would create a cycle", src, dst)
	}

	required := dstNode.RequiredParams()
	available := srcNode.RequiredParams()
	for p := range required {
		if !available[p] {
			return routererr.Newf(routererr.CodeForwardParamMismatch, "forward target %q requires param %q not present on source %q", dst, p, src)
		}
	}
	return nil
}
