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

// Package pathmatch is a reference implementation of the route package's
// Matcher and PathBuilder collaborators (spec §1's "the core consumes a
// matcher and a path builder"). It matches route.Matcher/route.PathBuilder
// structurally, without importing route, so the core stays unaware of any
// particular matching strategy.
package pathmatch

import "strings"

// segKind classifies one token of a candidate pattern.
type segKind int

const (
	segStatic segKind = iota
	segParam
	segSplat
)

type edge struct {
	label string
	node  *node
}

// node is one level of the ephemeral trie built for a single Match call.
// Routers rarely change their candidate set at runtime, so rebuilding per
// call keeps the matcher stateless; callers matching at high volume
// against a stable route table should wrap Matcher in their own cache.
type node struct {
	edges []edge
	param *paramEdge
	splat *splatEdge
	name  string // route name, set only on terminal nodes
	leaf  bool
}

type paramEdge struct {
	key  string
	node *node
}

type splatEdge struct {
	key  string
	name string
}

func (n *node) child(label string) *node {
	for i := range n.edges {
		if n.edges[i].label == label {
			return n.edges[i].node
		}
	}
	return nil
}

func (n *node) childOrCreate(label string) *node {
	if c := n.child(label); c != nil {
		return c
	}
	c := &node{}
	n.edges = append(n.edges, edge{label: label, node: c})
	return c
}

func classify(segment string) (segKind, string) {
	switch {
	case strings.HasPrefix(segment, ":"):
		return segParam, segment[1:]
	case strings.HasPrefix(segment, "*"):
		name := segment[1:]
		if name == "" {
			name = "splat"
		}
		return segSplat, name
	default:
		return segStatic, segment
	}
}

func build(candidates map[string]string) *node {
	root := &node{}
	for name, pattern := range candidates {
		trimmed := strings.Trim(pattern, "/")
		cur := root
		if trimmed == "" {
			cur.leaf = true
			cur.name = name
			continue
		}
		segs := strings.Split(trimmed, "/")
		for i, seg := range segs {
			kind, key := classify(seg)
			last := i == len(segs)-1
			switch kind {
			case segStatic:
				cur = cur.childOrCreate(seg)
			case segParam:
				if cur.param == nil {
					cur.param = &paramEdge{key: key, node: &node{}}
				}
				cur = cur.param.node
			case segSplat:
				cur.splat = &splatEdge{key: key, name: name}
				if last {
					// splat always terminates the pattern
				}
			}
			if last && kind != segSplat {
				cur.leaf = true
				cur.name = name
			}
		}
	}
	return root
}

// Matcher is a radix-style reference implementation of route.Matcher.
type Matcher struct{}

// Match implements route.Matcher.
func (Matcher) Match(candidates map[string]string, path string) (string, map[string]string, bool) {
	root := build(candidates)
	trimmed := strings.Trim(path, "/")

	cur := root
	params := map[string]string{}
	if trimmed == "" {
		if cur.leaf {
			return cur.name, params, true
		}
		return "", nil, false
	}

	segs := strings.Split(trimmed, "/")
	for i, seg := range segs {
		last := i == len(segs)-1
		if next := cur.child(seg); next != nil {
			cur = next
		} else if cur.param != nil {
			params[cur.param.key] = seg
			cur = cur.param.node
		} else if cur.splat != nil {
			params[cur.splat.key] = strings.Join(segs[i:], "/")
			return cur.splat.name, params, true
		} else {
			return "", nil, false
		}

		if last {
			if cur.leaf {
				return cur.name, params, true
			}
			if cur.splat != nil {
				params[cur.splat.key] = ""
				return cur.splat.name, params, true
			}
			return "", nil, false
		}
	}
	return "", nil, false
}

// Builder is a reference implementation of route.PathBuilder: it
// substitutes ":name"/"*name" tokens with the supplied params.
type Builder struct{}

// Build implements route.PathBuilder.
func (Builder) Build(pattern string, params map[string]string) (string, error) {
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return "/", nil
	}
	segs := strings.Split(trimmed, "/")
	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		kind, key := classify(seg)
		switch kind {
		case segParam, segSplat:
			v, ok := params[key]
			if !ok {
				return "", &MissingParamError{Param: key}
			}
			out = append(out, v)
		default:
			out = append(out, seg)
		}
	}
	return "/" + strings.Join(out, "/"), nil
}

// MissingParamError is returned by Builder.Build when a pattern
// references a param not present in the supplied map.
type MissingParamError struct {
	Param string
}

func (e *MissingParamError) Error() string {
	return "pathmatch: missing param " + e.Param
}
