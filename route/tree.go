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
	"regexp"
	"strings"

	"github.com/greydragon888/real-router-sub000/routererr"
)

// SegmentKind classifies one token of a node's own path pattern.
type SegmentKind int

const (
	SegStatic SegmentKind = iota
	SegParam
	SegSplat
)

// Segment is one "/"-delimited token of a node's own (non-accumulated)
// path pattern.
type Segment struct {
	Kind SegmentKind
	Name string // literal value for SegStatic, param name otherwise
}

// Node is one compiled tree node. Its FullPattern is the accumulated
// pattern from the tree root down to and including this node, which is
// what matchers and path builders actually operate on.
type Node struct {
	Name        string // fully qualified, dot-joined
	Local       string
	PathPattern string // this node's own path segment (as declared)
	FullPattern string // root-accumulated pattern
	QueryParams []string
	Segments    []Segment // this node's own segments (not accumulated)
	Parent      *Node
	Children    map[string]*Node // keyed by local name
}

// RequiredParams returns the set of URL/splat param names that must be
// supplied to build a full path for this node: its own params plus
// every ancestor's params.
func (n *Node) RequiredParams() map[string]bool {
	out := make(map[string]bool)
	for cur := n; cur != nil; cur = cur.Parent {
		for _, seg := range cur.Segments {
			if seg.Kind == SegParam || seg.Kind == SegSplat {
				out[seg.Name] = true
			}
		}
	}
	return out
}

// IsDescendantOf reports whether n is name or a strict descendant of
// name, by dot-segment prefix comparison.
func (n *Node) IsDescendantOf(name string) bool {
	if name == "" {
		return false
	}
	if n.Name == name {
		return true
	}
	return strings.HasPrefix(n.Name, name+".")
}

// Tree is the compiled form of a set of Definitions.
type Tree struct {
	ByName   map[string]*Node
	RootPath string
	order    []string // insertion order, for deterministic iteration
}

var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Build compiles defs into a Tree rooted at rootPath. It performs the
// "static validation" half of spec §4.4 addRoutes: well-formed names
// and paths. State-dependent validation (duplicates against routes
// already registered elsewhere, forward target existence, cycles) is
// the caller's job, since it requires context Build does not have.
func Build(defs []Definition, rootPath string) (*Tree, error) {
	t := &Tree{ByName: make(map[string]*Node), RootPath: rootPath}
	for _, d := range defs {
		if err := t.addSubtree(d, nil); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddSubtree compiles and attaches a single definition (and its
// children) to an existing tree, for incremental RouteStore.AddRoutes
// calls. parentName is "" to attach at the root.
func (t *Tree) AddSubtree(d Definition, parentName string) error {
	var parent *Node
	if parentName != "" {
		var ok bool
		parent, ok = t.ByName[parentName]
		if !ok {
			return routererr.Newf(routererr.CodeInvalidArgument, "unknown parent route %q", parentName)
		}
	}
	return t.addSubtree(d, parent)
}

func (t *Tree) addSubtree(d Definition, parent *Node) error {
	if !nameRe.MatchString(d.Name) {
		return routererr.Newf(routererr.CodeInvalidArgument, "invalid route name %q", d.Name)
	}
	fqn := d.Name
	if parent != nil {
		fqn = parent.Name + "." + d.Name
	}
	if _, exists := t.ByName[fqn]; exists {
		return routererr.Newf(routererr.CodeInvalidArgument, "duplicate route name %q", fqn)
	}

	pathPattern, queryParams := splitQuery(d.Path)
	segments, err := parseSegments(pathPattern)
	if err != nil {
		return err
	}

	full := pathPattern
	if parent != nil {
		full = joinPaths(parent.FullPattern, pathPattern)
	} else {
		full = joinPaths(t.RootPath, pathPattern)
	}

	node := &Node{
		Name:        fqn,
		Local:       d.Name,
		PathPattern: pathPattern,
		FullPattern: full,
		QueryParams: queryParams,
		Segments:    segments,
		Parent:      parent,
		Children:    make(map[string]*Node),
	}
	if parent != nil {
		parent.Children[d.Name] = node
	}
	t.ByName[fqn] = node
	t.order = append(t.order, fqn)

	for _, child := range d.Children {
		if err := t.addSubtree(child, node); err != nil {
			return err
		}
	}
	return nil
}

// RemoveSubtree deletes name and all of its descendants from the tree,
// detaching it from its parent's children map. Returns the removed
// fully-qualified names.
func (t *Tree) RemoveSubtree(name string) []string {
	node, ok := t.ByName[name]
	if !ok {
		return nil
	}
	var removed []string
	var walk func(n *Node)
	walk = func(n *Node) {
		removed = append(removed, n.Name)
		delete(t.ByName, n.Name)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(node)
	if node.Parent != nil {
		delete(node.Parent.Children, node.Local)
	}
	newOrder := t.order[:0:0]
	removedSet := make(map[string]bool, len(removed))
	for _, r := range removed {
		removedSet[r] = true
	}
	for _, n := range t.order {
		if !removedSet[n] {
			newOrder = append(newOrder, n)
		}
	}
	t.order = newOrder
	return removed
}

// Names returns the fully qualified route names in registration order.
func (t *Tree) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Patterns returns a name -> FullPattern map for every node, the shape
// external Matcher/PathBuilder implementations consume.
func (t *Tree) Patterns() map[string]string {
	out := make(map[string]string, len(t.ByName))
	for name, n := range t.ByName {
		out[name] = n.FullPattern
	}
	return out
}

func splitQuery(path string) (string, []string) {
	idx := strings.IndexByte(path, '?')
	if idx == -1 {
		return path, nil
	}
	base := path[:idx]
	qs := path[idx+1:]
	if qs == "" {
		return base, nil
	}
	return base, strings.Split(qs, "&")
}

func parseSegments(path string) ([]Segment, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, "/")
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		switch {
		case strings.HasPrefix(p, ":"):
			name := p[1:]
			if name == "" {
				return nil, routererr.Newf(routererr.CodeInvalidArgument, "empty param name in path %q", path)
			}
			segs = append(segs, Segment{Kind: SegParam, Name: name})
		case strings.HasPrefix(p, "*"):
			name := p[1:]
			if name == "" {
				name = "splat"
			}
			segs = append(segs, Segment{Kind: SegSplat, Name: name})
		default:
			segs = append(segs, Segment{Kind: SegStatic, Name: p})
		}
	}
	return segs, nil
}

func joinPaths(a, b string) string {
	a = strings.TrimSuffix(a, "/")
	if b == "" {
		if a == "" {
			return "/"
		}
		return a
	}
	if !strings.HasPrefix(b, "/") {
		b = "/" + b
	}
	joined := a + b
	if joined == "" {
		return "/"
	}
	return joined
}
