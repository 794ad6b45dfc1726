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
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/greydragon888/real-router-sub000/contract"
	"github.com/greydragon888/real-router-sub000/querystring"
	"github.com/greydragon888/real-router-sub000/routererr"
)

// QueryCodec decodes/encodes a route's query params. querystring.Codec
// satisfies this shape; Store falls back to a loose querystring.Codec
// when none is injected.
type QueryCodec interface {
	Decode(raw string, allowed []string) map[string]any
	Encode(params map[string]any, allowed []string) string
}

// Store is the RouteStore component (spec §4.4): the route tree, its
// per-route config, and the operations that read and mutate both.
type Store struct {
	mu       sync.RWMutex
	tree     *Tree
	cfg      *Config
	defs     []Definition
	rootPath string

	matcher    Matcher
	builder    PathBuilder
	queryCodec QueryCodec
	rewriteURL bool
	getDep     contract.DependencyGetter
	onRebuild  func()
}

// New builds an empty Store rooted at rootPath.
func New(rootPath string, matcher Matcher, builder PathBuilder) *Store {
	tree, _ := Build(nil, rootPath)
	return &Store{
		tree:       tree,
		cfg:        NewConfig(),
		rootPath:   rootPath,
		matcher:    matcher,
		builder:    builder,
		queryCodec: querystring.New(querystring.Loose),
	}
}

// SetOnForwardCacheRebuilt wires fn to be called whenever a mutation
// invalidates a non-empty resolved-forward cache. Called once by the
// facade during construction, like SetDependencyGetter.
func (s *Store) SetOnForwardCacheRebuilt(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRebuild = fn
	s.cfg.SetOnForwardCacheRebuilt(fn)
}

// SetDependencyGetter wires the narrow dependency accessor used to
// invoke dynamic forward functions. Called once by the facade during
// construction (late binding, per design notes §9).
func (s *Store) SetDependencyGetter(get contract.DependencyGetter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getDep = get
}

// SetQueryCodec overrides the query-string codec (default: a loose
// querystring.Codec).
func (s *Store) SetQueryCodec(c QueryCodec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryCodec = c
}

// SetRewritePathOnMatch toggles URL rewriting after a successful match.
func (s *Store) SetRewritePathOnMatch(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewriteURL = v
}

// Definitions returns a copy of the currently registered top-level
// definitions (used by CloneService for the tree->definitions
// roundtrip).
func (s *Store) Definitions() []Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Definition, len(s.defs))
	copy(out, s.defs)
	return out
}

// Tree returns the compiled tree (read-only use expected).
func (s *Store) Tree() *Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// HasRoute reports whether name is a registered route.
func (s *Store) HasRoute(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tree.ByName[name]
	return ok
}

// AddRoutes performs spec §4.4 addRoutes: static + state-dependent
// validation, sanitization, tree rebuild, forward-cache refresh. parent
// is "" to add at the root.
func (s *Store) AddRoutes(defs []Definition, parent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateDefinitions(defs); err != nil {
		return err
	}

	newTree := cloneTreeShallow(s.tree)
	for _, d := range defs {
		if err := newTree.AddSubtree(d, parent); err != nil {
			return err
		}
	}

	// Register per-route config for every newly added node, then
	// validate forwards against the fully updated tree.
	newCfg := s.cfg.Clone()
	var registerAll func(d Definition, prefix string)
	registerAll = func(d Definition, prefix string) {
		fqn := d.Name
		if prefix != "" {
			fqn = prefix + "." + d.Name
		}
		newCfg.Register(fqn, d)
		for _, c := range d.Children {
			registerAll(c, fqn)
		}
	}
	for _, d := range defs {
		registerAll(d, parent)
	}

	for _, name := range newTree.Names() {
		if newCfg.HasForward(name) {
			var target string
			if t, ok := newCfg.StaticForward(name); ok {
				target = t
			}
			if target != "" {
				if err := ValidateForward(newTree, newCfg, name, target); err != nil {
					return err
				}
			}
		}
	}

	newCfg.SetOnForwardCacheRebuilt(s.onRebuild)
	s.tree = newTree
	s.cfg = newCfg
	s.defs = append(s.defs, sanitize(defs)...)
	return nil
}

// sanitize strips per-route config down to {name, path, children} for
// storage in defs, per spec §4.4 ("definitions are sanitized ... only").
func sanitize(defs []Definition) []Definition {
	out := make([]Definition, len(defs))
	for i, d := range defs {
		out[i] = Definition{
			Name:     d.Name,
			Path:     d.Path,
			Children: sanitize(d.Children),
		}
	}
	return out
}

func validateDefinitions(defs []Definition) error {
	for _, d := range defs {
		if !nameRe.MatchString(d.Name) {
			return routererr.Newf(routererr.CodeInvalidArgument, "invalid route name %q", d.Name)
		}
		if err := validateDefinitions(d.Children); err != nil {
			return err
		}
	}
	return nil
}

func cloneTreeShallow(t *Tree) *Tree {
	out := &Tree{ByName: make(map[string]*Node, len(t.ByName)), RootPath: t.RootPath}
	out.order = append([]string{}, t.order...)
	// Rebuild node graph from scratch via re-walk so pointers are fresh
	// (cheap at our expected route-table sizes, and keeps ownership
	// unambiguous between old and new trees during a failed AddRoutes).
	for name, n := range t.ByName {
		out.ByName[name] = &Node{
			Name: n.Name, Local: n.Local, PathPattern: n.PathPattern,
			FullPattern: n.FullPattern, QueryParams: append([]string{}, n.QueryParams...),
			Segments: append([]Segment{}, n.Segments...),
		}
	}
	for name, n := range t.ByName {
		newNode := out.ByName[name]
		newNode.Children = make(map[string]*Node, len(n.Children))
		for local, c := range n.Children {
			newNode.Children[local] = out.ByName[c.Name]
		}
		if n.Parent != nil {
			newNode.Parent = out.ByName[n.Parent.Name]
		}
	}
	return out
}

// RemoveRoute implements spec §4.4 removeRoute. isTransitioning and
// activeName let the facade enforce the "refused while TRANSITIONING"
// and "refused if it's the active route or an ancestor of it" rules
// without RouteStore needing to know about the FSM or StateStore.
func (s *Store) RemoveRoute(name string, isTransitioning bool, activeName string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isTransitioning {
		return nil, routererr.New(routererr.CodeInvalidArgument, "cannot remove routes while transitioning")
	}
	if activeName != "" && (activeName == name || strings.HasPrefix(activeName, name+".")) {
		return nil, routererr.Newf(routererr.CodeInvalidArgument, "cannot remove active route %q", name)
	}
	if _, ok := s.tree.ByName[name]; !ok {
		return nil, routererr.Newf(routererr.CodeRouteNotFound, "route %q not found", name)
	}

	removed := s.tree.RemoveSubtree(name)
	for _, n := range removed {
		s.cfg.Forget(n)
		s.cfg.ForgetForwardsTo(n)
	}
	s.defs = removeFromDefs(s.defs, name)
	return removed, nil
}

func removeFromDefs(defs []Definition, name string) []Definition {
	out := make([]Definition, 0, len(defs))
	for _, d := range defs {
		if d.Name == name {
			continue
		}
		d.Children = removeFromDefs(d.Children, strings.TrimPrefix(name, d.Name+"."))
		out = append(out, d)
	}
	return out
}

// ClearRoutes implements spec §4.4 clearRoutes.
func (s *Store) ClearRoutes(isTransitioning bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isTransitioning {
		return routererr.New(routererr.CodeInvalidArgument, "cannot clear routes while transitioning")
	}
	s.tree, _ = Build(nil, s.rootPath)
	s.cfg = NewConfig()
	s.cfg.SetOnForwardCacheRebuilt(s.onRebuild)
	s.defs = nil
	return nil
}

// RouteUpdate carries the optional-field semantics of spec §4.4
// updateRoute: a nil pointer means "no change", a non-nil pointer to a
// zero value still counts as "set", and Clear* flags request explicit
// clearing (the Go stand-in for the distilled spec's null/undefined
// three-way).
type RouteUpdate struct {
	ForwardTo        *string
	ClearForwardTo   bool
	DefaultParams    map[string]any
	ClearDefaultParams bool
	EncodeParams     ParamMapper
	ClearEncodeParams bool
	DecodeParams     ParamMapper
	ClearDecodeParams bool
	CanActivate      contract.GuardFactory
	ClearCanActivate bool
	CanDeactivate    contract.GuardFactory
	ClearCanDeactivate bool
}

// UpdateRoute implements spec §4.4 updateRoute. The CanActivate and
// CanDeactivate fields of u are not applied here: guards live in
// GuardRegistry, a separate component the facade owns, and the facade
// applies those fields itself after this returns.
func (s *Store) UpdateRoute(name string, u RouteUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tree.ByName[name]; !ok {
		return routererr.Newf(routererr.CodeRouteNotFound, "route %q not found", name)
	}

	if u.ClearForwardTo {
		delete(s.cfg.forwardMap, name)
		delete(s.cfg.forwardFnMap, name)
		s.cfg.InvalidateForwardCache()
	} else if u.ForwardTo != nil {
		if err := ValidateForward(s.tree, s.cfg, name, *u.ForwardTo); err != nil {
			return err
		}
		s.cfg.forwardMap[name] = *u.ForwardTo
		s.cfg.InvalidateForwardCache()
	}

	if u.ClearDefaultParams {
		delete(s.cfg.defaultParams, name)
	} else if u.DefaultParams != nil {
		s.cfg.defaultParams[name] = u.DefaultParams
	}

	if u.ClearEncodeParams {
		delete(s.cfg.encoders, name)
	} else if u.EncodeParams != nil {
		s.cfg.encoders[name] = u.EncodeParams
	}

	if u.ClearDecodeParams {
		delete(s.cfg.decoders, name)
	} else if u.DecodeParams != nil {
		s.cfg.decoders[name] = u.DecodeParams
	}

	return nil
}

// BuildPath implements spec §4.4 buildPath: defaultParams, then
// encodeParams, then the injected path builder.
func (s *Store) BuildPath(name string, params map[string]any) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.tree.ByName[name]
	if !ok {
		return "", routererr.Newf(routererr.CodeRouteNotFound, "route %q not found", name)
	}

	merged := mergeParams(s.cfg.DefaultParams(name), params)
	merged = s.cfg.Encode(name, merged)

	strParams := make(map[string]string, len(merged))
	for k, v := range merged {
		strParams[k] = fmt.Sprint(v)
	}

	base, err := s.builder.Build(node.FullPattern, strParams)
	if err != nil {
		return "", routererr.Wrap(routererr.CodeInvalidArgument, "failed to build path for "+name, err)
	}
	if len(node.QueryParams) == 0 {
		return base, nil
	}
	qs := s.queryCodec.Encode(merged, node.QueryParams)
	if qs == "" {
		return base, nil
	}
	return base + "?" + qs, nil
}

func mergeParams(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// MatchResult is what MatchPath hands back for the facade/StateStore to
// turn into a frozen, ID-stamped State.
type MatchResult struct {
	Name       string
	Params     map[string]any
	Path       string
	ParamKinds map[string]contract.ParamKind
	Redirected bool
}

// MatchPath implements spec §4.4 matchPath: match, decode, resolve
// forwards, optionally rewrite, and report the result.
func (s *Store) MatchPath(path string) (*MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base, rawQuery := path, ""
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		base, rawQuery = path[:idx], path[idx+1:]
	}
	name, rawParams, ok := s.matcher.Match(s.tree.Patterns(), base)
	if !ok {
		return nil, routererr.Newf(routererr.CodeRouteNotFound, "no route matches %q", path)
	}
	node := s.tree.ByName[name]

	params := make(map[string]any, len(rawParams))
	kinds := make(map[string]contract.ParamKind, len(rawParams))
	for _, seg := range node.Segments {
		if seg.Kind == SegParam {
			kinds[seg.Name] = contract.ParamKindURL
		} else if seg.Kind == SegSplat {
			kinds[seg.Name] = contract.ParamKindSplat
		}
	}
	for k, v := range rawParams {
		params[k] = v
	}

	if len(node.QueryParams) > 0 && rawQuery != "" {
		decoded := s.queryCodec.Decode(rawQuery, node.QueryParams)
		for k, v := range decoded {
			params[k] = v
			kinds[k] = contract.ParamKindQuery
		}
	}

	params = s.cfg.Decode(name, params)

	resolved, err := ResolveForward(s.tree, s.cfg, name, params, s.getDep)
	if err != nil {
		return nil, err
	}
	redirected := resolved != name
	finalName := resolved
	finalParams := params
	if redirected {
		finalParams = s.forwardParams(name, resolved, params)
	}

	finalPath := path
	if s.rewriteURL {
		if built, err := s.BuildPathLocked(finalName, finalParams); err == nil {
			finalPath = built
		}
	}

	return &MatchResult{
		Name:       finalName,
		Params:     finalParams,
		Path:       finalPath,
		ParamKinds: kinds,
		Redirected: redirected,
	}, nil
}

// BuildPathLocked is BuildPath without re-acquiring the read lock, for
// internal use from within an already-locked method.
func (s *Store) BuildPathLocked(name string, params map[string]any) (string, error) {
	node, ok := s.tree.ByName[name]
	if !ok {
		return "", routererr.Newf(routererr.CodeRouteNotFound, "route %q not found", name)
	}
	merged := mergeParams(s.cfg.DefaultParams(name), params)
	merged = s.cfg.Encode(name, merged)
	strParams := make(map[string]string, len(merged))
	for k, v := range merged {
		strParams[k] = fmt.Sprint(v)
	}
	return s.builder.Build(node.FullPattern, strParams)
}

// ForwardState implements spec §4.4 forwardState: merge source
// defaults, provided params, then (after chain resolution) target
// defaults.
func (s *Store) ForwardState(name string, params map[string]any) (string, map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	merged := mergeParams(s.cfg.DefaultParams(name), params)
	resolved, err := ResolveForward(s.tree, s.cfg, name, merged, s.getDep)
	if err != nil {
		return "", nil, err
	}
	final := s.forwardParams(name, resolved, merged)
	return resolved, final, nil
}

func (s *Store) forwardParams(src, dst string, params map[string]any) map[string]any {
	merged := mergeParams(s.cfg.DefaultParams(src), params)
	merged = mergeParams(merged, nil)
	return mergeParams(s.cfg.DefaultParams(dst), merged)
}

// IsActiveRoute implements spec §4.4 isActiveRoute. active is the
// router's current State (nil if none); the empty-name case is the
// facade's responsibility to warn about before calling this.
func (s *Store) IsActiveRoute(name string, params map[string]any, strictEquality, ignoreQueryParams bool, active *contract.State) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name == "" || active == nil {
		return false
	}
	node, ok := s.tree.ByName[name]
	if !ok {
		return false
	}
	activeNode, ok := s.tree.ByName[active.Name]
	if !ok {
		return false
	}

	if strictEquality {
		if active.Name != name {
			return false
		}
		merged := mergeParams(s.cfg.DefaultParams(name), params)
		return paramsEqual(active.Params, merged, ignoreQueryParams, node.QueryParams)
	}

	if activeNode.Name == name {
		return false // must be a *proper* descendant
	}
	if !activeNode.IsDescendantOf(name) {
		return false
	}
	merged := mergeParams(s.cfg.DefaultParams(name), params)
	for k, v := range merged {
		if av, ok := active.Params[k]; !ok || !reflect.DeepEqual(av, v) {
			return false
		}
	}
	return true
}

func paramsEqual(a, b map[string]any, ignoreQuery bool, queryParams []string) bool {
	isQuery := make(map[string]bool, len(queryParams))
	for _, q := range queryParams {
		isQuery[q] = true
	}
	keys := make(map[string]bool)
	for k := range a {
		if ignoreQuery && isQuery[k] {
			continue
		}
		keys[k] = true
	}
	for k := range b {
		if ignoreQuery && isQuery[k] {
			continue
		}
		keys[k] = true
	}
	for k := range keys {
		if !reflect.DeepEqual(a[k], b[k]) {
			return false
		}
	}
	return true
}

// TransitionPath implements the segment-diff half of spec §4.11 step 1,
// shared by TransitionEngine and ShouldUpdateNode: the longest common
// prefix ("intersection") of two dot-joined names, plus the deactivate
// (deepest-first) and activate (shallowest-first) lists.
func TransitionPath(toName, fromName string) (intersection string, toActivate, toDeactivate []string) {
	if fromName == "" {
		return "", namesFrom(splitName(toName), 0), nil
	}
	toSegs := splitName(toName)
	fromSegs := splitName(fromName)

	i := 0
	for i < len(toSegs) && i < len(fromSegs) && toSegs[i] == fromSegs[i] {
		i++
	}

	intersectionSegs := toSegs[:i]
	intersection = strings.Join(intersectionSegs, ".")

	toActivate = namesFrom(toSegs, i)
	deactivate := namesFrom(fromSegs, i)
	for l, r := 0, len(deactivate)-1; l < r; l, r = l+1, r-1 {
		deactivate[l], deactivate[r] = deactivate[r], deactivate[l]
	}
	toDeactivate = deactivate
	return intersection, toActivate, toDeactivate
}

func splitName(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, ".")
}

// namesFrom returns the fully-qualified names of segs[from:], each one
// being the dot-join of segs[:k] for increasing k.
func namesFrom(segs []string, from int) []string {
	if from >= len(segs) {
		return nil
	}
	out := make([]string, 0, len(segs)-from)
	for k := from; k < len(segs); k++ {
		out = append(out, strings.Join(segs[:k+1], "."))
	}
	return out
}

// ShouldUpdateNode implements spec §4.4 shouldUpdateNode.
func (s *Store) ShouldUpdateNode(nodeName string) func(to, from *contract.State) bool {
	return func(to, from *contract.State) bool {
		if to != nil && to.Meta != nil && to.Meta.Options.Reload {
			return true
		}
		if nodeName == "" && from == nil {
			return true
		}
		toName := ""
		if to != nil {
			toName = to.Name
		}
		fromName := ""
		if from != nil {
			fromName = from.Name
		}
		intersection, toActivate, toDeactivate := TransitionPath(toName, fromName)
		if nodeName == intersection {
			return true
		}
		for _, n := range toActivate {
			if n == nodeName {
				return true
			}
		}
		for _, n := range toDeactivate {
			if n == nodeName {
				return true
			}
		}
		return false
	}
}

// Clone deep-copies the store's tree and config for CloneService. The
// matcher/builder/queryCodec/rewriteURL configuration is copied too;
// getDep is intentionally left unset (the clone gets its own
// dependency container wired by the facade).
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &Store{
		tree:       cloneTreeShallow(s.tree),
		cfg:        s.cfg.Clone(),
		defs:       append([]Definition{}, s.defs...),
		rootPath:   s.rootPath,
		matcher:    s.matcher,
		builder:    s.builder,
		queryCodec: s.queryCodec,
		rewriteURL: s.rewriteURL,
	}
	return out
}
