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

import "maps"

// Config holds the per-route configuration that lives outside the tree
// itself (spec §3 RouteConfig): decoders, encoders, default params, and
// both flavors of forward target. The resolved forward cache is kept
// here too, since it is invalidated by the same mutations that touch
// the other maps.
type Config struct {
	decoders      map[string]ParamMapper
	encoders      map[string]ParamMapper
	defaultParams map[string]map[string]any
	forwardMap    map[string]string
	forwardFnMap  map[string]ForwardFn
	resolved      map[string]string // resolvedForwardMap cache
	onRebuild     func()
}

// NewConfig returns an empty Config.
func NewConfig() *Config {
	return &Config{
		decoders:      make(map[string]ParamMapper),
		encoders:      make(map[string]ParamMapper),
		defaultParams: make(map[string]map[string]any),
		forwardMap:    make(map[string]string),
		forwardFnMap:  make(map[string]ForwardFn),
		resolved:      make(map[string]string),
	}
}

// Register installs the per-route config declared on d for the fully
// qualified name fqn.
func (c *Config) Register(fqn string, d Definition) {
	if d.DecodeParams != nil {
		c.decoders[fqn] = d.DecodeParams
	}
	if d.EncodeParams != nil {
		c.encoders[fqn] = d.EncodeParams
	}
	if d.DefaultParams != nil {
		c.defaultParams[fqn] = maps.Clone(d.DefaultParams)
	}
	if d.ForwardTo != "" {
		c.forwardMap[fqn] = d.ForwardTo
	}
	if d.ForwardFn != nil {
		c.forwardFnMap[fqn] = d.ForwardFn
	}
	c.InvalidateForwardCache()
}

// Forget removes every config entry (including forwards pointing away
// from the route, but not forwards pointing at it from elsewhere — the
// caller is responsible for dropping static forwards that target fqn,
// using ForgetForwardsTo) for fqn.
func (c *Config) Forget(fqn string) {
	delete(c.decoders, fqn)
	delete(c.encoders, fqn)
	delete(c.defaultParams, fqn)
	delete(c.forwardMap, fqn)
	delete(c.forwardFnMap, fqn)
	c.InvalidateForwardCache()
}

// ForgetForwardsTo removes any forward entries (from any source) whose
// static target is fqn. Dynamic (ForwardFn) targets cannot be inspected
// statically and are left for the resolver's cycle/depth checks to
// catch at resolution time.
func (c *Config) ForgetForwardsTo(fqn string) {
	for src, dst := range c.forwardMap {
		if dst == fqn {
			delete(c.forwardMap, src)
		}
	}
	c.InvalidateForwardCache()
}

// InvalidateForwardCache clears the memoized resolved-forward map,
// reporting whether it actually held anything to rebuild. It must be
// called after any mutation to forwardMap/forwardFnMap.
func (c *Config) InvalidateForwardCache() bool {
	had := len(c.resolved) > 0
	c.resolved = make(map[string]string)
	if had && c.onRebuild != nil {
		c.onRebuild()
	}
	return had
}

// SetOnForwardCacheRebuilt installs fn to be called whenever a
// non-empty resolved-forward cache is invalidated. Not carried over by
// Clone: a cloned Store is wired to its own diagnostic sink by the
// caller, same as its dependency getter.
func (c *Config) SetOnForwardCacheRebuilt(fn func()) {
	c.onRebuild = fn
}

// HasForward reports whether fqn declares a static or dynamic forward.
func (c *Config) HasForward(fqn string) bool {
	if _, ok := c.forwardMap[fqn]; ok {
		return true
	}
	_, ok := c.forwardFnMap[fqn]
	return ok
}

// StaticForward returns the static forward target for fqn, if any.
func (c *Config) StaticForward(fqn string) (string, bool) {
	v, ok := c.forwardMap[fqn]
	return v, ok
}

// DynamicForward returns the dynamic forward function for fqn, if any.
func (c *Config) DynamicForward(fqn string) (ForwardFn, bool) {
	v, ok := c.forwardFnMap[fqn]
	return v, ok
}

// Cached returns a memoized resolved forward target for fqn.
func (c *Config) Cached(fqn string) (string, bool) {
	v, ok := c.resolved[fqn]
	return v, ok
}

// SetCached memoizes the resolved forward target for fqn.
func (c *Config) SetCached(fqn, resolved string) {
	c.resolved[fqn] = resolved
}

// DefaultParams returns a copy of the default params for fqn.
func (c *Config) DefaultParams(fqn string) map[string]any {
	return maps.Clone(c.defaultParams[fqn])
}

// Encode applies fqn's encodeParams mapper, if any.
func (c *Config) Encode(fqn string, params map[string]any) map[string]any {
	if fn, ok := c.encoders[fqn]; ok {
		return fn(params)
	}
	return params
}

// Decode applies fqn's decodeParams mapper, if any.
func (c *Config) Decode(fqn string, params map[string]any) map[string]any {
	if fn, ok := c.decoders[fqn]; ok {
		return fn(params)
	}
	return params
}

// Clone deep-copies the config, used by CloneService. Forward function
// values and mapper function values are shared (functions are not
// deep-copyable), matching spec §4.12's "decoders/encoders shallow,
// defaultParams deep, forwardMap shallow".
func (c *Config) Clone() *Config {
	out := NewConfig()
	maps.Copy(out.decoders, c.decoders)
	maps.Copy(out.encoders, c.encoders)
	for k, v := range c.defaultParams {
		out.defaultParams[k] = maps.Clone(v)
	}
	maps.Copy(out.forwardMap, c.forwardMap)
	maps.Copy(out.forwardFnMap, c.forwardFnMap)
	maps.Copy(out.resolved, c.resolved)
	return out
}
