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

// Package contract holds the small set of types shared by the router's
// core components and by its external collaborators (matcher, path
// builder, query codec). Keeping them in one leaf package, with no
// imports back into the rest of the module, is what lets route, guard,
// middleware and plugin code all refer to the same State type without
// creating import cycles between packages that otherwise have nothing
// to do with each other.
package contract

// ParamKind classifies one named segment of a matched route, recorded in
// State.Meta so consumers (and the core itself, for areStatesEqual) know
// whether a param came from the URL path, a splat/catch-all segment, or
// the query string.
type ParamKind int

const (
	// ParamKindURL is a plain ":name" path segment.
	ParamKindURL ParamKind = iota
	// ParamKindSplat is a "*name" catch-all path segment.
	ParamKindSplat
	// ParamKindQuery is a query-string parameter.
	ParamKindQuery
)

// NavigationOptions are the recognized per-navigation options from
// spec §3. Zero value is "no special behavior".
type NavigationOptions struct {
	// Replace is a hint carried through to listeners; the core never
	// acts on it directly (history replace-vs-push is a plugin concern).
	Replace bool
	// Reload forces re-execution of guards and node updates even when
	// names/params match the current state.
	Reload bool
	// Force bypasses the "same state" short-circuit but does not force
	// node updates the way Reload does.
	Force bool
	// Redirected marks a state as the result of a forward chain
	// resolution rather than a direct navigation request.
	Redirected bool
}

// Meta carries the bookkeeping that rides along with a State but is not
// part of its route identity: the state's own id (redundant with
// State.ID, kept for parity with the distilled spec), the kind of each
// param, the options the navigation was issued with, and whether this
// state is the result of a forward.
type Meta struct {
	ID         int64
	Params     map[string]ParamKind
	Options    NavigationOptions
	Redirected bool
}

// State is the router's notion of "where we are". Every State handed to
// a caller has already been defensively copied by Clone; nothing in this
// package mutates a State in place once returned.
type State struct {
	ID     int64
	Name   string
	Params map[string]any
	Path   string
	Meta   *Meta
}

// UnknownRouteName is the reserved route name used for not-found states
// when OptionsStore.AllowNotFound is enabled and no route matches.
const UnknownRouteName = "@@router/UNKNOWN_ROUTE"

// Clone returns a copy of s with its own Params map and its own Meta
// (including Meta.Params), so that handing out States to callers (or
// threading them through guards/middleware) never lets one caller's
// edits to those maps bleed into another's view of "the current state".
// Param values are copied by assignment: a slice or map stored as a
// param value is shared between s and the copy.
// A nil receiver clones to nil, which keeps call sites that handle an
// optional fromState simple.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := &State{
		ID:   s.ID,
		Name: s.Name,
		Path: s.Path,
	}
	if s.Params != nil {
		out.Params = make(map[string]any, len(s.Params))
		for k, v := range s.Params {
			out.Params[k] = v
		}
	}
	if s.Meta != nil {
		m := &Meta{
			ID:         s.Meta.ID,
			Options:    s.Meta.Options,
			Redirected: s.Meta.Redirected,
		}
		if s.Meta.Params != nil {
			m.Params = make(map[string]ParamKind, len(s.Meta.Params))
			for k, v := range s.Meta.Params {
				m.Params[k] = v
			}
		}
		out.Meta = m
	}
	return out
}

// IsUnknownRoute reports whether s is the reserved not-found sentinel.
func (s *State) IsUnknownRoute() bool {
	return s != nil && s.Name == UnknownRouteName
}
