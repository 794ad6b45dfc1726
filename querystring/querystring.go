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

// Package querystring is a reference query-string codec: decode a raw
// "a=1&b=2" string into a param map (restricted to a route's declared
// query params in Strict mode), and encode a param map back into a query string. It has
// no dependency on route or the core; any Store can inject its own
// codec as long as it matches the same two-method shape.
package querystring

import (
	"fmt"
	"net/url"
	"sort"
)

// Mode selects how declared-vs-present query params are reconciled.
type Mode int

const (
	// Loose keeps every param present on the URL, declared or not.
	Loose Mode = iota
	// Strict keeps only params the route declares (others are dropped).
	Strict
)

// Codec decodes and encodes query strings against a route's declared
// param names.
type Codec struct {
	Mode Mode
}

// New returns a Codec using the given mode.
func New(mode Mode) *Codec {
	return &Codec{Mode: mode}
}

// Decode parses raw (without the leading '?') into a param map. allowed
// is the route's declared query param names; in Strict mode, only those
// names survive.
func (c *Codec) Decode(raw string, allowed []string) map[string]any {
	if raw == "" {
		return nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil
	}

	var keep map[string]bool
	if c.Mode == Strict {
		keep = make(map[string]bool, len(allowed))
		for _, a := range allowed {
			keep[a] = true
		}
	}

	out := make(map[string]any, len(values))
	for k, v := range values {
		if keep != nil && !keep[k] {
			continue
		}
		if len(v) == 1 {
			out[k] = v[0]
		} else if len(v) > 1 {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Encode renders params (filtered to allowed, in Strict mode) into a
// "a=1&b=2" string, sorted by key for determinism.
func (c *Codec) Encode(params map[string]any, allowed []string) string {
	var keep map[string]bool
	if c.Mode == Strict {
		keep = make(map[string]bool, len(allowed))
		for _, a := range allowed {
			keep[a] = true
		}
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if keep != nil && !keep[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		switch v := params[k].(type) {
		case []string:
			for _, item := range v {
				values.Add(k, item)
			}
		case []any:
			for _, item := range v {
				values.Add(k, toString(item))
			}
		default:
			values.Set(k, toString(v))
		}
	}
	return values.Encode()
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
