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

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greydragon888/real-router-sub000/route"
)

// fakeMatcher/fakeBuilder are minimal stand-ins for the injected path
// matching strategy, enough to exercise the router facade and
// transition engine without depending on pathmatch's segment-trie semantics.
type fakeMatcher struct{}

func (fakeMatcher) Match(candidates map[string]string, path string) (string, map[string]string, bool) {
	for name, pattern := range candidates {
		params := map[string]string{}
		pParts := strings.Split(strings.Trim(pattern, "/"), "/")
		pathParts := strings.Split(strings.Trim(path, "/"), "/")
		if len(pParts) != len(pathParts) {
			continue
		}
		ok := true
		for i, seg := range pParts {
			switch {
			case strings.HasPrefix(seg, ":"):
				params[seg[1:]] = pathParts[i]
			case seg != pathParts[i]:
				ok = false
			}
		}
		if ok {
			return name, params, true
		}
	}
	return "", nil, false
}

type fakeBuilder struct{}

func (fakeBuilder) Build(pattern string, params map[string]string) (string, error) {
	out := pattern
	for k, v := range params {
		out = strings.ReplaceAll(out, ":"+k, v)
	}
	return out, nil
}

// newTestStore builds a route.Store with two top level routes and a
// child route, enough for transition and facade tests.
func newTestStore(t *testing.T) *route.Store {
	t.Helper()
	s := route.New("", fakeMatcher{}, fakeBuilder{})
	err := s.AddRoutes([]route.Definition{
		{Name: "home", Path: "/home"},
		{
			Name: "users", Path: "/users",
			Children: []route.Definition{
				{Name: "view", Path: "/:id"},
			},
		},
	}, "")
	require.NoError(t, err)
	return s
}
