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

// Matcher and PathBuilder are the two external collaborators spec §1
// calls out as out of scope for the core: "the core consumes a matcher
// (path->segments+params) and a path builder (name+params->path)".
// They operate purely on name->pattern maps, never on *Tree directly,
// so a reference implementation (see the pathmatch package) has no
// need to import route at all beyond these two interfaces.

// Matcher resolves a concrete URL path against the set of candidate
// patterns (route name -> full accumulated pattern, as produced by
// Tree.Patterns) and extracts path params.
type Matcher interface {
	Match(candidates map[string]string, path string) (name string, params map[string]string, ok bool)
}

// PathBuilder renders a concrete path from a pattern and params.
type PathBuilder interface {
	Build(pattern string, params map[string]string) (string, error)
}
