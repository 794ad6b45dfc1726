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

package pathmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var candidates = map[string]string{
	"home":        "/home",
	"users.view":  "/users/:id",
	"users.list":  "/users",
	"files.serve": "/files/*filepath",
}

func TestMatchStaticRoute(t *testing.T) {
	name, params, ok := Matcher{}.Match(candidates, "/home")
	require.True(t, ok)
	assert.Equal(t, "home", name)
	assert.Empty(t, params)
}

func TestMatchParamRoute(t *testing.T) {
	name, params, ok := Matcher{}.Match(candidates, "/users/42")
	require.True(t, ok)
	assert.Equal(t, "users.view", name)
	assert.Equal(t, "42", params["id"])
}

func TestMatchPrefersStaticOverParam(t *testing.T) {
	name, _, ok := Matcher{}.Match(candidates, "/users")
	require.True(t, ok)
	assert.Equal(t, "users.list", name)
}

func TestMatchSplatRoute(t *testing.T) {
	name, params, ok := Matcher{}.Match(candidates, "/files/a/b/c.txt")
	require.True(t, ok)
	assert.Equal(t, "files.serve", name)
	assert.Equal(t, "a/b/c.txt", params["filepath"])
}

func TestMatchNoRoute(t *testing.T) {
	_, _, ok := Matcher{}.Match(candidates, "/nowhere")
	assert.False(t, ok)
}

func TestBuildSubstitutesParams(t *testing.T) {
	p, err := Builder{}.Build("/users/:id", map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/users/7", p)
}

func TestBuildMissingParam(t *testing.T) {
	_, err := Builder{}.Build("/users/:id", nil)
	require.Error(t, err)
	var mpe *MissingParamError
	assert.ErrorAs(t, err, &mpe)
}

func TestBuildStaticRoute(t *testing.T) {
	p, err := Builder{}.Build("/home", nil)
	require.NoError(t, err)
	assert.Equal(t, "/home", p)
}
