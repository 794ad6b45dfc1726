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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greydragon888/real-router-sub000/routererr"
)

func TestDependencyContainerSetGetHasRemove(t *testing.T) {
	c := newDependencyContainer(10, noopLogger, nil)
	require.NoError(t, c.Set("db", "conn"))
	assert.True(t, c.Has("db"))

	v, err := c.Get("db")
	require.NoError(t, err)
	assert.Equal(t, "conn", v)

	c.Remove("db")
	assert.False(t, c.Has("db"))
}

func TestDependencyContainerGetMissingIsError(t *testing.T) {
	c := newDependencyContainer(10, noopLogger, nil)
	_, err := c.Get("missing")
	require.Error(t, err)
	assert.True(t, routererr.Is(err, routererr.CodeDependencyNotFound))
}

func TestDependencyContainerLimitReached(t *testing.T) {
	c := newDependencyContainer(1, noopLogger, nil)
	require.NoError(t, c.Set("a", 1))
	err := c.Set("b", 2)
	require.Error(t, err)
	assert.True(t, routererr.Is(err, routererr.CodeDependencyLimit))
}

func TestDependencyContainerOverwriteDoesNotCountAgainstLimit(t *testing.T) {
	c := newDependencyContainer(1, noopLogger, nil)
	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("a", 2))

	v, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestDependencyContainerSetManySetsAllWithinLimit(t *testing.T) {
	c := newDependencyContainer(1, noopLogger, nil)
	err := c.SetMany(map[string]any{"only": 1})
	require.NoError(t, err)
	assert.True(t, c.Has("only"))
}

func TestDependencyContainerTryGet(t *testing.T) {
	c := newDependencyContainer(10, noopLogger, nil)
	_, ok := c.TryGet("absent")
	assert.False(t, ok)

	require.NoError(t, c.Set("x", 42))
	v, ok := c.TryGet("x")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestDependencyContainerResetClearsEverything(t *testing.T) {
	c := newDependencyContainer(10, noopLogger, nil)
	require.NoError(t, c.Set("x", 1))
	c.Reset()
	assert.False(t, c.Has("x"))
	assert.Empty(t, c.GetAll())
}

func TestIsNaNIdenticalOnlyTrueForTwoNaNFloats(t *testing.T) {
	assert.True(t, isNaNIdentical(math.NaN(), math.NaN()))
	assert.False(t, isNaNIdentical(math.NaN(), 1.0))
	assert.False(t, isNaNIdentical("a", "a"))
}
