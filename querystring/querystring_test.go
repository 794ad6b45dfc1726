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

package querystring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeLooseKeepsUndeclared(t *testing.T) {
	c := New(Loose)
	out := c.Decode("sort=name&page=2", []string{"sort"})
	assert.Equal(t, "name", out["sort"])
	assert.Equal(t, "2", out["page"])
}

func TestDecodeStrictDropsUndeclared(t *testing.T) {
	c := New(Strict)
	out := c.Decode("sort=name&page=2", []string{"sort"})
	assert.Equal(t, "name", out["sort"])
	_, ok := out["page"]
	assert.False(t, ok)
}

func TestDecodeEmpty(t *testing.T) {
	c := New(Loose)
	assert.Nil(t, c.Decode("", nil))
}

func TestEncodeSortsKeys(t *testing.T) {
	c := New(Loose)
	got := c.Encode(map[string]any{"b": "2", "a": "1"}, nil)
	assert.Equal(t, "a=1&b=2", got)
}

func TestEncodeStrictFiltersKeys(t *testing.T) {
	c := New(Strict)
	got := c.Encode(map[string]any{"sort": "name", "page": 2}, []string{"sort"})
	assert.Equal(t, "sort=name", got)
}

func TestEncodeMultiValue(t *testing.T) {
	c := New(Loose)
	got := c.Encode(map[string]any{"tag": []string{"a", "b"}}, nil)
	assert.Equal(t, "tag=a&tag=b", got)
}
