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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greydragon888/real-router-sub000/contract"
	"github.com/greydragon888/real-router-sub000/routererr"
)

func constMiddleware(tag string) contract.MiddlewareFactory {
	return func(contract.DependencyGetter) contract.MiddlewareFunc {
		return func(ctx context.Context, to, from *contract.State) (*contract.State, bool, error) {
			return nil, true, nil
		}
	}
}

func TestMiddlewarePipelineOrderPreserved(t *testing.T) {
	p := newMiddlewarePipeline(10, noopGetDep)
	var order []string
	mk := func(tag string) contract.MiddlewareFactory {
		return func(contract.DependencyGetter) contract.MiddlewareFunc {
			return func(ctx context.Context, to, from *contract.State) (*contract.State, bool, error) {
				order = append(order, tag)
				return nil, true, nil
			}
		}
	}
	_, err := p.useMiddleware(mk("a"), mk("b"))
	require.NoError(t, err)

	for _, fn := range p.functions() {
		_, _, _ = fn(context.Background(), nil, nil)
	}
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestMiddlewarePipelineUnsubscribeRemovesOnlyItsBatch(t *testing.T) {
	p := newMiddlewarePipeline(10, noopGetDep)
	offA, err := p.useMiddleware(constMiddleware("a"))
	require.NoError(t, err)
	_, err = p.useMiddleware(constMiddleware("b"))
	require.NoError(t, err)
	assert.Equal(t, 2, p.count())

	offA()
	assert.Equal(t, 1, p.count())

	offA() // idempotent
	assert.Equal(t, 1, p.count())
}

func TestMiddlewarePipelineLimitReached(t *testing.T) {
	p := newMiddlewarePipeline(1, noopGetDep)
	_, err := p.useMiddleware(constMiddleware("a"))
	require.NoError(t, err)

	_, err = p.useMiddleware(constMiddleware("b"))
	require.Error(t, err)
	assert.True(t, routererr.Is(err, routererr.CodeMiddlewareLimit))
}

func TestMiddlewarePipelineNilFactoryRejected(t *testing.T) {
	p := newMiddlewarePipeline(10, noopGetDep)
	_, err := p.useMiddleware(nil)
	require.Error(t, err)
	assert.True(t, routererr.Is(err, routererr.CodeInvalidArgument))
	assert.Equal(t, 0, p.count())
}
