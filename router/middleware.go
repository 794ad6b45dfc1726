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
	"sync"

	"github.com/greydragon888/real-router-sub000/contract"
	"github.com/greydragon888/real-router-sub000/routererr"
)

// middlewareEntry pairs a registered factory with its instantiated
// function and a batch id, so useMiddleware's unsubscribe can remove
// exactly the entries it added without disturbing insertion order for
// the rest.
type middlewareEntry struct {
	batch   int64
	factory contract.MiddlewareFactory
	fn      contract.MiddlewareFunc
}

// middlewarePipeline is the MiddlewarePipeline component (C7): an
// ordered, insertion-stable sequence of middleware.
type middlewarePipeline struct {
	mu      sync.Mutex
	entries []middlewareEntry
	nextID  int64
	limit   int
	getDep  contract.DependencyGetter
}

func newMiddlewarePipeline(limit int, getDep contract.DependencyGetter) *middlewarePipeline {
	return &middlewarePipeline{limit: limit, getDep: getDep}
}

func (p *middlewarePipeline) SetDependencyGetter(get contract.DependencyGetter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getDep = get
}

// useMiddleware instantiates each factory in order and appends the
// resulting functions as one batch, or installs none of them if any
// factory is invalid or the limit would be exceeded. The returned
// unsubscribe removes exactly this batch, idempotently.
func (p *middlewarePipeline) useMiddleware(factories ...contract.MiddlewareFactory) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range factories {
		if f == nil {
			return nil, routererr.Newf(routererr.CodeInvalidArgument, "middleware factory must not be nil")
		}
	}
	if len(p.entries)+len(factories) > p.limit {
		return nil, routererr.Newf(routererr.CodeMiddlewareLimit, "middleware limit of %d reached", p.limit)
	}

	p.nextID++
	batch := p.nextID

	added := make([]middlewareEntry, 0, len(factories))
	for _, f := range factories {
		fn := f(p.getDep)
		if fn == nil {
			return nil, routererr.Newf(routererr.CodeInvalidArgument, "middleware factory produced a nil function")
		}
		added = append(added, middlewareEntry{batch: batch, factory: f, fn: fn})
	}

	p.entries = append(p.entries, added...)

	var once sync.Once
	return func() {
		once.Do(func() { p.removeBatch(batch) })
	}, nil
}

func (p *middlewarePipeline) removeBatch(batch int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.entries[:0:0]
	for _, e := range p.entries {
		if e.batch != batch {
			kept = append(kept, e)
		}
	}
	p.entries = kept
}

// clearAll removes every middleware.
func (p *middlewarePipeline) clearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
}

// count reports the number of installed middleware functions.
func (p *middlewarePipeline) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// functions returns a snapshot of the installed middleware functions, in
// registration order.
func (p *middlewarePipeline) functions() []contract.MiddlewareFunc {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]contract.MiddlewareFunc, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.fn
	}
	return out
}

// factories returns a snapshot of the registered middleware factories,
// in registration order, for CloneService.
func (p *middlewarePipeline) factories() []contract.MiddlewareFactory {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]contract.MiddlewareFactory, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.factory
	}
	return out
}
