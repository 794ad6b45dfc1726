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
	"sync"

	"github.com/greydragon888/real-router-sub000/routererr"
)

// dependencyContainer is the DependencyContainer component (C4): a
// named registry of opaque values, bounded in size. Grounded on the
// plain map[string]any + sync.RWMutex pattern the pack uses for
// request-scoped context values (there is no dedicated DI library
// anywhere in the pack to ground a richer implementation on).
type dependencyContainer struct {
	mu          sync.RWMutex
	values      map[string]any
	limit       int
	logger      LoggerSink
	diagnostics DiagnosticHandler
}

func newDependencyContainer(limit int, logger LoggerSink, diagnostics DiagnosticHandler) *dependencyContainer {
	return &dependencyContainer{
		values:      make(map[string]any),
		limit:       limit,
		logger:      logger,
		diagnostics: diagnostics,
	}
}

// Set installs name -> value, warning (not failing) on overwrite unless
// the new value is identically NaN to the old (an idempotent
// self-overwrite pattern some callers use to mean "no-op write").
func (c *dependencyContainer) Set(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.values[name]; ok {
		if !isNaNIdentical(existing, value) {
			c.logger.Warn("dependency overwritten", "name", name)
			if c.diagnostics != nil {
				c.diagnostics.OnDiagnostic(DiagnosticEvent{
					Kind:    DiagnosticDependencyOverwritten,
					Message: "dependency overwritten",
					Fields:  map[string]any{"name": name},
				})
			}
		}
		c.values[name] = value
		return nil
	}

	if len(c.values) >= c.limit {
		return routererr.Newf(routererr.CodeDependencyLimit, "dependency limit of %d reached", c.limit)
	}
	c.values[name] = value
	return nil
}

// SetMany sets multiple dependencies, stopping at the first error (the
// container is left with whatever subset succeeded before the error).
func (c *dependencyContainer) SetMany(values map[string]any) error {
	for name, v := range values {
		if err := c.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the named dependency, or dependency_not_found.
func (c *dependencyContainer) Get(name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[name]
	if !ok {
		return nil, routererr.Newf(routererr.CodeDependencyNotFound, "dependency %q not found", name)
	}
	return v, nil
}

// TryGet is the narrow DependencyGetter shape guard/middleware factories
// receive (contract.DependencyGetter).
func (c *dependencyContainer) TryGet(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[name]
	return v, ok
}

// GetAll returns a shallow copy of every registered dependency.
func (c *dependencyContainer) GetAll() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Has reports whether name is registered.
func (c *dependencyContainer) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[name]
	return ok
}

// Remove deletes name, a no-op if absent.
func (c *dependencyContainer) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, name)
}

// Reset clears every dependency.
func (c *dependencyContainer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]any)
}

func isNaNIdentical(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	return aok && bok && math.IsNaN(af) && math.IsNaN(bf)
}
