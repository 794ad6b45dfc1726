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

// Package router is a client-side URL router's core routing engine: the
// route tree, the navigation state machine, the transition pipeline
// (guards + middleware), the plugin/event bus, and dependency-injection
// wiring.
//
// A Router is constructed once with its route table and functional
// options, started with a path or a State, and thereafter driven by
// Navigate/NavigateToDefault. Everything the engine hands back — State
// values, route listings — is defensively copied, so callers can never
// observe a mutation made on another goroutine's copy.
//
// Example:
//
//	r, err := router.New([]route.Definition{
//		{Name: "home", Path: "/"},
//		{Name: "users", Path: "/users", Children: []route.Definition{
//			{Name: "view", Path: "/:id"},
//		}},
//	}, router.WithDefaultRoute("home"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := r.Start(context.Background(), "/users/7"); err != nil {
//		log.Fatal(err)
//	}
//	defer r.Dispose(context.Background())
package router
