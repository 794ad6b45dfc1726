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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFSMHappyPath(t *testing.T) {
	f := newFSM()
	assert.Equal(t, StateIdle, f.Current())

	next, ok := f.Send(EventStart)
	assert.True(t, ok)
	assert.Equal(t, StateStarting, next)

	next, ok = f.Send(EventStarted)
	assert.True(t, ok)
	assert.Equal(t, StateReady, next)
	assert.True(t, f.IsReady())

	next, ok = f.Send(EventNavigate)
	assert.True(t, ok)
	assert.Equal(t, StateTransitioning, next)
	assert.True(t, f.IsTransitioning())

	next, ok = f.Send(EventComplete)
	assert.True(t, ok)
	assert.Equal(t, StateReady, next)
}

func TestFSMDisallowedSendIsNoOp(t *testing.T) {
	f := newFSM()
	next, ok := f.Send(EventNavigate)
	assert.False(t, ok)
	assert.Equal(t, StateIdle, next)
	assert.Equal(t, StateIdle, f.Current())
}

func TestFSMDisposedHasNoOutgoingTransitions(t *testing.T) {
	f := newFSM()
	f.ForceDispose()
	assert.True(t, f.IsDisposed())

	for _, ev := range []LifecycleEvent{EventStart, EventStarted, EventNavigate, EventComplete, EventStop, EventCancel, EventFail} {
		_, ok := f.Send(ev)
		assert.False(t, ok)
	}
	assert.True(t, f.IsDisposed())
}

func TestFSMForceDisposeFromAnyState(t *testing.T) {
	f := newFSM()
	f.Send(EventStart)
	f.Send(EventStarted)
	f.Send(EventNavigate)
	assert.True(t, f.IsTransitioning())

	f.ForceDispose()
	assert.True(t, f.IsDisposed())
}
