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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer wraps a trace.Tracer with the span conventions the transition
// engine uses. A nil tracer field falls back to trace.NewNoopTracerProvider,
// so callers never need to nil-check before starting a span.
type tracer struct {
	t trace.Tracer
}

func newTracer(t trace.Tracer) *tracer {
	if t == nil {
		t = trace.NewNoopTracerProvider().Tracer("router")
	}
	return &tracer{t: t}
}

// startTransitionSpan opens the router.transition span for a navigation
// from "from" to "to". The returned func closes the span, recording
// outcome and, for failures, err.
func (tr *tracer) startTransitionSpan(ctx context.Context, to, from string) (context.Context, func(outcome string, err error)) {
	ctx, span := tr.t.Start(ctx, "router.transition", trace.WithAttributes(
		attribute.String("to.name", to),
		attribute.String("from.name", from),
	))
	return ctx, func(outcome string, err error) {
		span.SetAttributes(attribute.String("outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
