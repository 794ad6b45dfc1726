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
	"maps"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/greydragon888/real-router-sub000/querystring"
)

// TrailingSlashMode names a trailing-slash handling mode. The router
// records the chosen mode but does not consult it: matching and
// building treat trailing slashes the same way under every mode.
type TrailingSlashMode int

const (
	TrailingSlashStrict TrailingSlashMode = iota
	TrailingSlashNever
	TrailingSlashAlways
	TrailingSlashPreserve
)

// URLParamsEncoding names a path-param encoding mode. The router records
// the chosen mode but does not consult it: path building encodes params
// the same way under every mode.
type URLParamsEncoding int

const (
	URLParamsEncodingDefault URLParamsEncoding = iota
	URLParamsEncodingURI
	URLParamsEncodingURIComponent
	URLParamsEncodingNone
)

// options is the OptionsStore component (C2): an immutable configuration
// snapshot, built by applying functional Options then frozen into a
// value copy at New(). Nothing downstream holds a pointer the caller
// could keep mutating.
type options struct {
	defaultRoute      string
	defaultRouteFunc  func() string
	defaultParams     map[string]any
	defaultParamsFunc func() map[string]any

	trailingSlash     TrailingSlashMode
	urlParamsEncoding URLParamsEncoding
	queryParamsMode   querystring.Mode
	allowNotFound     bool
	rewritePathOnMatch bool
	noValidate        bool

	limits Limits
	logger LoggerSink

	tracer     trace.Tracer
	registerer prometheus.Registerer

	diagnostics DiagnosticHandler
}

func defaultOptions() options {
	return options{
		limits: DefaultLimits(),
		logger: DefaultLogger(),
	}
}

// Option configures a Router at construction time.
type Option func(*options)

// WithDefaultRoute sets the static route navigated to by
// NavigateToDefault / an empty start path.
func WithDefaultRoute(name string) Option {
	return func(o *options) { o.defaultRoute = name }
}

// WithDefaultRouteFunc sets a callback resolving the default route name.
func WithDefaultRouteFunc(fn func() string) Option {
	return func(o *options) { o.defaultRouteFunc = fn }
}

// WithDefaultParams sets the static default params for NavigateToDefault.
func WithDefaultParams(params map[string]any) Option {
	return func(o *options) { o.defaultParams = params }
}

// WithDefaultParamsFunc sets a callback resolving the default params.
func WithDefaultParamsFunc(fn func() map[string]any) Option {
	return func(o *options) { o.defaultParamsFunc = fn }
}

// WithTrailingSlash records the trailing-slash handling mode; see
// TrailingSlashMode.
func WithTrailingSlash(mode TrailingSlashMode) Option {
	return func(o *options) { o.trailingSlash = mode }
}

// WithURLParamsEncoding records the path-param encoding mode; see
// URLParamsEncoding.
func WithURLParamsEncoding(mode URLParamsEncoding) Option {
	return func(o *options) { o.urlParamsEncoding = mode }
}

// WithQueryParamsMode sets strict vs loose query param handling.
func WithQueryParamsMode(mode querystring.Mode) Option {
	return func(o *options) { o.queryParamsMode = mode }
}

// WithAllowNotFound enables the reserved not-found sentinel state
// instead of a route_not_found error when no route matches.
func WithAllowNotFound(allow bool) Option {
	return func(o *options) { o.allowNotFound = allow }
}

// WithRewritePathOnMatch rebuilds the matched path from the resolved
// name/params (after forward resolution) instead of keeping the
// originally navigated path.
func WithRewritePathOnMatch(rewrite bool) Option {
	return func(o *options) { o.rewritePathOnMatch = rewrite }
}

// WithNoValidate records the no-validate flag. The facade has no
// separate input-validation step for the flag to skip, so it does not
// change any behaviour; structural invariants (cycle detection, depth
// caps) are enforced either way.
func WithNoValidate(skip bool) Option {
	return func(o *options) { o.noValidate = skip }
}

// WithLimits overrides the default resource caps.
func WithLimits(l Limits) Option {
	return func(o *options) { o.limits = l.normalize() }
}

// WithLogger wires the sink used for warn-level diagnostics (listener
// limit approaching, dependency overwrite) and any debug/info logging
// the core emits.
func WithLogger(l LoggerSink) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracer enables OpenTelemetry spans around each transition.
// Disabled (no-op tracer) by default.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithMetrics enables Prometheus counters/histograms for the event bus
// and transition engine. Disabled (nil registerer) by default.
func WithMetrics(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// WithDiagnostics wires the optional diagnostic hook (§4, supplemented
// feature), separate from the EventBus's taxonomy events.
func WithDiagnostics(h DiagnosticHandler) Option {
	return func(o *options) { o.diagnostics = h }
}

// snapshot deep-copies the mutable fields so the returned options value
// shares no state with whatever the caller passed in.
func (o options) snapshot() options {
	out := o
	if o.defaultParams != nil {
		out.defaultParams = maps.Clone(o.defaultParams)
	}
	return out
}

// resolveDefaultRoute evaluates the configured default route, preferring
// the callback when both are set.
func (o options) resolveDefaultRoute() string {
	if o.defaultRouteFunc != nil {
		return o.defaultRouteFunc()
	}
	return o.defaultRoute
}

// resolveDefaultParams evaluates the configured default params.
func (o options) resolveDefaultParams() map[string]any {
	if o.defaultParamsFunc != nil {
		return o.defaultParamsFunc()
	}
	return o.defaultParams
}
