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
	"io"
	"log/slog"
)

// LoggerSink is the logging surface the core consumes. *slog.Logger
// satisfies it directly, so WithLogger accepts one without adaptation.
type LoggerSink interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// DefaultLogger returns the package's no-op-by-default logger, the same
// posture as the rest of the pack's NoopLogger() singletons.
func DefaultLogger() *slog.Logger {
	return noopLogger
}
