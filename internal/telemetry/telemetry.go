// Copyright 2026 The cntr-go Authors.
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

// Package telemetry wires a minimal OpenTelemetry tracer for the two
// operations worth timing end-to-end: one span per container entry
// ("cntr.enter_container") and one around the interactive shell that attach
// runs ("cntr.exec_request"); requests served by the exec daemon get no
// span. There is no metrics pipeline and no remote
// collector here, only a stdout exporter — this is diagnostic tracing for
// an operator staring at a terminal, not a production observability stack.
package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/cntr-go/cntr"

var shutdown func(context.Context) error

// Init installs a TracerProvider that writes spans as JSON to w. cmd/cntr
// calls it, with os.Stderr, only when the --trace flag is set; otherwise
// Init is never called and otel's no-op provider stays in place. With
// tracing on, a debugging operator can see exactly how long namespace entry
// and overlay staging took.
func Init(w io.Writer) error {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return err
	}
	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName("cntr"),
	))
	if err != nil {
		return err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	shutdown = tp.Shutdown
	return nil
}

// Disable reverts to otel's built-in no-op provider, which is also the
// default before Init is ever called.
func Disable() {
	otel.SetTracerProvider(noop.NewTracerProvider())
	shutdown = nil
}

// Shutdown flushes any buffered spans. Safe to call even if Init was never
// called.
func Shutdown(ctx context.Context) error {
	if shutdown == nil {
		return nil
	}
	return shutdown(ctx)
}

// Start begins a span named "cntr.<name>" on the shared tracer.
func Start(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "cntr."+name)
}
