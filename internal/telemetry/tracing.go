/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package telemetry configures OpenTelemetry tracing for metacontrold.
//
// Spans cover the meta-routing pipeline's suspension points: the package
// read during resolution, the blocking backend invocation, trigger rule
// fan-out, and the activation log write. The action and trigger reads are
// not traced. Custom
// span attributes use the `metacontrol.` prefix.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "metacontrol.io/metacontrold"

// Tracer returns the package-level tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// InitTraceProvider initialises the OTel trace provider with an OTLP gRPC
// exporter. If endpoint is empty, tracing is disabled (noop provider is
// used). Returns a shutdown function that must be called on application
// exit.
func InitTraceProvider(ctx context.Context, endpoint string, version string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // plaintext gRPC; no TLS is configured
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String("metacontrold"),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// --- Span helpers ---

// StartRequestSpan creates the parent span for one meta-routed HTTP
// request, covering RECEIVED through RESPONDING.
func StartRequestSpan(ctx context.Context, requestID, metaPackage, verb string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "metarouter.handle",
		trace.WithAttributes(
			attribute.String("metacontrol.request_id", requestID),
			attribute.String("metacontrol.meta_package", metaPackage),
			attribute.String("metacontrol.verb", verb),
		),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartResolveSpan traces the PackageResolver entity store read.
func StartResolveSpan(ctx context.Context, metaPackage string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "metaresolve.resolve",
		trace.WithAttributes(
			attribute.String("metacontrol.meta_package", metaPackage),
		),
	)
}

// EndResolveSpan enriches the resolve span with its outcome kind and ends it.
func EndResolveSpan(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String("metacontrol.resolution_outcome", outcome))
	span.End()
}

// StartInvokeSpan traces the blocking ActivationClient call.
func StartInvokeSpan(ctx context.Context, namespace, action string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "activationclient.invoke",
		trace.WithAttributes(
			attribute.String("metacontrol.namespace", namespace),
			attribute.String("metacontrol.action", action),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndInvokeSpan enriches the invoke span with its classified outcome and
// ends it.
func EndInvokeSpan(span trace.Span, outcomeKind string) {
	span.SetAttributes(attribute.String("metacontrol.outcome", outcomeKind))
	span.End()
}

// StartFanoutSpan creates the parent span for one trigger's rule fan-out.
func StartFanoutSpan(ctx context.Context, namespace, trigger string, ruleCount int) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "fanout.fire",
		trace.WithAttributes(
			attribute.String("metacontrol.namespace", namespace),
			attribute.String("metacontrol.trigger", trigger),
			attribute.Int("metacontrol.rule_count", ruleCount),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartRuleInvokeSpan creates a child span for one rule's invocation during
// fan-out.
func StartRuleInvokeSpan(ctx context.Context, rule, action string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "fanout.rule_invoke",
		trace.WithAttributes(
			attribute.String("metacontrol.rule", rule),
			attribute.String("metacontrol.action", action),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartActivationLogSpan traces the TriggerActivationWriter store write.
func StartActivationLogSpan(ctx context.Context, activationID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "activationlog.persist",
		trace.WithAttributes(
			attribute.String("metacontrol.activation_id", activationID),
		),
	)
}

// EndActivationLogSpan enriches the activation log span with its result and
// ends it.
func EndActivationLogSpan(span trace.Span, ok bool) {
	span.SetAttributes(attribute.Bool("metacontrol.write_ok", ok))
	span.End()
}
