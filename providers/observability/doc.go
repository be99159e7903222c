// Package observability defines the interfaces and semantic conventions used
// for tracing, metrics and structured logging throughout nbrepair.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics],
// and [Logger] into a single injectable dependency. A configured Provider can
// travel through a [context.Context] with [ContextWithProvider] and be
// retrieved with [ProviderFromContext]; the active [Span] travels the same way
// with [ContextWithSpan] and [SpanFromContext].
//
// semconv.go holds the attribute keys, span names and metric names that
// should be used when recording observations.
package observability
