/*
Package tracing correlates caller HTTP requests with the relay sends they
trigger.

Each span is logged through zap when finished, carrying trace_id, span_id,
parent_id, operation and duration. Ids are prefixed ULIDs (trace_*, span_*).

# Propagation

The HTTP middleware continues a trace from the X-Trace-ID and X-Span-ID
request headers and echoes the ids on the response.

# Usage

	tracer := tracing.New("framerelay", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "relay.rest")
	defer tracer.Finish(span)
*/
package tracing
