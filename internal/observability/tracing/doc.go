// Package tracing wires OpenTelemetry spans into the HTTP stack and the
// approval and notification use cases.
//
//	shutdown := tracing.Init(0.1)
//	defer shutdown(context.Background())
//	handler := tracing.Middleware(mux)
package tracing
