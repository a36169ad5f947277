// Package trace is the logging channel of hydrodeck: levelled spans and
// point events written as text or NDJSON, or kept in a ring for dumps.
//
//	hydrodeck parse --trace=- --trace-level=detail ./deck
//
// Levels:
//
//   - off: nothing
//   - error: events are only kept in the ring and dumped when a run fails
//   - phase: run-level spans (discover, parse, validate)
//   - detail: plus one span per file
//   - debug: plus record-level point events
//
// Tracers travel through the driver in a context:
//
//	ctx = trace.WithTracer(ctx, tr)
//	sp := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "file:entdados.dat", parent)
//	defer sp.End("")
package trace
