// Package trace is the logging layer of tscan.
//
// Events describe what the engine is doing at four granularities: a session
// (one CLI invocation or one Engine), a unit being checked, a configuration of
// that unit, and a single checker run. The level picks how deep the output
// goes.
//
//	tscan check --trace=- --trace-level=config src/
//
// Tracers:
//
//   - Nop: zero-overhead default
//   - StreamTracer: writes each event as it arrives (text or NDJSON)
//   - RingTracer: keeps the last N events for post-mortem dumps
//   - MultiTracer: fan-out
//
// Every event inside a unit span carries the unit path, and heartbeats list
// the units whose spans are still open.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, t)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, "check", 0)
//	defer span.End("")
package trace
