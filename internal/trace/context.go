package trace

import "context"

// binding is what a context carries: the tracer and the innermost open span.
type binding struct {
	tracer Tracer
	span   SpanContext
}

type bindingKey struct{}

func lookup(ctx context.Context) binding {
	if ctx == nil {
		return binding{}
	}
	b, _ := ctx.Value(bindingKey{}).(binding)
	return b
}

// FromContext returns the tracer bound to ctx, Nop when there is none.
func FromContext(ctx context.Context) Tracer {
	if t := lookup(ctx).tracer; t != nil {
		return t
	}
	return Nop
}

// WithTracer binds t to ctx. The open span stays, so a reproduction run
// silenced with Nop keeps its place in the tree.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	b := lookup(ctx)
	b.tracer = t
	return context.WithValue(ctx, bindingKey{}, b)
}

// SpanContext identifies the innermost open span and the unit it works on.
type SpanContext struct {
	SpanID uint64
	GID    uint64
	Unit   string
}

// CurrentSpan returns the open span of ctx, zero outside any span.
func CurrentSpan(ctx context.Context) SpanContext {
	return lookup(ctx).span
}

// WithSpanContext makes sc the open span of ctx without touching the tracer.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	b := lookup(ctx)
	b.span = sc
	return context.WithValue(ctx, bindingKey{}, b)
}
