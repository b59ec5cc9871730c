package router

import "context"

type decisionKey struct{}

// WithDecision returns a copy of ctx carrying d. Guard uses it for the page
// handler.
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, decisionKey{}, d)
}

// DecisionFromContext returns the decision the guard made for this request.
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(decisionKey{}).(Decision)
	return d, ok
}
