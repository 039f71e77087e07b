package shared

import (
	"context"
	"strings"
)

type operatorContextKey struct{}

// ContextWithOperator stores the acting operator label in context.
func ContextWithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, strings.TrimSpace(operator))
}

// OperatorFromContext returns the operator label, or fallback when unset.
func OperatorFromContext(ctx context.Context, fallback string) string {
	if op, _ := ctx.Value(operatorContextKey{}).(string); op != "" {
		return op
	}
	return fallback
}
