// Package context carries request correlation values across layers.
package context

import (
	"context"
	"strings"
)

type requestIDKey struct{}
type userIDKey struct{}
type agencyIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

// WithUserID records the authenticated caller.
func WithUserID(ctx context.Context, userID string) context.Context {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(userIDKey{}).(string)
	return value
}

// WithAgencyID records the agency a request is scoped to, when the route names one.
func WithAgencyID(ctx context.Context, agencyID string) context.Context {
	agencyID = strings.TrimSpace(agencyID)
	if agencyID == "" {
		return ctx
	}
	return context.WithValue(ctx, agencyIDKey{}, agencyID)
}

func AgencyIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(agencyIDKey{}).(string)
	return value
}
