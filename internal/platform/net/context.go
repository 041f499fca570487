// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyRequesterID ctxKey = "requester_id"

// WithRequest annotates context with common request scoped ids
func WithRequest(ctx context.Context, reqID, requesterID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if requesterID != "" {
		ctx = context.WithValue(ctx, keyRequesterID, requesterID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// RequesterID returns the requester id on the context if present
func RequesterID(ctx context.Context) string {
	if v, ok := ctx.Value(keyRequesterID).(string); ok {
		return v
	}
	return ""
}
