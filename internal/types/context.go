package types

import "context"

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxOwnerID   ContextKey = "ctx_owner_id"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderOwnerID   = "X-Owner-ID"
)

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func GetOwnerID(ctx context.Context) string {
	if ownerID, ok := ctx.Value(CtxOwnerID).(string); ok {
		return ownerID
	}
	return ""
}
