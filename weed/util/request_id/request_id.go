package request_id

import (
	"context"
)

type requestIDKey struct{}

// Set returns a copy of ctx carrying the request id.
func Set(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func Get(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
