package fakeapi

import "context"

type ctxKey int

const bodyCtxKey ctxKey = 1

func withBody(ctx context.Context, body map[string]any) context.Context {
	return context.WithValue(ctx, bodyCtxKey, body)
}

func bodyFromContext(ctx context.Context) map[string]any {
	body, _ := ctx.Value(bodyCtxKey).(map[string]any)
	if body == nil {
		return map[string]any{}
	}
	return body
}
