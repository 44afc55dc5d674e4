package ctxutil

import "context"

type requestDataKey struct{}

// RequestData is the per-request state shared by the middleware chain and
// anything that logs on behalf of a request.
type RequestData struct {
	RequestID string
	TraceID   string
	User      string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// UserOrDefault returns the user on ctx, or def when none was attached.
func UserOrDefault(ctx context.Context, def string) string {
	if rd := GetRequestData(ctx); rd != nil && rd.User != "" {
		return rd.User
	}
	return def
}

// LogFields returns the non-empty request ids and user as logger key/value pairs.
func LogFields(ctx context.Context) []interface{} {
	rd := GetRequestData(ctx)
	if rd == nil {
		return nil
	}
	var kv []interface{}
	for _, f := range [...]struct{ k, v string }{
		{"request_id", rd.RequestID},
		{"trace_id", rd.TraceID},
		{"user", rd.User},
	} {
		if f.v != "" {
			kv = append(kv, f.k, f.v)
		}
	}
	return kv
}
