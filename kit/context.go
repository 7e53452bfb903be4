// Package kit holds small transport-agnostic helpers shared by the HTTP
// and MCP surfaces: typed context carriers and MCP tool registration.
package kit

import "context"

type contextKey string

const (
	RequestIDKey contextKey = "kit_request_id"
	TransportKey contextKey = "kit_transport" // "http", "mcp"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}

// GetTransport returns the transport label, or empty for in-process calls.
func GetTransport(ctx context.Context) string {
	v, _ := ctx.Value(TransportKey).(string)
	return v
}
