package fcontext

import (
	"context"
)

type requestID struct{}

type deviceID struct{}

// WithRequestID adds request id to ctx
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestID{}, rid)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestID{}).(string)
	return rid
}

// WithDeviceID marks ctx as serving a single device.
func WithDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceID{}, id)
}

// DeviceID gets device id from context
func DeviceID(ctx context.Context) string {
	id, _ := ctx.Value(deviceID{}).(string)
	return id
}
