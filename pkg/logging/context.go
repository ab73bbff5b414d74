package logging

import (
	"context"
)

const (
	AttemptIDKey   = "attempt_id"
	EventTypeKey   = "event_type"
	ResourceIDKey  = "resource_external_id"
	ServiceNameKey = "service_name"
)

func WithAttemptID(ctx context.Context, attemptID string) context.Context {
	return context.WithValue(ctx, AttemptIDKey, attemptID)
}

func WithEventType(ctx context.Context, eventType string) context.Context {
	return context.WithValue(ctx, EventTypeKey, eventType)
}

func WithResourceID(ctx context.Context, resourceID string) context.Context {
	return context.WithValue(ctx, ResourceIDKey, resourceID)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetAttemptID(ctx context.Context) string {
	if attemptID, ok := ctx.Value(AttemptIDKey).(string); ok {
		return attemptID
	}
	return ""
}

func GetEventType(ctx context.Context) string {
	if eventType, ok := ctx.Value(EventTypeKey).(string); ok {
		return eventType
	}
	return ""
}

func GetResourceID(ctx context.Context) string {
	if resourceID, ok := ctx.Value(ResourceIDKey).(string); ok {
		return resourceID
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if attemptID := GetAttemptID(ctx); attemptID != "" {
		fields = append(fields, "attempt_id", attemptID)
	}

	if eventType := GetEventType(ctx); eventType != "" {
		fields = append(fields, "event_type", eventType)
	}

	if resourceID := GetResourceID(ctx); resourceID != "" {
		fields = append(fields, "resource_external_id", resourceID)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}
