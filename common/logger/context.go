package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs
// within a context. Fields flow through context enrichment, so resolution
// context (identifier, tier, request id) shows up on every log statement
// without threading it by hand.
type LogFields struct {
	Identifier string // raw identifier being resolved
	Kind       string // classified identifier family
	Tier       string // resolution tier currently running
	RequestID  string // inbound HTTP request id
	Component  string // component name (e.g. "resolver.orchestrator")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, update LogFields) LogFields {
	result := existing
	if update.Identifier != "" {
		result.Identifier = update.Identifier
	}
	if update.Kind != "" {
		result.Kind = update.Kind
	}
	if update.Tier != "" {
		result.Tier = update.Tier
	}
	if update.RequestID != "" {
		result.RequestID = update.RequestID
	}
	if update.Component != "" {
		result.Component = update.Component
	}
	return result
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Useful for logging potentially long identifiers or bodies.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
