package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventCompanyRegistered    ActivityEventType = "company.registered"
	ActivityEventCompanyStatusChanged ActivityEventType = "company.status.changed"
	ActivityEventCompanyPlanChanged   ActivityEventType = "company.plan.changed"
	ActivityEventLoginSuccess         ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure         ActivityEventType = "auth.login.failure"
	ActivityEventAdminLoginSuccess    ActivityEventType = "admin.login.success"
	ActivityEventAdminLoginFailure    ActivityEventType = "admin.login.failure"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	UserID     string
	CompanyID  string
	FromStatus CompanyStatus
	ToStatus   CompanyStatus
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// LoggerActivitySink writes every event to a Logger at info level
type LoggerActivitySink struct {
	Logger Logger
}

// Record implements ActivitySink.
func (s LoggerActivitySink) Record(_ context.Context, event ActivityEvent) error {
	args := []any{
		"event", string(event.EventType),
		"actor_type", event.Actor.Type,
		"actor_id", event.Actor.ID,
	}
	if event.UserID != "" {
		args = append(args, "user_id", event.UserID)
	}
	if event.CompanyID != "" {
		args = append(args, "company_id", event.CompanyID)
	}
	if event.FromStatus != "" || event.ToStatus != "" {
		args = append(args, "from", string(event.FromStatus), "to", string(event.ToStatus))
	}
	for k, v := range event.Metadata {
		args = append(args, k, v)
	}
	normalizeLogger(s.Logger).Info("activity", args...)
	return nil
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
