package auth

import (
	"context"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ActorRef identifies who/what triggered a transition.
type ActorRef struct {
	ID   string
	Type string
}

const (
	ActorTypePlatformAdmin = "platform_admin"
	ActorTypeSystem        = "system"
)

// TransitionMetadata captures extra context for a transition.
type TransitionMetadata struct {
	Reason   string
	Metadata map[string]any
}

// TransitionContext is passed into hooks for additional processing.
type TransitionContext struct {
	Actor   ActorRef
	Company *Company
	From    CompanyStatus
	To      CompanyStatus
	Meta    TransitionMetadata
}

// TransitionHook is executed before or after a transition.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

// TransitionHookPhase identifies whether a hook ran before or after persistence.
type TransitionHookPhase string

const (
	HookPhaseBefore TransitionHookPhase = "before_transition"
	HookPhaseAfter  TransitionHookPhase = "after_transition"
)

// HookErrorHandler handles errors surfaced by transition hooks.
type HookErrorHandler func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error

// TransitionOption customizes a single transition.
type TransitionOption func(*transitionOptions)

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*companyStateMachine)

// CompanyStateMachine owns Company.Status changes and the approval stamp
// that goes with them.
type CompanyStateMachine interface {
	Transition(ctx context.Context, actor ActorRef, company *Company, target CompanyStatus, opts ...TransitionOption) (*Company, error)
	CanTransition(from, to CompanyStatus) bool
}

// CompanyStatusUpdater persists a status change
type CompanyStatusUpdater interface {
	UpdateStatus(ctx context.Context, record *Company) (*Company, error)
}

type companyStateMachine struct {
	store            CompanyStatusUpdater
	transitions      map[CompanyStatus]map[CompanyStatus]struct{}
	now              func() time.Time
	activitySink     ActivitySink
	logger           Logger
	hookErrorHandler HookErrorHandler
}

type transitionOptions struct {
	metadata    TransitionMetadata
	beforeHooks []TransitionHook
	afterHooks  []TransitionHook
}

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *companyStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineActivitySink sets the ActivitySink used to publish lifecycle events.
func WithStateMachineActivitySink(sink ActivitySink) StateMachineOption {
	return func(sm *companyStateMachine) {
		sm.activitySink = normalizeActivitySink(sink)
	}
}

// WithStateMachineHookErrorHandler overrides how hook failures are propagated.
func WithStateMachineHookErrorHandler(handler HookErrorHandler) StateMachineOption {
	return func(sm *companyStateMachine) {
		if handler != nil {
			sm.hookErrorHandler = handler
		}
	}
}

// WithStateMachineLogger overrides the logger used for sink failures.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *companyStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithTransitionReason sets the human-readable reason for the transition.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// WithTransitionMetadata merges metadata into the transition context.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(opts *transitionOptions) {
		if len(metadata) == 0 {
			return
		}
		if opts.metadata.Metadata == nil {
			opts.metadata.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			opts.metadata.Metadata[k] = v
		}
	}
}

// WithBeforeTransitionHook adds a hook executed before the status update.
func WithBeforeTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.beforeHooks = append(opts.beforeHooks, h)
		}
	}
}

// WithAfterTransitionHook adds a hook executed after the status update succeeds.
func WithAfterTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.afterHooks = append(opts.afterHooks, h)
		}
	}
}

// WithStateMachineTransitions restricts which status changes are accepted.
// Targets missing from the table for a given source are rejected. Without
// this option every valid status is reachable from every other status.
func WithStateMachineTransitions(table map[CompanyStatus][]CompanyStatus) StateMachineOption {
	return func(sm *companyStateMachine) {
		if table == nil {
			return
		}
		sm.transitions = make(map[CompanyStatus]map[CompanyStatus]struct{}, len(table))
		for from, targets := range table {
			allowed := make(map[CompanyStatus]struct{}, len(targets))
			for _, to := range targets {
				allowed[to] = struct{}{}
			}
			sm.transitions[from] = allowed
		}
	}
}

// NewCompanyStateMachine returns the default implementation backed by store.
// Admins may move a company to any status, including the one it already
// has; approving stamps approvedAt/approvedById and anything else clears
// them.
func NewCompanyStateMachine(store CompanyStatusUpdater, opts ...StateMachineOption) CompanyStateMachine {
	sm := &companyStateMachine{
		store: store,
		now:          func() time.Time { return time.Now().UTC() },
		activitySink: noopActivitySink{},
		logger:       defLogger{},
		hookErrorHandler: func(_ context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error {
			return goerrors.Wrap(err, goerrors.CategoryOperation, string(phase)+" hook failed").
				WithCode(http.StatusInternalServerError).
				WithMetadata(map[string]any{
					"from": string(tc.From),
					"to":   string(tc.To),
				})
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

func (sm *companyStateMachine) CanTransition(from, to CompanyStatus) bool {
	if !to.Valid() {
		return false
	}
	if sm.transitions == nil || from == to {
		return true
	}
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (sm *companyStateMachine) Transition(ctx context.Context, actor ActorRef, company *Company, target CompanyStatus, opts ...TransitionOption) (*Company, error) {
	if company == nil {
		return nil, derive(ErrInvalidCompanyTransition, "company is required", nil)
	}

	if !target.Valid() {
		return nil, ErrInvalidStatus
	}

	from := company.Status
	if !sm.CanTransition(from, target) {
		return nil, derive(ErrInvalidCompanyTransition,
			"Cannot change company status from "+string(from)+" to "+string(target),
			map[string]any{
				"from": string(from),
				"to":   string(target),
			},
		)
	}

	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	tc := TransitionContext{
		Actor:   actor,
		Company: company,
		From:    from,
		To:      target,
		Meta:    options.metadata,
	}

	if err := sm.runHooks(ctx, options.beforeHooks, tc, HookPhaseBefore); err != nil {
		return nil, err
	}

	record := &Company{
		ID:     company.ID,
		Status: target,
	}
	if target == CompanyStatusApproved {
		now := sm.now()
		record.ApprovedAt = &now
		record.ApprovedByID = actorUUID(actor)
	}

	updated, err := sm.store.UpdateStatus(ctx, record)
	if err != nil {
		return nil, err
	}

	if updated == nil {
		updated = company
		updated.Status = record.Status
		updated.ApprovedAt = record.ApprovedAt
		updated.ApprovedByID = record.ApprovedByID
	}

	tc.Company = updated
	if err := sm.runHooks(ctx, options.afterHooks, tc, HookPhaseAfter); err != nil {
		return nil, err
	}

	sm.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventCompanyStatusChanged,
		Actor:      actor,
		CompanyID:  company.ID.String(),
		FromStatus: from,
		ToStatus:   target,
		Metadata:   transitionMetadata(options.metadata),
	})

	return updated, nil
}

func (sm *companyStateMachine) runHooks(ctx context.Context, hooks []TransitionHook, data TransitionContext, phase TransitionHookPhase) error {
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, data); err != nil {
			if sm.hookErrorHandler == nil {
				return err
			}
			return sm.hookErrorHandler(ctx, phase, err, data)
		}
	}
	return nil
}

func (sm *companyStateMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: ActorTypeSystem}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = sm.now()
	}

	sink := normalizeActivitySink(sm.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		sm.logger.Warn("state machine activity sink error", "error", err)
	}
}

func actorUUID(actor ActorRef) *uuid.UUID {
	id, err := uuid.Parse(actor.ID)
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

func transitionMetadata(meta TransitionMetadata) map[string]any {
	if meta.Reason == "" && len(meta.Metadata) == 0 {
		return nil
	}
	out := make(map[string]any, len(meta.Metadata)+1)
	for k, v := range meta.Metadata {
		out[k] = v
	}
	if meta.Reason != "" {
		out["reason"] = meta.Reason
	}
	return out
}
