package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStatusUpdater struct {
	mock.Mock
}

func (m *MockStatusUpdater) UpdateStatus(ctx context.Context, record *auth.Company) (*auth.Company, error) {
	args := m.Called(ctx, record)
	if v := args.Get(0); v != nil {
		return v.(*auth.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCompanyStateMachine_ApproveStampsApproval(t *testing.T) {
	store := &MockStatusUpdater{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	adminID := uuid.New()
	company := &auth.Company{ID: uuid.New(), Status: auth.CompanyStatusPending}

	store.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(r *auth.Company) bool {
		return r.ID == company.ID &&
			r.Status == auth.CompanyStatusApproved &&
			r.ApprovedAt != nil && r.ApprovedAt.Equal(now) &&
			r.ApprovedByID != nil && *r.ApprovedByID == adminID
	})).Return(nil, nil).Once()

	sink := &recordingSink{}
	sm := auth.NewCompanyStateMachine(store,
		auth.WithStateMachineClock(func() time.Time { return now }),
		auth.WithStateMachineActivitySink(sink),
		auth.WithStateMachineLogger(auth.NoopLogger{}),
	)

	actor := auth.ActorRef{ID: adminID.String(), Type: auth.ActorTypePlatformAdmin}
	result, err := sm.Transition(context.Background(), actor, company, auth.CompanyStatusApproved,
		auth.WithTransitionReason("documents verified"),
	)
	require.NoError(t, err)
	assert.Equal(t, auth.CompanyStatusApproved, result.Status)
	require.NotNil(t, result.ApprovedByID)
	assert.Equal(t, adminID, *result.ApprovedByID)
	store.AssertExpectations(t)

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, auth.ActivityEventCompanyStatusChanged, event.EventType)
	assert.Equal(t, auth.CompanyStatusPending, event.FromStatus)
	assert.Equal(t, auth.CompanyStatusApproved, event.ToStatus)
	assert.Equal(t, "documents verified", event.Metadata["reason"])
	assert.Equal(t, now, event.OccurredAt)
}

func TestCompanyStateMachine_LeavingApprovedClearsStamp(t *testing.T) {
	store := &MockStatusUpdater{}
	approvedAt := time.Now().UTC()
	approver := uuid.New()
	company := &auth.Company{
		ID:           uuid.New(),
		Status:       auth.CompanyStatusApproved,
		ApprovedAt:   &approvedAt,
		ApprovedByID: &approver,
	}

	store.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(r *auth.Company) bool {
		return r.Status == auth.CompanyStatusSuspended && r.ApprovedAt == nil && r.ApprovedByID == nil
	})).Return(&auth.Company{ID: company.ID, Status: auth.CompanyStatusSuspended}, nil).Once()

	sm := auth.NewCompanyStateMachine(store, auth.WithStateMachineLogger(auth.NoopLogger{}))

	result, err := sm.Transition(context.Background(), auth.ActorRef{}, company, auth.CompanyStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, auth.CompanyStatusSuspended, result.Status)
	assert.Nil(t, result.ApprovedAt)
	store.AssertExpectations(t)
}

func TestCompanyStateMachine_AnyStatusReachable(t *testing.T) {
	statuses := []auth.CompanyStatus{
		auth.CompanyStatusPending,
		auth.CompanyStatusApproved,
		auth.CompanyStatusRejected,
		auth.CompanyStatusSuspended,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				store := &MockStatusUpdater{}
				store.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(r *auth.Company) bool {
					stamped := r.ApprovedAt != nil && r.ApprovedByID != nil
					return r.Status == to && stamped == (to == auth.CompanyStatusApproved)
				})).Return(nil, nil).Once()

				sm := auth.NewCompanyStateMachine(store, auth.WithStateMachineLogger(auth.NoopLogger{}))
				actor := auth.ActorRef{ID: uuid.NewString(), Type: auth.ActorTypePlatformAdmin}

				result, err := sm.Transition(context.Background(), actor,
					&auth.Company{ID: uuid.New(), Status: from}, to)
				require.NoError(t, err)
				assert.Equal(t, to, result.Status)
				store.AssertExpectations(t)
			})
		}
	}
}

func TestCompanyStateMachine_RestrictedTransitions(t *testing.T) {
	store := &MockStatusUpdater{}
	company := &auth.Company{ID: uuid.New(), Status: auth.CompanyStatusPending}

	sm := auth.NewCompanyStateMachine(store,
		auth.WithStateMachineLogger(auth.NoopLogger{}),
		auth.WithStateMachineTransitions(map[auth.CompanyStatus][]auth.CompanyStatus{
			auth.CompanyStatusPending: {auth.CompanyStatusApproved, auth.CompanyStatusRejected},
		}),
	)

	_, err := sm.Transition(context.Background(), auth.ActorRef{}, company, auth.CompanyStatusSuspended)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidCompanyTransition)
	assert.Equal(t, 400, auth.HTTPStatus(err))
	store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestCompanyStateMachine_UnknownTarget(t *testing.T) {
	store := &MockStatusUpdater{}
	sm := auth.NewCompanyStateMachine(store)

	_, err := sm.Transition(context.Background(), auth.ActorRef{},
		&auth.Company{ID: uuid.New(), Status: auth.CompanyStatusPending},
		auth.CompanyStatus("archived"),
	)
	assert.ErrorIs(t, err, auth.ErrInvalidStatus)
	store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestCompanyStateMachine_CanTransition(t *testing.T) {
	open := auth.NewCompanyStateMachine(&MockStatusUpdater{})
	restricted := auth.NewCompanyStateMachine(&MockStatusUpdater{},
		auth.WithStateMachineTransitions(map[auth.CompanyStatus][]auth.CompanyStatus{
			auth.CompanyStatusPending:  {auth.CompanyStatusApproved},
			auth.CompanyStatusApproved: {auth.CompanyStatusSuspended},
		}),
	)

	tests := []struct {
		name     string
		sm       auth.CompanyStateMachine
		from, to auth.CompanyStatus
		want     bool
	}{
		{"default pending to suspended", open, auth.CompanyStatusPending, auth.CompanyStatusSuspended, true},
		{"default approved to rejected", open, auth.CompanyStatusApproved, auth.CompanyStatusRejected, true},
		{"default suspended to rejected", open, auth.CompanyStatusSuspended, auth.CompanyStatusRejected, true},
		{"default unknown target", open, auth.CompanyStatusPending, auth.CompanyStatus("archived"), false},
		{"restricted allowed", restricted, auth.CompanyStatusPending, auth.CompanyStatusApproved, true},
		{"restricted denied", restricted, auth.CompanyStatusPending, auth.CompanyStatusRejected, false},
		{"restricted same status", restricted, auth.CompanyStatusApproved, auth.CompanyStatusApproved, true},
		{"restricted unlisted source", restricted, auth.CompanyStatusRejected, auth.CompanyStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sm.CanTransition(tt.from, tt.to))
		})
	}
}

func TestCompanyStateMachine_BeforeHookAborts(t *testing.T) {
	store := &MockStatusUpdater{}
	company := &auth.Company{ID: uuid.New(), Status: auth.CompanyStatusPending}
	sm := auth.NewCompanyStateMachine(store, auth.WithStateMachineLogger(auth.NoopLogger{}))

	hookErr := errors.New("billing not configured")
	_, err := sm.Transition(context.Background(), auth.ActorRef{}, company, auth.CompanyStatusApproved,
		auth.WithBeforeTransitionHook(func(context.Context, auth.TransitionContext) error {
			return hookErr
		}),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, hookErr)
	store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestCompanyStateMachine_AfterHookSeesUpdatedCompany(t *testing.T) {
	store := &MockStatusUpdater{}
	company := &auth.Company{ID: uuid.New(), Status: auth.CompanyStatusRejected}
	store.On("UpdateStatus", mock.Anything, mock.Anything).
		Return(&auth.Company{ID: company.ID, Status: auth.CompanyStatusApproved}, nil).Once()

	sm := auth.NewCompanyStateMachine(store, auth.WithStateMachineLogger(auth.NoopLogger{}))

	var seen auth.TransitionContext
	_, err := sm.Transition(context.Background(), auth.ActorRef{}, company, auth.CompanyStatusApproved,
		auth.WithAfterTransitionHook(func(_ context.Context, tc auth.TransitionContext) error {
			seen = tc
			return nil
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, auth.CompanyStatusRejected, seen.From)
	assert.Equal(t, auth.CompanyStatusApproved, seen.To)
	assert.Equal(t, auth.CompanyStatusApproved, seen.Company.Status)
}

func TestCompanyStateMachine_StoreErrorPropagates(t *testing.T) {
	store := &MockStatusUpdater{}
	storeErr := errors.New("connection reset")
	store.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil, storeErr).Once()

	sink := &recordingSink{}
	sm := auth.NewCompanyStateMachine(store,
		auth.WithStateMachineActivitySink(sink),
		auth.WithStateMachineLogger(auth.NoopLogger{}),
	)

	_, err := sm.Transition(context.Background(), auth.ActorRef{},
		&auth.Company{ID: uuid.New(), Status: auth.CompanyStatusPending},
		auth.CompanyStatusRejected,
	)
	assert.ErrorIs(t, err, storeErr)
	assert.Empty(t, sink.events)
}
