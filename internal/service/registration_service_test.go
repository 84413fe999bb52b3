package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapease/checkin-service/internal/domain"
	"github.com/mapease/checkin-service/internal/events"
	"github.com/mapease/checkin-service/internal/qrtoken"
	"github.com/mapease/checkin-service/internal/repository"
	apperrors "github.com/mapease/checkin-service/pkg/util/errorutil"
)

func newRegistrationService(d events.Dispatcher) *RegistrationService {
	eventRepo := repository.NewMemoryEventRepository()
	for id, access := range map[string]domain.EventAccess{"event-123": domain.EventAccessClosed, "open-day": domain.EventAccessOpen} {
		if err := eventRepo.Create(context.Background(), &domain.Event{ID: id, Name: id, LocationName: "Main Hall", Access: access}); err != nil {
			panic(err)
		}
	}
	issuance := NewIssuanceService(IssuanceDependencies{Clock: func() time.Time { return issueTime }})
	return NewRegistrationService(RegistrationDependencies{
		RegistrationRepo: repository.NewMemoryRegistrationRepository(),
		EventRepo:        eventRepo,
		Issuance:         issuance,
		Dispatcher:       d,
	})
}

func statusOf(err error) int {
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestRegisterClosedEventStaysPending(t *testing.T) {
	svc := newRegistrationService(nil)
	reg, issued, err := svc.Register(context.Background(), RegisterInput{
		EventID: "event-123", Name: "Ada", Email: "Ada@Company.com",
	})
	require.NoError(t, err)
	assert.Nil(t, issued)
	assert.Equal(t, domain.RegistrationStatusPending, reg.Status)
	assert.Equal(t, "ada@company.com", reg.Email)
	assert.Equal(t, "user-"+reg.ID, reg.UserID)
	assert.Nil(t, reg.QRCode)
}

func TestRegisterOpenEventApprovesImmediately(t *testing.T) {
	svc := newRegistrationService(nil)
	reg, issued, err := svc.Register(context.Background(), RegisterInput{
		EventID: "open-day", Name: "Ada", Email: "ada@company.com", UserID: "user-9",
	})
	require.NoError(t, err)
	require.NotNil(t, issued)
	assert.Equal(t, domain.RegistrationStatusApproved, reg.Status)
	assert.Equal(t, "user-9", issued.Token.UserID)
	require.NotNil(t, reg.QRCode)
	assert.True(t, strings.HasPrefix(*reg.QRCode, "data:image/png;base64,"))
}

func TestRegisterValidation(t *testing.T) {
	svc := newRegistrationService(nil)
	_, _, err := svc.Register(context.Background(), RegisterInput{EventID: "event-123", Name: "", Email: "not-an-email"})
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Contains(t, de.Details, "name")
	assert.Contains(t, de.Details, "email")

	_, _, err = svc.Register(context.Background(), RegisterInput{EventID: "event-123", Name: "Ada", Email: "ada@company.com"})
	require.NoError(t, err)
	_, _, err = svc.Register(context.Background(), RegisterInput{EventID: "event-123", Name: "Ada 2", Email: "ADA@company.com"})
	assert.Equal(t, http.StatusConflict, statusOf(err))

	_, _, err = svc.Register(context.Background(), RegisterInput{EventID: "no-such-event", Name: "Ada", Email: "ada@company.com"})
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestApproveIssuesDecodableToken(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	var types []events.EventType
	record := func(ctx context.Context, e events.Event) error {
		types = append(types, e.Type)
		return nil
	}
	for _, et := range []events.EventType{events.EventRegistrationCreated, events.EventTokenIssued, events.EventRegistrationApproved} {
		d.Subscribe(et, record)
	}

	svc := newRegistrationService(nil)
	svc.dispatcher = d
	svc.issuance.dispatcher = d

	reg, _, err := svc.Register(context.Background(), RegisterInput{EventID: "event-123", Name: "Ada", Email: "ada@company.com"})
	require.NoError(t, err)

	operator := "op-1"
	approved, issued, err := svc.Approve(context.Background(), reg.ID, &operator)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationStatusApproved, approved.Status)
	require.NotNil(t, approved.IssuedAt)
	assert.True(t, approved.IssuedAt.Equal(issueTime))

	tok, ok := qrtoken.Decode(issued.Text)
	require.True(t, ok)
	assert.Equal(t, reg.ID, tok.RegistrationID)
	assert.Equal(t, "event-123", tok.EventID)
	assert.Equal(t, "user-"+reg.ID, tok.UserID)

	stored, err := svc.Get(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationStatusApproved, stored.Status)

	_, _, err = svc.Approve(context.Background(), reg.ID, nil)
	assert.Equal(t, http.StatusConflict, statusOf(err))
	_, err = svc.Reject(context.Background(), reg.ID, nil)
	assert.Equal(t, http.StatusConflict, statusOf(err))

	assert.Equal(t, []events.EventType{
		events.EventRegistrationCreated,
		events.EventTokenIssued,
		events.EventRegistrationApproved,
	}, types)
}

func TestRejectAndLookups(t *testing.T) {
	svc := newRegistrationService(nil)
	ctx := context.Background()

	reg, _, err := svc.Register(ctx, RegisterInput{EventID: "event-123", Name: "Ada", Email: "ada@company.com"})
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, RegisterInput{EventID: "event-123", Name: "Bob", Email: "bob@company.com"})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, reg.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationStatusRejected, rejected.Status)

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
	_, _, err = svc.Approve(ctx, "missing", nil)
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	pending := domain.RegistrationStatusPending
	list, err := svc.ListByEvent(ctx, "event-123", repository.RegistrationFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bob", list[0].Name)

	bogus := domain.RegistrationStatus("archived")
	_, err = svc.ListByEvent(ctx, "event-123", repository.RegistrationFilter{Status: &bogus})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

// lostRaceRepo reports every transition as already decided by someone else.
type lostRaceRepo struct {
	repository.RegistrationRepository
}

func (lostRaceRepo) Transition(context.Context, *domain.Registration, domain.RegistrationStatus) error {
	return repository.ErrStaleStatus
}

func TestApproveLosingRacePublishesNoToken(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	var types []events.EventType
	events.SubscribeAll(d, func(ctx context.Context, e events.Event) error {
		types = append(types, e.Type)
		return nil
	}, events.EventTokenIssued, events.EventRegistrationApproved)

	svc := newRegistrationService(nil)
	reg, _, err := svc.Register(context.Background(), RegisterInput{EventID: "event-123", Name: "Ada", Email: "ada@company.com"})
	require.NoError(t, err)

	svc.registrations = lostRaceRepo{svc.registrations}
	svc.dispatcher = d
	svc.issuance.dispatcher = d

	_, issued, err := svc.Approve(context.Background(), reg.ID, nil)
	assert.Nil(t, issued)
	assert.Equal(t, http.StatusConflict, statusOf(err))
	assert.Empty(t, types)
}
