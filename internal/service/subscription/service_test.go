package subscription_service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSubscriptions struct {
	repository.SubscriptionRepository

	mu   sync.Mutex
	subs map[int64]models.PTSubscription
	// beforeUpdate вызывается перед условным обновлением, чтобы сымитировать гонку
	beforeUpdate func()
	updateErr    error
}

func (f *fakeSubscriptions) GetByID(_ context.Context, id int64) (*models.PTSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return &sub, nil
}

func (f *fakeSubscriptions) UpdateRemaining(_ context.Context, id int64, expected, remaining int, status string) (bool, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	if f.updateErr != nil {
		return false, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := f.subs[id]
	if sub.SessionsRemaining != expected {
		return false, nil
	}
	sub.SessionsRemaining = remaining
	sub.Status = status
	f.subs[id] = sub
	return true, nil
}

type fakeAttendance struct {
	repository.AttendanceRepository

	mu        sync.Mutex
	nextID    int64
	sessions  map[int64]models.PTSession
	deleteErr error
}

func (f *fakeAttendance) Create(_ context.Context, session *models.PTSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	session.ID = f.nextID
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeAttendance) Delete(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return backend.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeAttendance) GetLatestSince(_ context.Context, subscriptionID int64, since time.Time) (*models.PTSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.PTSession
	for _, s := range f.sessions {
		if s.SubscriptionID != subscriptionID || s.CreatedAt.Before(since) {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = &s
		}
	}
	return latest, nil
}

func (f *fakeAttendance) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

type fakeStudents struct {
	repository.StudentRepository
}

func (fakeStudents) GetByID(_ context.Context, id int64) (*models.Student, error) {
	return &models.Student{ID: id, FullName: "Анна Петрова"}, nil
}

type fakeCoaches struct {
	repository.CoachRepository
}

func (fakeCoaches) GetByID(_ context.Context, id int64) (*models.Coach, error) {
	return &models.Coach{ID: id, FullName: "Игорь Смирнов"}, nil
}

type recordingNotifier struct {
	views []models.PTSubscriptionView
}

func (n *recordingNotifier) SubscriptionExhausted(_ context.Context, view models.PTSubscriptionView) error {
	n.views = append(n.views, view)
	return nil
}

type fixture struct {
	subs     *fakeSubscriptions
	sessions *fakeAttendance
	notifier *recordingNotifier
	svc      service.PTService
}

func newFixture(remaining, total int) *fixture {
	f := &fixture{
		subs: &fakeSubscriptions{subs: map[int64]models.PTSubscription{
			1: {ID: 1, StudentID: 10, CoachID: 20, TotalSessions: total, SessionsRemaining: remaining, Status: StatusFor(remaining)},
		}},
		sessions: &fakeAttendance{sessions: map[int64]models.PTSession{}},
		notifier: &recordingNotifier{},
	}
	f.svc = NewSubscriptionService(f.subs, f.sessions, fakeStudents{}, fakeCoaches{}, f.notifier, zap.NewNop())
	return f
}

func (f *fixture) remaining() int {
	sub, _ := f.subs.GetByID(context.Background(), 1)
	return sub.SessionsRemaining
}

func TestRecordSessionDecrements(t *testing.T) {
	f := newFixture(3, 10)

	sub, err := f.svc.RecordSession(context.Background(), 1, time.Time{}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, sub.SessionsRemaining)
	assert.Equal(t, models.PTStatusActive, sub.Status)
	assert.Equal(t, 1, f.remaining())
	assert.Equal(t, 1, f.sessions.count())
	assert.Empty(t, f.notifier.views)
}

func TestRecordSessionExpiresAtZeroAndNotifies(t *testing.T) {
	f := newFixture(1, 10)

	sub, err := f.svc.RecordSession(context.Background(), 1, time.Now(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, sub.SessionsRemaining)
	assert.Equal(t, models.PTStatusExpired, sub.Status)

	require.Len(t, f.notifier.views, 1)
	assert.Equal(t, "Анна Петрова", f.notifier.views[0].StudentName)
	assert.Equal(t, "Игорь Смирнов", f.notifier.views[0].CoachName)
	assert.Equal(t, 10, f.notifier.views[0].Completed)
}

func TestRecordSessionNeverGoesNegative(t *testing.T) {
	f := newFixture(1, 10)

	_, err := f.svc.RecordSession(context.Background(), 1, time.Now(), 2)
	assert.ErrorIs(t, err, service.ErrNoSessionsLeft)
	assert.Equal(t, 1, f.remaining())
	assert.Zero(t, f.sessions.count(), "no session row should be written")

	f = newFixture(0, 10)
	_, err = f.svc.RecordSession(context.Background(), 1, time.Now(), 1)
	assert.ErrorIs(t, err, service.ErrNoSessionsLeft)
	assert.Equal(t, 0, f.remaining())
}

func TestRecordSessionRejectsBadCount(t *testing.T) {
	f := newFixture(5, 10)

	_, err := f.svc.RecordSession(context.Background(), 1, time.Now(), 0)
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "session_count", verr.Field)
}

func TestRecordSessionLostRaceIsCompensated(t *testing.T) {
	f := newFixture(5, 10)
	// другой тренер успел списать занятие между чтением и обновлением
	f.subs.beforeUpdate = func() {
		f.subs.mu.Lock()
		sub := f.subs.subs[1]
		sub.SessionsRemaining = 4
		f.subs.subs[1] = sub
		f.subs.mu.Unlock()
	}

	_, err := f.svc.RecordSession(context.Background(), 1, time.Now(), 1)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, 4, f.remaining())
	assert.Zero(t, f.sessions.count(), "inserted session must be removed")
}

func TestRecordSessionFailedUpdateIsCompensated(t *testing.T) {
	f := newFixture(5, 10)
	boom := errors.New("connection reset")
	f.subs.updateErr = boom

	_, err := f.svc.RecordSession(context.Background(), 1, time.Now(), 1)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, f.sessions.count())
}

func TestResetSessionUndoesLatestInWindow(t *testing.T) {
	f := newFixture(1, 10)
	_, err := f.svc.RecordSession(context.Background(), 1, time.Now(), 1)
	require.NoError(t, err)
	require.Equal(t, 0, f.remaining())

	sub, err := f.svc.ResetSession(context.Background(), 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, sub.SessionsRemaining)
	assert.Equal(t, models.PTStatusActive, sub.Status)
	assert.Zero(t, f.sessions.count())
}

func TestResetSessionOutsideWindow(t *testing.T) {
	f := newFixture(5, 10)
	f.sessions.sessions[1] = models.PTSession{
		ID: 1, SubscriptionID: 1, SessionCount: 1,
		CreatedAt: time.Now().Add(-ResetWindow - time.Minute),
	}

	_, err := f.svc.ResetSession(context.Background(), 1, time.Now())
	assert.ErrorIs(t, err, service.ErrNothingToReset)
	assert.Equal(t, 5, f.remaining())
	assert.Equal(t, 1, f.sessions.count())
}

func TestResetSessionCapsAtTotal(t *testing.T) {
	f := newFixture(9, 10)
	f.sessions.nextID = 1
	f.sessions.sessions[1] = models.PTSession{ID: 1, SubscriptionID: 1, SessionCount: 3, CreatedAt: time.Now()}

	sub, err := f.svc.ResetSession(context.Background(), 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 10, sub.SessionsRemaining)
}

func TestResetSessionRestoresCounterWhenDeleteFails(t *testing.T) {
	f := newFixture(4, 10)
	f.sessions.sessions[1] = models.PTSession{ID: 1, SubscriptionID: 1, SessionCount: 1, CreatedAt: time.Now()}
	f.sessions.deleteErr = errors.New("timeout")

	_, err := f.svc.ResetSession(context.Background(), 1, time.Now())
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, 4, f.remaining())
}

func TestCreateSubscriptionValidates(t *testing.T) {
	f := newFixture(1, 1)

	_, err := f.svc.CreateSubscription(context.Background(), service.SubscriptionInput{StudentID: 1, CoachID: 2, TotalSessions: 0})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "total_sessions", verr.Field)

	_, err = f.svc.CreateSubscription(context.Background(), service.SubscriptionInput{StudentID: 1, CoachID: 2, TotalSessions: 5, Rate: -1})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rate", verr.Field)

	for _, rate := range []float64{math.NaN(), math.Inf(1)} {
		_, err = f.svc.CreateSubscription(context.Background(), service.SubscriptionInput{StudentID: 1, CoachID: 2, TotalSessions: 5, Rate: rate})
		require.ErrorAs(t, err, &verr, "rate %v", rate)
		assert.Equal(t, "rate", verr.Field)
	}
}
