package auth

import (
	"context"
	"testing"
	"time"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAccounts struct {
	repository.AccountRepository
	byEmail map[string]models.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byEmail: map[string]models.Account{}}
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) error {
	a.ID = int64(len(f.byEmail) + 1)
	f.byEmail[a.Email] = *a
	return nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return &a, nil
}

func (f *fakeAccounts) HasAny(context.Context) (bool, error) {
	return len(f.byEmail) > 0, nil
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))

	_, err = HashPassword("short")
	assert.Error(t, err)
}

func TestLoginLookupLogout(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeAccounts(), NewMemoryStore(), time.Hour, zap.NewNop())
	require.NoError(t, svc.EnsureAdmin(ctx, "Admin@Gym.local ", "s3cret-pass"))

	token, session, err := svc.Login(ctx, "admin@gym.local", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleAdmin, session.Role)

	got, err := svc.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin@gym.local", got.Email)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeAccounts(), NewMemoryStore(), time.Hour, zap.NewNop())
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@gym.local", "s3cret-pass"))

	_, _, err := svc.Login(ctx, "admin@gym.local", "nope-nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "ghost@gym.local", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdminOnlyOnEmptyTable(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccounts()
	svc := NewService(accounts, NewMemoryStore(), time.Hour, zap.NewNop())

	require.NoError(t, svc.EnsureAdmin(ctx, "", ""))
	assert.Empty(t, accounts.byEmail)

	require.NoError(t, svc.EnsureAdmin(ctx, "first@gym.local", "password-1"))
	require.NoError(t, svc.EnsureAdmin(ctx, "second@gym.local", "password-2"))
	assert.Len(t, accounts.byEmail, 1)
}

func TestCoachAccountNeedsCoach(t *testing.T) {
	svc := NewService(newFakeAccounts(), NewMemoryStore(), time.Hour, zap.NewNop())

	_, err := svc.CreateAccount(context.Background(), "coach@gym.local", "password-1", models.RoleCoach, nil)
	assert.Error(t, err)

	coachID := int64(4)
	a, err := svc.CreateAccount(context.Background(), "coach@gym.local", "password-1", models.RoleCoach, &coachID)
	require.NoError(t, err)
	assert.Equal(t, &coachID, a.CoachID)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore().(*memoryStore)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	token, err := store.Create(context.Background(), Session{AccountID: 1}, time.Minute)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
