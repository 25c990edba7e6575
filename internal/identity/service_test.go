package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackit-app/dashboard-service/internal/config"
	"github.com/trackit-app/dashboard-service/internal/domain"
	"github.com/trackit-app/dashboard-service/pkg/apperrors"
)

type mockAccountRepo struct {
	byEmail map[string]*domain.Account
	nextID  int
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{byEmail: make(map[string]*domain.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, account *domain.Account) error {
	m.nextID++
	account.ID = fmt.Sprintf("acc-%d", m.nextID)
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	stored := *account
	m.byEmail[account.Email] = &stored
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	for _, account := range m.byEmail {
		if account.ID == id {
			result := *account
			return &result, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	account, ok := m.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	result := *account
	return &result, nil
}

func newTestService(t *testing.T) (*Service, *mockAccountRepo) {
	t.Helper()
	repo := newMockAccountRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
		},
		Admin: config.AdminConfig{Email: "admin@example.com"},
	}
	svc := NewService(cfg, Dependencies{AccountRepo: repo, Logger: zap.NewNop()})
	return svc, repo
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, token, exp, err := svc.SignUp(ctx, "user@example.com", "secret1", "User One")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))
	assert.False(t, user.IsAdmin)

	user2, _, _, err := svc.SignIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, user2.ID)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, _, err := svc.SignUp(ctx, "user@example.com", "secret1", "")
	require.NoError(t, err)

	_, _, _, err = svc.SignUp(ctx, "user@example.com", "secret1", "")
	require.Error(t, err)
	assert.Equal(t, "email is already registered", apperrors.ToDomainError(err).Message)
}

func TestSignInDistinctFailureMessages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, _, err := svc.SignUp(ctx, "user@example.com", "secret1", "")
	require.NoError(t, err)

	cases := []struct {
		name     string
		email    string
		password string
		message  string
	}{
		{"unregistered email", "nobody@example.com", "secret1", "email is not registered"},
		{"wrong password", "user@example.com", "wrong-pass", "incorrect password"},
		{"malformed email", "not-an-email", "secret1", "enter a valid email address"},
		{"short password", "user@example.com", "abc", "password must be at least 6 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := svc.SignIn(ctx, tc.email, tc.password)
			require.Error(t, err)
			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, apperrors.CodeAuthFailed, domainErr.Code)
			assert.Equal(t, tc.message, domainErr.Message)
		})
	}
}

func TestSubscribeDeliversInitialState(t *testing.T) {
	svc, _ := newTestService(t)

	var delivered []*domain.User
	unsubscribe := svc.Subscribe(func(user *domain.User) {
		delivered = append(delivered, user)
	})
	defer unsubscribe()

	require.Len(t, delivered, 1)
	assert.Nil(t, delivered[0])
}

func TestSubscribeReceivesSessionChanges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var delivered []*domain.User
	unsubscribe := svc.Subscribe(func(user *domain.User) {
		delivered = append(delivered, user)
	})
	defer unsubscribe()

	_, _, _, err := svc.SignUp(ctx, "user@example.com", "secret1", "")
	require.NoError(t, err)
	svc.SignOut(ctx)

	require.Len(t, delivered, 3)
	assert.Nil(t, delivered[0])
	require.NotNil(t, delivered[1])
	assert.Equal(t, "user@example.com", delivered[1].Email)
	assert.Nil(t, delivered[2])
}

func TestAdminFlagRecomputedPerDelivery(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var last *domain.User
	unsubscribe := svc.Subscribe(func(user *domain.User) { last = user })
	defer unsubscribe()

	_, _, _, err := svc.SignUp(ctx, "admin@example.com", "adminpass", "")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.IsAdmin)

	_, _, _, err = svc.SignUp(ctx, "user@example.com", "secret1", "")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.False(t, last.IsAdmin)
}

func TestIndependentSubscribers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var first, second int
	unsub1 := svc.Subscribe(func(*domain.User) { first++ })
	unsub2 := svc.Subscribe(func(*domain.User) { second++ })

	_, _, _, err := svc.SignUp(ctx, "user@example.com", "secret1", "")
	require.NoError(t, err)

	// both got the initial delivery plus the sign-up
	assert.Equal(t, 2, first)
	assert.Equal(t, 2, second)

	unsub1()
	svc.SignOut(ctx)
	assert.Equal(t, 2, first)
	assert.Equal(t, 3, second)

	unsub2()
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var count int
	unsubscribe := svc.Subscribe(func(*domain.User) { count++ })

	unsubscribe()
	unsubscribe()

	svc.SignOut(ctx)
	assert.Equal(t, 1, count)
}
