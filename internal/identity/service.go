package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/trackit-app/dashboard-service/internal/auth"
	"github.com/trackit-app/dashboard-service/internal/config"
	"github.com/trackit-app/dashboard-service/internal/domain"
	"github.com/trackit-app/dashboard-service/internal/repository"
	"github.com/trackit-app/dashboard-service/pkg/apperrors"
)

// ChangeHandler receives the normalized identity on every session
// change. A nil user means signed out.
type ChangeHandler func(*domain.User)

// Service owns the session lifecycle: credential checks, token
// issuance, and a session-change broadcast that mirrors the hosted
// provider's auth-state stream.
type Service struct {
	accounts   repository.AccountRepository
	tokens     *auth.TokenManager
	adminEmail string
	bcryptCost int
	logger     *zap.Logger

	mu          sync.Mutex
	nextID      int
	subscribers map[int]ChangeHandler
	current     *domain.Account
}

// Dependencies bundles requirements for the identity service.
type Dependencies struct {
	AccountRepo repository.AccountRepository
	Logger      *zap.Logger
}

// NewService builds the service.
func NewService(cfg config.Config, deps Dependencies) *Service {
	return &Service{
		accounts:    deps.AccountRepo,
		tokens:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		adminEmail:  cfg.Admin.Email,
		bcryptCost:  cfg.Auth.BcryptCost,
		logger:      deps.Logger,
		subscribers: make(map[int]ChangeHandler),
	}
}

// Subscribe registers a session-change handler and synchronously
// delivers the current state. Each call is an independent registration
// with its own initial delivery. The returned function deregisters the
// handler exactly once; further calls are no-ops.
func (s *Service) Subscribe(onChange ChangeHandler) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = onChange
	current := s.current
	s.mu.Unlock()

	onChange(s.normalize(current))

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// SignUp registers a new account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*domain.User, string, time.Time, error) {
	if err := checkCredentials(email, password); err != nil {
		return nil, "", time.Time{}, err
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewAuthError("email is already registered")
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, apperrors.ToDomainError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.ToDomainError(err)
	}

	account := &domain.Account{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, "", time.Time{}, apperrors.ToDomainError(err)
	}

	return s.openSession(account)
}

// SignIn authenticates an account. Failure causes map to distinct
// user-facing messages.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if err := checkCredentials(email, password); err != nil {
		return nil, "", time.Time{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewAuthError("email is not registered")
		}
		return nil, "", time.Time{}, apperrors.ToDomainError(err)
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewAuthError("incorrect password")
	}

	return s.openSession(account)
}

// SignOut clears the active session and notifies subscribers.
func (s *Service) SignOut(_ context.Context) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.broadcast(nil)
	s.logger.Info("session closed")
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *Service) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *Service) openSession(account *domain.Account) (*domain.User, string, time.Time, error) {
	token, exp, err := s.tokens.GenerateToken(account.ID, account.Email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.ToDomainError(err)
	}

	s.mu.Lock()
	s.current = account
	s.mu.Unlock()
	s.broadcast(account)

	s.logger.Info("session opened", zap.String("account_id", account.ID))
	return s.normalize(account), token, exp, nil
}

// normalize builds a fresh User on every delivery; IsAdmin is always
// recomputed from the configured admin email, never cached.
func (s *Service) normalize(account *domain.Account) *domain.User {
	if account == nil {
		return nil
	}
	return &domain.User{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		PhotoURL:    account.PhotoURL,
		IsAdmin:     account.Email == s.adminEmail,
	}
}

func (s *Service) broadcast(account *domain.Account) {
	s.mu.Lock()
	handlers := make([]ChangeHandler, 0, len(s.subscribers))
	for _, handler := range s.subscribers {
		handlers = append(handlers, handler)
	}
	s.mu.Unlock()

	for _, handler := range handlers {
		handler(s.normalize(account))
	}
}

func checkCredentials(email, password string) error {
	if !strings.Contains(email, "@") || strings.TrimSpace(email) == "" {
		return apperrors.NewAuthError("enter a valid email address")
	}
	if len(password) < 6 {
		return apperrors.NewAuthError("password must be at least 6 characters")
	}
	return nil
}
