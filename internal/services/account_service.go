package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stone_sales/internal/models"
	"stone_sales/internal/redis"
	"stone_sales/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

// SessionStore persists login sessions. *redis.Client satisfies it.
type SessionStore interface {
	SetSession(ctx context.Context, token string, data *redis.SessionData, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, token string) error
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Session   *redis.SessionData `json:"session"`
}

type AccountService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.Account, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*redis.SessionData, error)
	Logout(ctx context.Context, token string) error
}

type accountService struct {
	deps       Dependencies
	sessions   SessionStore
	sessionTTL time.Duration
}

func NewAccountService(deps Dependencies, sessions SessionStore, sessionTTL time.Duration) AccountService {
	return &accountService{
		deps:       deps.withDefaults(),
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Register creates a customer together with its login account.
func (s *accountService) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Username == "":
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	case req.Email == "":
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	case strings.TrimSpace(req.Name) == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case len(req.Password) < minPasswordLength || len(req.Password) > maxPasswordLength:
		return nil, fmt.Errorf("%w: password must be %d to %d characters", ErrInvalidInput, minPasswordLength, maxPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var account *models.Account
	err = s.deps.Store.WithTransaction(ctx, func(tx repository.Store) error {
		_, err := tx.Accounts().GetByUsername(ctx, req.Username)
		if err == nil {
			return fmt.Errorf("%w: username %q is taken", ErrInvalidInput, req.Username)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to look up account: %w", err)
		}

		customer := &models.Customer{
			Name:    strings.TrimSpace(req.Name),
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		}
		if err := tx.Customers().Create(ctx, customer); err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}

		account = &models.Account{
			Username:     req.Username,
			PasswordHash: string(hash),
			Role:         models.RoleCustomer,
			CustomerID:   &customer.ID,
		}
		if err := tx.Accounts().Create(ctx, account); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("customer registered",
		zap.Uint("account_id", account.ID),
		zap.Uint("customer_id", *account.CustomerID),
	)
	return account, nil
}

// Login checks the credentials and opens a session. Unknown usernames and
// wrong passwords fail the same way.
func (s *accountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	account, err := s.deps.Store.Accounts().GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.deps.now()
	session := &redis.SessionData{
		AccountID:  account.ID,
		Username:   account.Username,
		Role:       account.Role,
		CustomerID: account.CustomerID,
		CreatedAt:  now,
	}
	token := uuid.NewString()
	if err := s.sessions.SetSession(ctx, token, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.deps.Logger.Info("account logged in", zap.Uint("account_id", account.ID), zap.String("role", string(account.Role)))
	return &LoginResult{Token: token, ExpiresAt: now.Add(s.sessionTTL), Session: session}, nil
}

func (s *accountService) Authenticate(ctx context.Context, token string) (*redis.SessionData, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	session, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, redis.ErrSessionNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

func (s *accountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	return s.sessions.DeleteSession(ctx, token)
}
