package auth

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/travel-journal/backend/internal/apperr"
	"github.com/ayush/travel-journal/backend/internal/models"
	"github.com/ayush/travel-journal/backend/internal/store"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, fullName, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Session is the result of a successful signup or login.
type Session struct {
	Token  string
	Claims *Claims
	User   *models.User
}

// Service owns credentials and access tokens.
type Service struct {
	users   UserStore
	tokens  *Tokens
	revoker Revoker
	log     *logrus.Logger
	cost    int
}

func NewService(users UserStore, tokens *Tokens, revoker Revoker, log *logrus.Logger) *Service {
	if revoker == nil {
		revoker = NopRevoker{}
	}
	return &Service{users: users, tokens: tokens, revoker: revoker, log: log, cost: bcrypt.DefaultCost}
}

// CreateAccount registers a new user and signs them in.
func (s *Service) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*Session, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("User already exists")
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal("Failed to create account", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.Validation("Password is too long")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to create account", err)
	}

	user, err := s.users.CreateUser(ctx, req.FullName, req.Email, string(hashed))
	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race with a concurrent signup for the same email.
		return nil, apperr.Conflict("User already exists")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to create account", err)
	}

	s.log.WithField("user_id", user.ID).Info("account created")
	return s.issue(user)
}

// Login checks the password and issues a token. Unknown email and wrong
// password produce the same error.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	if err := models.Validate(req); err != nil {
		return nil, apperr.Validation("Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Auth("Invalid email or password")
	}
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Auth("Invalid email or password")
	}
	return s.issue(user)
}

// Verify resolves a raw bearer token to its claims.
func (s *Service) Verify(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to verify access token", err)
	}
	if revoked {
		return nil, apperr.Auth("Access token revoked")
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperr.Internal("Logout failed", err)
	}
	return nil
}

// Me returns the account behind a verified token.
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Auth("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load user", err)
	}
	return user, nil
}

func (s *Service) issue(user *models.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to issue access token", err)
	}
	return &Session{Token: token, Claims: claims, User: user}, nil
}
