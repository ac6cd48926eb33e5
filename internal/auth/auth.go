// Package auth signs users in against the users table and issues session
// tokens as HS256 JWTs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// Errors returned by the service.
var (
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrInvalidToken      = errors.New("invalid session token")
	ErrSecretRequired    = errors.New("session secret is required")
	ErrPasswordEmpty     = errors.New("password is empty")
)

// DefaultTTL is the session lifetime when Config.TTL is zero.
const DefaultTTL = 24 * time.Hour

const issuer = "gamevault"

// Users looks users up by email. types.UsersTable satisfies it.
type Users interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// Config configures a Service.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Logger *slog.Logger
	Now    func() time.Time
}

// Session is a signed-in user and the token that proves it.
type Session struct {
	Token     string
	User      types.User
	ExpiresAt time.Time
}

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Service authenticates users and verifies session tokens. Revoked token ids
// are kept in memory until they expire.
type Service struct {
	users  Users
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewService creates a Service. The secret must not be empty.
func NewService(users Users, cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretRequired
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		users:   users,
		secret:  cfg.Secret,
		ttl:     cfg.TTL,
		logger:  cfg.Logger,
		now:     cfg.Now,
		revoked: make(map[string]time.Time),
	}, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordEmpty
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Login checks email and password and issues a session. An unknown email and
// a wrong password both return ErrInvalidCredential.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrInvalidEmail) {
		s.logger.Info("login rejected", "reason", "unknown email")
		return Session{}, ErrInvalidCredential
	}
	if err != nil {
		return Session{}, fmt.Errorf("looking up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Info("login rejected", "reason", "wrong password", "user_id", user.UserID)
		return Session{}, ErrInvalidCredential
	}

	session, err := s.issue(user)
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("login succeeded", "user_id", user.UserID)
	return session, nil
}

func (s *Service) issue(user types.User) (Session, error) {
	jti, err := uuid.NewV7()
	if err != nil {
		return Session{}, fmt.Errorf("generating token id: %w", err)
	}
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.UserID,
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: user.Email,
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("signing token: %w", err)
	}
	user.PasswordHash = ""
	return Session{Token: signed, User: user, ExpiresAt: exp}, nil
}

func (s *Service) parse(token string) (*claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" || c.ID == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

// Verify returns the user a session token was issued for. Expired, revoked
// and tampered tokens return ErrInvalidToken.
func (s *Service) Verify(token string) (types.User, error) {
	c, err := s.parse(token)
	if err != nil {
		return types.User{}, err
	}
	s.mu.Lock()
	_, revoked := s.revoked[c.ID]
	s.mu.Unlock()
	if revoked {
		return types.User{}, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	return types.User{UserID: c.Subject, Email: c.Email}, nil
}

// Logout revokes token. Logging out with an invalid token is a no-op.
func (s *Service) Logout(token string) {
	c, err := s.parse(token)
	if err != nil {
		return
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[c.ID] = c.ExpiresAt.Time
	s.logger.Info("logout", "user_id", c.Subject)
}
