package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bryanwahyu/finsight/internal/application"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
	"github.com/bryanwahyu/finsight/internal/domain/users"
)

const DefaultTTL = 30 * 24 * time.Hour

// Service handles signup, login and token verification.
type Service struct {
	Users  users.Repository
	Secret []byte
	TTL    time.Duration
	Clock  application.Clock
	// Cost bcrypt; 0 → bcrypt.DefaultCost
	Cost int
}

type SignupCommand struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginCommand struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Message      string `json:"message"`
	Token        string `json:"token"`
	TrimmedEmail string `json:"trimmedemail"`
}

type claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *Service) Signup(ctx context.Context, cmd SignupCommand) (*users.User, error) {
	email := normalizeEmail(cmd.Email)
	username := strings.TrimSpace(cmd.Username)
	if username == "" || email == "" || cmd.Password == "" {
		return nil, errs.Input("username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errs.Input("Invalid email address")
	}

	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), cost)
	if err != nil {
		return nil, errs.Internal(err, "Failed to hash password")
	}
	u := &users.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.Clock.Now(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrAlreadyExists) {
			return nil, errs.Input("User already exists")
		}
		return nil, errs.Internal(err, "Failed to create user")
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	email := normalizeEmail(cmd.Email)
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return nil, errs.Auth("Invalid email or password")
	}
	if err != nil {
		return nil, errs.Internal(err, "Failed to load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(cmd.Password)) != nil {
		return nil, errs.Auth("Invalid email or password")
	}

	token, err := s.Issue(u.ID)
	if err != nil {
		return nil, errs.Internal(err, "Failed to issue token")
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return &LoginResult{Message: "Login successful", Token: token, TrimmedEmail: local}, nil
}

// Issue signs an HS256 token carrying the userId claim.
func (s *Service) Issue(userID string) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := s.Clock.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return tok.SignedString(s.Secret)
}

// Verify returns the user id of a valid, unexpired token.
func (s *Service) Verify(token string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.Clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if !parsed.Valid || c.UserID == "" {
		return "", fmt.Errorf("token has no user")
	}
	return c.UserID, nil
}

// Me returns the caller without the password hash (json:"-").
func (s *Service) Me(ctx context.Context, userID string) (*users.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, errs.NotFound("User not found")
	}
	if err != nil {
		return nil, errs.Internal(err, "Failed to load user")
	}
	return u, nil
}
