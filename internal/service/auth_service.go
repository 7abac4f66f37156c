package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/repository/ports"
	"github.com/wayfare-app/wayfare-api/internal/util"
)

// AuthSession is a freshly issued bearer token with its owner.
type AuthSession struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService struct {
	users     ports.UserRepository
	tokens    *util.JWTManager
	googleAud string

	validateIDToken func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewAuthService(users ports.UserRepository, tokens *util.JWTManager, googleAud string) *AuthService {
	return &AuthService{
		users:           users,
		tokens:          tokens,
		googleAud:       googleAud,
		validateIDToken: idtoken.Validate,
	}
}

// SignUp registers a new account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (*AuthSession, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, username, hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return s.issueSession(user)
}

// SignIn checks the credentials and issues a session. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*AuthSession, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.HasPassword() || !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(user)
}

// SignInWithGoogle validates a Google ID token, upserts the matching account
// keyed by the token's email, and issues a session.
func (s *AuthService) SignInWithGoogle(ctx context.Context, idToken string) (*AuthSession, error) {
	payload, err := s.validateIDToken(ctx, idToken, s.googleAud)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.UpsertGoogleUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.issueSession(user)
}

// Authenticate resolves a bearer token to its account. Used by the request
// middleware.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueSession(user *domain.User) (*AuthSession, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthSession{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
