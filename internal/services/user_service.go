package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/weeklygoals/weekly-goals-be/internal/models"
	"github.com/weeklygoals/weekly-goals-be/internal/password"
	"github.com/weeklygoals/weekly-goals-be/internal/store"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minNameLength     = 2
	minPasswordLength = 8

	// Deadlines on the storage calls during registration and login.
	// Exceeding one surfaces as ErrTimeout, distinct from a credential
	// failure.
	lookupTimeout = 10 * time.Second
	createTimeout = 15 * time.Second
	loginTimeout  = 5 * time.Second
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, name, email, pass string) (models.User, error)
	Authenticate(ctx context.Context, email, pass string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
}

// UserService provides registration and credential verification.
type UserService struct {
	users  *store.Repository[models.User]
	hasher password.Hasher

	// dummy is verified on the unknown-email login path so both 401
	// outcomes do comparable work.
	dummy string
}

// NewUserService creates a new UserService on top of a store.
func NewUserService(s store.Store, hasher password.Hasher) *UserService {
	dummy, err := hasher.Hash("weekly-goals-timing-pad")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to precompute dummy credential hash")
	}
	return &UserService{
		users:  store.NewRepository[models.User](s, "users"),
		hasher: hasher,
		dummy:  dummy,
	}
}

// Register creates a new account with a hashed password. The email must
// be unique across all users.
func (s *UserService) Register(ctx context.Context, name, email, pass string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if len(name) < minNameLength {
		return models.User{}, &ValidationError{Message: "Name must be at least 2 characters"}
	}
	if !emailPattern.MatchString(email) {
		return models.User{}, &ValidationError{Message: "Please provide a valid email address"}
	}
	if len(pass) < minPasswordLength {
		return models.User{}, &ValidationError{Message: "Password must be at least 8 characters"}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	existing, err := s.users.Find(lookupCtx, store.Filter{"email": email})
	if err != nil {
		return models.User{}, storageErr("checking email", err)
	}
	if len(existing) > 0 {
		return models.User{}, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return models.User{}, fmt.Errorf("hashing password: %w", err)
	}

	createCtx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()
	user, err := s.users.Create(createCtx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, storageErr("creating user", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown email and wrong
// password produce the same error so accounts cannot be enumerated.
func (s *UserService) Authenticate(ctx context.Context, email, pass string) (models.User, error) {
	loginCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	matches, err := s.users.Find(loginCtx, store.Filter{"email": strings.TrimSpace(email)})
	if err != nil {
		return models.User{}, storageErr("fetching user", err)
	}
	if len(matches) == 0 {
		s.hasher.Verify(pass, s.dummy)
		return models.User{}, ErrInvalidCredentials
	}

	user := matches[0]
	if !s.hasher.Verify(pass, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// UserByID resolves an account from its id, typically taken from a
// bearer token.
func (s *UserService) UserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, storageErr("fetching user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// storageErr distinguishes an exceeded deadline from other storage
// failures.
func storageErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("%s: %w", op, err)
}
