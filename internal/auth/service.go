package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jobdesk/jobdesk/internal/database"
	"github.com/jobdesk/jobdesk/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrEmailRequired     = errors.New("email is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrFirstNameRequired = errors.New("first name is required")
	ErrLastNameRequired  = errors.New("last name is required")
	ErrEmailInvalid      = errors.New("invalid email format")

	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, so the response never reveals which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
)

// IsInvalidInput reports whether err is a missing/malformed-field error, as
// opposed to a credential failure or a store fault.
func IsInvalidInput(err error) bool {
	for _, target := range []error{
		ErrEmailRequired,
		ErrPasswordRequired,
		ErrFirstNameRequired,
		ErrLastNameRequired,
		ErrEmailInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// UserStore is the narrow slice of the user store the auth subsystem needs.
// Lookups return (nil, nil) when no record matches; an error always means
// the store itself failed.
type UserStore interface {
	GetByEmail(email string) (*entities.User, error)
	GetByToken(token string) (*entities.User, error)
	GetByID(id uint) (*entities.User, error)
	Create(user *entities.User) error
	Update(id uint, fields map[string]any) error
}

// Service handles registration, login and session validation.
type Service struct {
	store  UserStore
	hasher *Hasher
}

func NewService(store UserStore, hasher *Hasher) *Service {
	return &Service{store: store, hasher: hasher}
}

// Register creates a new account with the default role. The email unique
// index is the real guard against concurrent registrations; the lookup here
// only short-circuits the common case.
func (s *Service) Register(email, password, firstName, lastName string) (*entities.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if firstName == "" {
		return nil, ErrFirstNameRequired
	}
	if lastName == "" {
		return nil, ErrLastNameRequired
	}

	// RFC 5321 caps addresses at 254 characters
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	existing, err := s.store.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	salt, err := RandomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	user := &entities.User{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		Role:           entities.UserRoleUser,
		Salt:           salt,
		PasswordDigest: s.hasher.Hash(salt, password),
	}

	if err := s.store.Create(user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies the submitted credentials and issues a fresh session token.
// Each successful login overwrites the previous token, so at most one
// session per account is ever live.
func (s *Service) Login(email, password string) (*entities.User, string, error) {
	if email == "" {
		return nil, "", ErrEmailRequired
	}
	if password == "" {
		return nil, "", ErrPasswordRequired
	}

	user, err := s.store.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !s.hasher.Verify(user.Salt, password, user.PasswordDigest) {
		return nil, "", ErrInvalidCredentials
	}

	salt, err := RandomToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate session salt: %w", err)
	}
	token := s.hasher.Hash(salt, strconv.FormatUint(uint64(user.ID), 10))

	if err := s.store.Update(user.ID, map[string]any{"session_token": token}); err != nil {
		return nil, "", fmt.Errorf("failed to save session token: %w", err)
	}

	user.SessionToken = token
	return user, token, nil
}

// ValidateSession resolves a session token to its owning user. The token's
// only authority is that some user's stored token equals it.
func (s *Service) ValidateSession(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	user, err := s.store.GetByToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// GetUserByID retrieves a user by id.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.store.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
