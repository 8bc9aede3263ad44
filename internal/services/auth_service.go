package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"marketplace/internal/access"
	"marketplace/internal/domain"
	"marketplace/internal/repos"
	"marketplace/internal/validate"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService { return &AuthService{Users: users} }

// Register creates an account and returns it. The password is stored as a
// bcrypt hash.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	if err := validate.Struct(reg); err != nil {
		return nil, err
	}
	if reg.Password != reg.Password2 {
		return nil, domain.Validation("password2: passwords do not match")
	}
	if reg.Type == "" {
		reg.Type = domain.RoleBuyer
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: reg.Email, Name: reg.Name, Hash: string(hash), Role: reg.Type}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Account returns the signed-in caller's user record.
func (s *AuthService) Account(ctx context.Context, id access.Identity) (*domain.User, error) {
	if err := access.Authorize(id); err != nil {
		return nil, err
	}
	return s.Users.ByID(ctx, id.UserID)
}

// Login checks the credentials and opens a session, returning its token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, repos.ErrNotFound) {
		return "", nil, ErrBadCreds
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", nil, ErrBadCreds
	}
	token := uuid.NewString()
	if err := s.Users.BindSession(ctx, token, u.ID); err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Users.UnbindSession(ctx, token)
}

// Identify resolves a session token. Unknown or empty tokens yield the
// anonymous identity.
func (s *AuthService) Identify(ctx context.Context, token string) (access.Identity, error) {
	if token == "" {
		return access.Anonymous(), nil
	}
	if _, err := uuid.Parse(token); err != nil {
		return access.Anonymous(), nil
	}
	u, err := s.Users.SessionUser(ctx, token)
	if errors.Is(err, repos.ErrNotFound) {
		return access.Anonymous(), nil
	}
	if err != nil {
		return access.Anonymous(), err
	}
	return access.User(u), nil
}
