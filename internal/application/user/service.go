package user

import (
	"context"
	"errors"
	"strings"

	"charity-fund/internal/domain"
	"charity-fund/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidEmail    = errors.New("Invalid email format")
	ErrInvalidPassword = errors.New("Password must be at least 3 characters and must not contain the e-mail")
	ErrEmailTaken      = errors.New("Email already registered")
	ErrUserNotFound    = errors.New("User not found")
)

const bcryptCost = 10

type Service struct {
	DB *gorm.DB
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an active, non-superuser account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.create(ctx, in, false)
}

func (s *Service) create(ctx context.Context, in RegisterInput, superuser bool) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password, email) {
		return nil, ErrInvalidPassword
	}

	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		IsSuperuser:  superuser,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureSuperuser creates the first superuser unless an account with that
// e-mail already exists. Empty credentials are a no-op.
func (s *Service) EnsureSuperuser(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.create(ctx, RegisterInput{Email: email, Password: password}, true)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("email", strings.ToLower(email)).Msg("first superuser created")
	return nil
}

func (s *Service) ViewUser(ctx context.Context, userID string) (*domain.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
