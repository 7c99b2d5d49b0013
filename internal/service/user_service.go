package service

import (
	"context"

	"mingle/internal/models"
	"mingle/internal/repository"
	"mingle/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration and credential checks. It produces
// the authenticated identity the post engine trusts as-is.
type UserService struct {
	userRepo repository.UserRepository
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates a new account. A duplicate email yields a CONFLICT
// error so the handler can answer 409 on reruns.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("user", in.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns the account. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}
