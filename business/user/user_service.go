package user

import (
	"context"
	"errors"
	"kawaiiShop/domain"
	"kawaiiShop/pkg/logger"
	"kawaiiShop/pkg/utils"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint) error
}

// SessionRepository keeps issued tokens alive until logout or expiry.
type SessionRepository interface {
	StoreSession(ctx context.Context, userID, role, token string, ttl time.Duration) error
	DeleteSession(ctx context.Context, token string) error
}

type userService struct {
	userRepo    UserRepository
	sessionRepo SessionRepository
	validate    *validator.Validate
}

func NewUserService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	validate *validator.Validate,
) *userService {
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		validate:    validate,
	}
}

var validRoles = map[string]bool{
	domain.RoleCustomer: true,
	domain.RoleAdmin:    true,
}

func (s *userService) Register(ctx context.Context, user *domain.User) (domain.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.FullName = strings.TrimSpace(user.FullName)

	if err := s.validate.Var(user.FullName, "required"); err != nil {
		return domain.User{}, domain.Invalid("full name is required")
	}

	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", "email", user.Email)
		return domain.User{}, domain.Invalid("invalid email format")
	}

	if err := s.validate.Var(user.Password, "required,min=6"); err != nil {
		logger.Error("Invalid user password", "email", user.Email)
		return domain.User{}, domain.Invalid("password must be at least 6 characters")
	}

	// Check if email already exists
	existingUser, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err == nil && existingUser.ID > 0 {
		logger.Error("Email already exists", "email", user.Email)
		return domain.User{}, domain.ErrEmailExists
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	newUser := domain.User{
		FullName: user.FullName,
		Email:    user.Email,
		Password: string(passwordHash),
		Role:     domain.RoleCustomer,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", "error", err)
		return domain.User{}, err
	}

	newUser.Password = ""
	return newUser, nil
}

// Login checks the credentials, issues a JWT and records it as a live session.
func (s *userService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.User{}, domain.ErrInvalidCredential
		}
		logger.Error("Failed to look up user", "error", err)
		return "", domain.User{}, err
	}

	if !utils.CheckPassword(password, user.Password) {
		logger.Warn("User password incorrect", "user_id", user.ID)
		return "", domain.User{}, domain.ErrInvalidCredential
	}

	userIdStr := strconv.FormatUint(uint64(user.ID), 10)
	token, err := utils.GenerateJWT(userIdStr, user.Role)
	if err != nil {
		logger.Error("Failed to generated token", "error", err)
		return "", domain.User{}, errors.New("failed to generate token")
	}

	if err := s.sessionRepo.StoreSession(ctx, userIdStr, user.Role, token, utils.TokenTTL()); err != nil {
		logger.Error("Failed to store session", "user_id", user.ID, "error", err)
		return "", domain.User{}, errors.New("failed to create session")
	}

	user.Password = ""
	return token, user, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.DeleteSession(ctx, token); err != nil {
		logger.Error("Failed to delete session", "error", err)
		return err
	}

	return nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", "user_id", id, "error", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

// GetAllUsers retrieves all users
func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to get all users", "error", err)
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}

	return users, nil
}

// UpdateUser applies the non-empty fields of updateData. Only admins may
// change roles.
func (s *userService) UpdateUser(ctx context.Context, id uint, updateData *domain.User, byAdmin bool) (domain.User, error) {
	existingUser, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("User not found for update", "user_id", id, "error", err)
		return domain.User{}, err
	}

	if name := strings.TrimSpace(updateData.FullName); name != "" {
		existingUser.FullName = name
	}

	if updateData.Email != "" {
		email := strings.ToLower(strings.TrimSpace(updateData.Email))
		if err := s.validate.Var(email, "required,email"); err != nil {
			return domain.User{}, domain.Invalid("invalid email format")
		}

		// excluding current user
		userWithEmail, err := s.userRepo.FindByEmail(ctx, email)
		if err == nil && userWithEmail.ID != id {
			return domain.User{}, domain.ErrEmailExists
		}
		existingUser.Email = email
	}

	if updateData.Password != "" {
		if err := s.validate.Var(updateData.Password, "required,min=6"); err != nil {
			return domain.User{}, domain.Invalid("password must be at least 6 characters")
		}

		passwordHash, err := utils.HashPassword(updateData.Password)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return domain.User{}, errors.New("failed to hash password")
		}
		existingUser.Password = string(passwordHash)
	}

	if updateData.Role != "" {
		if !byAdmin {
			return domain.User{}, domain.ErrForbidden
		}
		if !validRoles[updateData.Role] {
			return domain.User{}, domain.Invalid("invalid role")
		}
		existingUser.Role = updateData.Role
	}

	if err := s.userRepo.Update(ctx, &existingUser); err != nil {
		logger.Error("Failed to update user", "user_id", id, "error", err)
		return domain.User{}, err
	}

	existingUser.Password = ""
	return existingUser, nil
}

// DeleteUser soft deletes a user
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	_, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("User not found for deletion", "user_id", id, "error", err)
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete user", "user_id", id, "error", err)
		return err
	}

	return nil
}
