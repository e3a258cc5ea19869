package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db   *gorm.DB
	cost int
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
	Phone    string
}

// Register creates a customer or restaurant account. Admins are created
// from the command line only.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}
	if in.Role != models.RoleCustomer && in.Role != models.RoleRestaurant {
		return nil, apperr.Validation("Validation failed").WithFields(apperr.FieldError{
			Field: "role", Message: "Role must be customer or restaurant",
		})
	}
	return s.create(ctx, in)
}

// CreateAdmin creates an administrator account.
func (s *AuthService) CreateAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Role = models.RoleAdmin
	return s.create(ctx, in)
}

// bcrypt refuses longer inputs.
const maxPasswordBytes = 72

func (s *AuthService) create(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	var fields []apperr.FieldError
	if len(in.Name) < 2 {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "Name must be at least 2 characters"})
	}
	if !strings.Contains(in.Email, "@") {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	switch {
	case len(in.Password) < 6:
		fields = append(fields, apperr.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	case len(in.Password) > maxPasswordBytes:
		fields = append(fields, apperr.FieldError{Field: "password", Message: "Password must be at most 72 bytes"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("Validation failed").WithFields(fields...)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("User already exists with this email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost())
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Phone:        strings.TrimSpace(in.Phone),
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("User already exists with this email")
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthenticated("Invalid credentials")
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("Account is deactivated")
	}
	return &user, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, lookup(err, "User not found")
	}
	return &user, nil
}

func (s *AuthService) bcryptCost() int {
	if s.cost == 0 {
		return bcrypt.DefaultCost
	}
	return s.cost
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
