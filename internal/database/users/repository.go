// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByTokenHash(ctx, auth.HashToken(token))
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a user. A taken username or email yields ErrUserExists.
func (r *Repository) CreateUser(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	return r.first(ctx, r.db.Where("id = ?", id))
}

// GetUserByUsername retrieves a user by username or, failing that, email.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.first(ctx, r.db.Where("username = ? OR email = ?", username, username))
}

// GetUserByTokenHash retrieves the owner of a hashed API token.
func (r *Repository) GetUserByTokenHash(ctx context.Context, tokenHash string) (*entities.User, error) {
	if tokenHash == "" {
		return nil, ErrUserNotFound
	}
	return r.first(ctx, r.db.Where("token_hash = ?", tokenHash))
}

// SetTokenHash stores a new token hash, replacing any previous token.
func (r *Repository) SetTokenHash(ctx context.Context, id uint, tokenHash string, issuedAt time.Time) error {
	return r.updateToken(ctx, id, map[string]any{
		"token_hash":       tokenHash,
		"token_created_at": issuedAt,
	})
}

// ClearToken revokes the user's API token.
func (r *Repository) ClearToken(ctx context.Context, id uint) error {
	return r.updateToken(ctx, id, map[string]any{
		"token_hash":       "",
		"token_created_at": nil,
	})
}

// CountUsers returns the number of registered users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error
	return count, err
}

func (r *Repository) first(ctx context.Context, query *gorm.DB) (*entities.User, error) {
	var user entities.User
	if err := query.WithContext(ctx).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUserNotFound, err)
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) updateToken(ctx context.Context, id uint, updates map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
