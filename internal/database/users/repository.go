// Package users provides database operations for user records, including
// the credential-bearing lookups the auth subsystem depends on.
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jobdesk/jobdesk/internal/database"
	"github.com/jobdesk/jobdesk/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByEmail retrieves a user by email, credential columns included.
// Returns (nil, nil) when no user has that email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByToken retrieves the user whose stored session token equals token.
// Returns (nil, nil) when no session matches.
func (r *Repository) GetByToken(token string) (*entities.User, error) {
	// An empty token would match every logged-out row.
	if token == "" {
		return nil, nil
	}
	var user entities.User
	err := r.db.Where("session_token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by id. Returns (nil, nil) when absent.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user. A unique-index violation on email surfaces as
// database.ErrDuplicate.
func (r *Repository) Create(user *entities.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create user: %w", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// Update applies the given column updates to a user.
func (r *Repository) Update(id uint, fields map[string]any) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update user %d: %w", id, database.ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a user.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete user %d: %w", id, database.ErrNotFound)
	}
	return nil
}

// List returns all users ordered by creation time.
func (r *Repository) List() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("created_at").Find(&users).Error
	return users, err
}
