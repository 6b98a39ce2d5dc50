package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pvlink/pvlink/internal/models"
)

// UserRepository defines the data access methods for user accounts.
type UserRepository interface {
	PasswordHash(ctx context.Context, username string) (string, bool, error)
	Upsert(ctx context.Context, username, passwordHash string) error
}

// GormUserRepository is the UserRepository implementation using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates and returns a new GormUserRepository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// PasswordHash returns the stored bcrypt hash for a username.
// The boolean reports whether the user exists.
func (r *GormUserRepository) PasswordHash(ctx context.Context, username string) (string, bool, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("password_hash").Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up user: %w", err)
	}
	return user.PasswordHash, true, nil
}

// Upsert creates a user or replaces an existing user's password hash.
func (r *GormUserRepository) Upsert(ctx context.Context, username, passwordHash string) error {
	user := models.User{Username: username, PasswordHash: passwordHash}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash"}),
	}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

var _ UserRepository = (*GormUserRepository)(nil)
