// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// UserProfile model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a profile is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - A sign-up against an already registered email surfaces as ErrDuplicate.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/evamaria/fanchat-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-constraint violation (duplicate email,
// duplicate per-user chat, or a replayed idempotency key).
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation reports whether err is a unique-constraint failure.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// CreateUser inserts a new profile row. CreatedAt is set to UTC.
// It returns ErrDuplicate when the email is already registered.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.UserProfile) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetUser fetches a profile by its UID, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, uid string) (*domain.UserProfile, error) {
	var u domain.UserProfile
	if err := db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail fetches a profile by email, or ErrNotFound if missing.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.UserProfile, error) {
	var u domain.UserProfile
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfilePicture sets the avatar URL for uid. Returns ErrNotFound
// when no row was affected.
func UpdateProfilePicture(ctx context.Context, db *gorm.DB, uid, url string) error {
	res := db.WithContext(ctx).
		Model(&domain.UserProfile{}).
		Where("uid = ?", uid).
		Update("profile_picture", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored credential hash for uid.
// Returns ErrNotFound when no row was affected.
func UpdatePasswordHash(ctx context.Context, db *gorm.DB, uid, hash string) error {
	res := db.WithContext(ctx).
		Model(&domain.UserProfile{}).
		Where("uid = ?", uid).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the profile row for uid. Chats and messages are kept
// so the operator inbox retains the conversation history.
func DeleteUser(ctx context.Context, db *gorm.DB, uid string) error {
	res := db.WithContext(ctx).Where("uid = ?", uid).Delete(&domain.UserProfile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
