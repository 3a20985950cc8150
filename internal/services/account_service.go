// Package services – AccountService
//
// This file implements AccountService, which owns the account lifecycle:
// sign-up, login, password change, avatar replacement, and deletion. The
// sensitive flows (password change, deletion) reauthenticate against the
// stored credential before touching anything, and their failures surface
// as ErrInvalidCredentials so the client can prompt for the password again.
//
// Avatar uploads are validated before any store write: the size cap and the
// image sniff both reject locally. Replacing an avatar deletes the old
// object best-effort first; a failed delete never blocks the upload.
package services

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/evamaria/fanchat-backend/internal/auth"
	"github.com/evamaria/fanchat-backend/internal/domain"
	"github.com/evamaria/fanchat-backend/internal/repo"
	"github.com/evamaria/fanchat-backend/internal/storage"
)

// AccountService provides account lifecycle operations.
type AccountService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Avatars is the profile-picture object store.
	Avatars storage.AvatarStore

	// MinPasswordLen is the minimum accepted password length in runes.
	MinPasswordLen int
	// MaxAvatarBytes caps avatar uploads; <= 0 falls back to 5 MiB.
	MaxAvatarBytes int64
}

// NewAccountService constructs an AccountService with production defaults.
func NewAccountService(db *gorm.DB, avatars storage.AvatarStore) *AccountService {
	return &AccountService{
		DB:             db,
		Avatars:        avatars,
		MinPasswordLen: 6,
		MaxAvatarBytes: 5 << 20,
	}
}

// SignUp registers a new account and returns its fresh profile.
// The first profile ever created can be promoted to admin out of band;
// sign-up always produces the end-user role.
func (s *AccountService) SignUp(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < s.MinPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.UserProfile{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Authenticate verifies email/password and returns the matching profile.
// A missing account and a wrong password are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Profile returns the profile for uid.
func (s *AccountService) Profile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	u, err := repo.GetUser(ctx, s.DB, uid)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ChangePassword reauthenticates with the current password and replaces the
// stored hash. Nothing is written when validation or reauth fails.
func (s *AccountService) ChangePassword(ctx context.Context, uid, current, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(newPassword) < s.MinPasswordLen {
		return ErrWeakPassword
	}

	u, err := repo.GetUser(ctx, s.DB, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return repo.UpdatePasswordHash(ctx, s.DB, uid, hash)
}

// DeleteAccount reauthenticates and deletes the profile. The avatar object
// is removed best-effort first; the chat and its messages are kept, the
// conversation history outlives the account. Deletion of the profile row
// is the last step so a failure leaves a consistent account behind.
func (s *AccountService) DeleteAccount(ctx context.Context, uid, password string) error {
	u, err := repo.GetUser(ctx, s.DB, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return ErrInvalidCredentials
	}

	if s.Avatars != nil && u.ProfilePicture != nil {
		if derr := s.Avatars.Delete(ctx, uid); derr != nil {
			log.Warn().Err(derr).Str("uid", uid).Msg("avatar delete failed during account deletion")
		}
	}
	return repo.DeleteUser(ctx, s.DB, uid)
}

// UpdateAvatar validates and stores a new profile picture, returning its
// public URL. Validation rejects before any network/disk write: uploads
// over the cap and non-image payloads never reach the store. The previous
// object is deleted best-effort before the overwrite.
func (s *AccountService) UpdateAvatar(ctx context.Context, uid string, data []byte) (string, error) {
	maxBytes := s.MaxAvatarBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	if int64(len(data)) > maxBytes {
		return "", ErrAvatarTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", ErrNotAnImage
	}

	u, err := repo.GetUser(ctx, s.DB, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if u.ProfilePicture != nil {
		if derr := s.Avatars.Delete(ctx, uid); derr != nil {
			log.Warn().Err(derr).Str("uid", uid).Msg("old avatar delete failed, proceeding with upload")
		}
	}

	url, err := s.Avatars.Save(ctx, uid, data)
	if err != nil {
		return "", err
	}
	if err := repo.UpdateProfilePicture(ctx, s.DB, uid, url); err != nil {
		return "", err
	}
	return url, nil
}
