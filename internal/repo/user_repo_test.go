package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evamaria/fanchat-backend/internal/domain"
)

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newRepoDB(t, &domain.UserProfile{})
	ctx := context.Background()

	u := &domain.UserProfile{
		UID:          "u1",
		Email:        "fan@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := CreateUser(ctx, db, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dup := &domain.UserProfile{
		UID:          "u2",
		Email:        "fan@example.com",
		PasswordHash: "y",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := CreateUser(ctx, db, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetUserByEmail_RoundTrip(t *testing.T) {
	db := newRepoDB(t, &domain.UserProfile{})
	ctx := context.Background()

	u := &domain.UserProfile{
		UID:          "u1",
		Email:        "fan@example.com",
		PasswordHash: "x",
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := CreateUser(ctx, db, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := GetUserByEmail(ctx, db, "fan@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.UID != "u1" || got.Role != domain.RoleAdmin {
		t.Fatalf("unexpected profile: %+v", got)
	}

	if _, err := GetUserByEmail(ctx, db, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProfilePicture_And_PasswordHash(t *testing.T) {
	db := newRepoDB(t, &domain.UserProfile{})
	ctx := context.Background()

	u := &domain.UserProfile{UID: "u1", Email: "fan@example.com", PasswordHash: "x", Role: domain.RoleUser, CreatedAt: time.Now().UTC()}
	if err := CreateUser(ctx, db, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := UpdateProfilePicture(ctx, db, "u1", "/avatars/u1.png?v=1"); err != nil {
		t.Fatalf("UpdateProfilePicture: %v", err)
	}
	if err := UpdatePasswordHash(ctx, db, "u1", "newhash"); err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}

	got, err := GetUser(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.ProfilePicture == nil || *got.ProfilePicture != "/avatars/u1.png?v=1" {
		t.Fatalf("avatar url not stored: %+v", got)
	}
	if got.PasswordHash != "newhash" {
		t.Fatalf("password hash not rotated: %+v", got)
	}

	if err := UpdatePasswordHash(ctx, db, "missing", "h"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestDeleteUser_RemovesRow(t *testing.T) {
	db := newRepoDB(t, &domain.UserProfile{})
	ctx := context.Background()

	u := &domain.UserProfile{UID: "u1", Email: "fan@example.com", PasswordHash: "x", Role: domain.RoleUser, CreatedAt: time.Now().UTC()}
	if err := CreateUser(ctx, db, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := DeleteUser(ctx, db, "u1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := GetUser(ctx, db, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
