package services

import (
	"context"
	"errors"
	"testing"

	"github.com/evamaria/fanchat-backend/internal/domain"
)

// ----- Fake avatar store -----

type fakeAvatarStore struct {
	saveUID   string
	saveBytes []byte
	saveURL   string
	saveErr   error

	deleteUID   string
	deleteCalls int
	deleteErr   error
}

func (f *fakeAvatarStore) Save(ctx context.Context, uid string, data []byte) (string, error) {
	f.saveUID, f.saveBytes = uid, data
	if f.saveErr != nil {
		return "", f.saveErr
	}
	if f.saveURL != "" {
		return f.saveURL, nil
	}
	return "/avatars/" + uid + ".png", nil
}

func (f *fakeAvatarStore) Delete(ctx context.Context, uid string) error {
	f.deleteUID = uid
	f.deleteCalls++
	return f.deleteErr
}

// pngBytes is a minimal payload http.DetectContentType sniffs as image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n" + "0000000000")

func newAccountService(t *testing.T) (*AccountService, *fakeAvatarStore) {
	t.Helper()
	store := &fakeAvatarStore{}
	svc := NewAccountService(newServiceDB(t), store)
	return svc, store
}

// ----- Tests -----

func TestSignUp_ValidatesEmailAndPassword(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "not-an-email", "longenough"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.SignUp(ctx, "fan@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	u, err := svc.SignUp(ctx, "  Fan@Example.COM  ", "hunter22")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.Email != "fan@example.com" {
		t.Fatalf("email must be normalized: %q", u.Email)
	}
	if u.Role != domain.RoleUser {
		t.Fatalf("signup must always produce the end-user role: %q", u.Role)
	}
	if u.PasswordHash == "hunter22" || u.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "fan@example.com", "hunter22"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := svc.SignUp(ctx, "fan@example.com", "different1"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate_WrongPasswordAndMissingAccountLookAlike(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "fan@example.com", "hunter22"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "fan@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("missing account: expected ErrInvalidCredentials, got %v", err)
	}

	u, err := svc.Authenticate(ctx, "FAN@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.Email != "fan@example.com" {
		t.Fatalf("unexpected profile: %+v", u)
	}
}

func TestChangePassword_ReauthAndValidation(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "fan@example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if err := svc.ChangePassword(ctx, u.UID, "hunter22", "newpass1", "different"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.UID, "hunter22", "tiny", "tiny"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.UID, "wrongpass", "newpass1", "newpass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials on bad reauth, got %v", err)
	}

	// Old password still works after every failed attempt above.
	if _, err := svc.Authenticate(ctx, "fan@example.com", "hunter22"); err != nil {
		t.Fatalf("old password must survive failed changes: %v", err)
	}

	if err := svc.ChangePassword(ctx, u.UID, "hunter22", "newpass1", "newpass1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "fan@example.com", "newpass1"); err != nil {
		t.Fatalf("new password must authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "fan@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
}

func TestDeleteAccount_ReauthThenRemoves(t *testing.T) {
	svc, store := newAccountService(t)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "fan@example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := svc.UpdateAvatar(ctx, u.UID, pngBytes); err != nil {
		t.Fatalf("UpdateAvatar: %v", err)
	}

	if err := svc.DeleteAccount(ctx, u.UID, "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Profile(ctx, u.UID); err != nil {
		t.Fatalf("failed reauth must not delete anything: %v", err)
	}

	if err := svc.DeleteAccount(ctx, u.UID, "hunter22"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, err := svc.Profile(ctx, u.UID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("profile must be gone, got %v", err)
	}
	if store.deleteUID != u.UID {
		t.Fatalf("stored avatar must be removed with the account")
	}
}

func TestDeleteAccount_AvatarDeleteFailureIsNotFatal(t *testing.T) {
	svc, store := newAccountService(t)
	ctx := context.Background()

	u, _ := svc.SignUp(ctx, "fan@example.com", "hunter22")
	if _, err := svc.UpdateAvatar(ctx, u.UID, pngBytes); err != nil {
		t.Fatalf("UpdateAvatar: %v", err)
	}

	store.deleteErr = errors.New("object store down")
	if err := svc.DeleteAccount(ctx, u.UID, "hunter22"); err != nil {
		t.Fatalf("avatar delete failure must not block account deletion: %v", err)
	}
}

func TestUpdateAvatar_RejectsBeforeStoreWrite(t *testing.T) {
	svc, store := newAccountService(t)
	ctx := context.Background()

	u, _ := svc.SignUp(ctx, "fan@example.com", "hunter22")

	oversized := make([]byte, (5<<20)+1)
	copy(oversized, pngBytes)
	if _, err := svc.UpdateAvatar(ctx, u.UID, oversized); !errors.Is(err, ErrAvatarTooLarge) {
		t.Fatalf("expected ErrAvatarTooLarge, got %v", err)
	}
	if _, err := svc.UpdateAvatar(ctx, u.UID, []byte("%PDF-1.4 not an image")); !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
	if store.saveUID != "" {
		t.Fatalf("rejected uploads must never reach the store")
	}
}

func TestUpdateAvatar_ReplacesOldObject(t *testing.T) {
	svc, store := newAccountService(t)
	ctx := context.Background()

	u, _ := svc.SignUp(ctx, "fan@example.com", "hunter22")

	url, err := svc.UpdateAvatar(ctx, u.UID, pngBytes)
	if err != nil {
		t.Fatalf("UpdateAvatar: %v", err)
	}
	if url == "" {
		t.Fatalf("expected a public url")
	}
	if store.deleteCalls != 0 {
		t.Fatalf("first upload has nothing to delete")
	}

	if _, err := svc.UpdateAvatar(ctx, u.UID, pngBytes); err != nil {
		t.Fatalf("UpdateAvatar second: %v", err)
	}
	if store.deleteCalls != 1 {
		t.Fatalf("replacement must delete the previous object once, got %d", store.deleteCalls)
	}

	got, err := svc.Profile(ctx, u.UID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got.ProfilePicture == nil || *got.ProfilePicture == "" {
		t.Fatalf("profile must reference the stored avatar: %+v", got)
	}
}
