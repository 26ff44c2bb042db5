package service

import (
	"errors"
	"testing"
)

func TestAuthCreateAndAuthenticate(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewAuthService(gdb)

	user, err := svc.CreateUser(" admin ", "correct-horse")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.Username != "admin" || user.Password == "correct-horse" {
		t.Fatalf("expected trimmed name and hashed password, got %#v", user)
	}

	if _, err := svc.CreateUser("admin", "another-pass"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := svc.CreateUser("short", "1234"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	if _, err := svc.Authenticate("admin", "correct-horse"); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if _, err := svc.Authenticate("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate("ghost", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthChangePassword(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewAuthService(gdb)

	user, err := svc.CreateUser("editor", "first-password")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if err := svc.ChangePassword(user.ID, "nope", "second-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "first-password", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "first-password", "second-password"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if _, err := svc.Authenticate("editor", "second-password"); err != nil {
		t.Fatalf("expected new password to work, got %v", err)
	}
}

func TestAuthEnsureUserIsIdempotent(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewAuthService(gdb)

	created, err := svc.EnsureUser("root", "root-password")
	if err != nil || !created {
		t.Fatalf("expected first EnsureUser to create, got %v %v", created, err)
	}
	created, err = svc.EnsureUser("root", "other-password")
	if err != nil || created {
		t.Fatalf("expected second EnsureUser to be a no-op, got %v %v", created, err)
	}
	if _, err := svc.Authenticate("root", "root-password"); err != nil {
		t.Fatalf("original password must be kept: %v", err)
	}
}
