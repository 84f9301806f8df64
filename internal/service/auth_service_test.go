package service

import (
	"errors"
	"testing"
	"time"

	"heater_bridge"
)

type fakeAuthRepo struct {
	users  map[string]*heater_bridge.User
	nextID int
	getErr error
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[string]*heater_bridge.User{}, nextID: 1}
}

func (r *fakeAuthRepo) Create(username, hash string) (int, error) {
	id := r.nextID
	r.nextID++
	r.users[username] = &heater_bridge.User{ID: id, Username: username, PasswordHash: hash}
	return id, nil
}

func (r *fakeAuthRepo) GetByUsername(username string) (*heater_bridge.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.users[username], nil
}

func newTestAuth(repo *fakeAuthRepo) *AuthService {
	return NewAuthService(repo, AuthConfig{SigningKey: "test-signing-key", TokenTTL: time.Minute})
}

func TestAuthService_SignUpThenTokenRoundTrip(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuth(repo)

	id, err := svc.SignUp("alex", "hunter2")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if id != 1 {
		t.Fatalf("id: want 1, got %d", id)
	}
	if repo.users["alex"].PasswordHash == "hunter2" {
		t.Fatalf("password stored in plain text")
	}

	token, err := svc.GenerateToken("alex", "hunter2")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	userID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if userID != 1 {
		t.Fatalf("userID: want 1, got %d", userID)
	}
}

func TestAuthService_GenerateToken_Failures(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuth(repo)

	if _, err := svc.SignUp("alex", "hunter2"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, err := svc.GenerateToken("alex", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := svc.GenerateToken("nobody", "hunter2"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	unkeyed := NewAuthService(repo, AuthConfig{})
	if _, err := unkeyed.GenerateToken("alex", "hunter2"); !errors.Is(err, ErrNoSigningKey) {
		t.Fatalf("expected ErrNoSigningKey, got %v", err)
	}
}

func TestAuthService_ParseToken_RejectsGarbage(t *testing.T) {
	svc := newTestAuth(newFakeAuthRepo())
	if _, err := svc.ParseToken("not-a-jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestAuthService_SignUp_EmptyPassword(t *testing.T) {
	svc := newTestAuth(newFakeAuthRepo())
	if _, err := svc.SignUp("alex", "   "); err == nil {
		t.Fatalf("expected error for blank password")
	}
}
