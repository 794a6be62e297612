package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

const testSecret = "test-secret"

func TestAuthService_Register(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)

	created, err := svc.Register(context.Background(), "Max", "Max@Example.com ", "supersecret", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("missing id")
	}
	if created.Email != "max@example.com" {
		t.Fatalf("email not normalized: %s", created.Email)
	}
	if created.Role != domain.RoleMember {
		t.Fatalf("default role = %s", created.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("supersecret")) != nil {
		t.Fatalf("password hash does not verify")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)

	if _, err := svc.Register(context.Background(), "Max", "max@example.com", "supersecret", domain.RoleMember); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "Other", "max@example.com", "different", domain.RoleOwner); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

	if _, err := svc.Register(context.Background(), "Max", "max@example.com", "supersecret", "superuser"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)

	registered, err := svc.Register(context.Background(), "Olive", "olive@example.com", "supersecret", domain.RoleOwner)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "olive@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("wrong user: %s", user.ID)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["user_id"] != registered.ID || claims["name"] != "Olive" || claims["role"] != "owner" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	exp, _ := claims["exp"].(float64)
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		t.Fatalf("token already expired")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)

	if _, err := svc.Register(context.Background(), "Olive", "olive@example.com", "supersecret", domain.RoleOwner); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "olive@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "supersecret"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
