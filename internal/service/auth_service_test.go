package service

import (
	"errors"
	"testing"
	"time"

	"exam_app_backend/internal/config"
	"exam_app_backend/internal/model"
	"exam_app_backend/internal/repository"
	"exam_app_backend/internal/util"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestAuthService(t)

	user := &model.User{Username: "alice", Password: "password123"}
	if err := s.Register(user); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Password == "password123" {
		t.Fatalf("password stored in plaintext")
	}

	token, err := s.Login("alice", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := util.ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s := newTestAuthService(t)

	if err := s.Register(&model.User{Username: "bob", Password: "password123"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	err := s.Register(&model.User{Username: "bob", Password: "password456"})
	if !errors.Is(err, util.ErrUsernameRegistered) {
		t.Fatalf("expected ErrUsernameRegistered, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestAuthService(t)

	if err := s.Register(&model.User{Username: "carol", Password: "password123"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := s.Login("carol", "wrong-password"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Login("nobody", "password123"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
