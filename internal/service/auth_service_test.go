package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"alcyxob/fitness-content/internal/domain"

	"github.com/golang-jwt/jwt/v4"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	repo := newFakeEditorRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	editor, err := svc.Register(ctx, "Dana", "dana@example.com", "s3cret", domain.RoleProducer)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if editor.PasswordHash != "" {
		t.Error("Expected password hash to be cleared")
	}

	if _, err := svc.Register(ctx, "Dana", "dana@example.com", "x", domain.RoleEditor); !errors.Is(err, ErrEditorAlreadyExists) {
		t.Errorf("Expected ErrEditorAlreadyExists, got %v", err)
	}
	if _, err := svc.Register(ctx, "Eve", "eve@example.com", "x", "trainer"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("Expected ErrInvalidRole, got %v", err)
	}

	if _, _, err := svc.Login(ctx, "dana@example.com", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("Expected ErrAuthenticationFailed, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("Expected ErrAuthenticationFailed for unknown email, got %v", err)
	}

	token, _, err := svc.Login(ctx, "dana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("Expected a valid token, got %v", err)
	}
	if claims.Role != domain.RoleProducer || claims.EditorID != editor.ID.Hex() {
		t.Errorf("Unexpected claims %+v", claims)
	}
}
