package domain_test

import (
	"errors"
	"testing"
	"time"

	"microlearn/internal/modules/account/domain"
	apperrors "microlearn/internal/platform/errors"
)

func TestWithDefaults(t *testing.T) {
	t.Parallel()
	u := domain.User{Email: "a@b.c"}.WithDefaults()
	if u.Name != domain.DefaultName || u.Role != domain.RoleLearner || u.PreferredLanguage != domain.DefaultLanguage {
		t.Fatalf("unexpected defaults: %+v", u)
	}
	kept := domain.User{Name: "Sam", Role: domain.RoleSupervisor, PreferredLanguage: "Spanish"}.WithDefaults()
	if kept.Name != "Sam" || kept.Role != domain.RoleSupervisor || kept.PreferredLanguage != "Spanish" {
		t.Fatalf("explicit values must be kept: %+v", kept)
	}
}

func TestRoleValidate(t *testing.T) {
	t.Parallel()
	if err := domain.RolePractitioner.Validate(); err != nil {
		t.Fatalf("practitioner should be valid: %v", err)
	}
	if err := domain.Role("farmer").Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDemoUserKeepsEmail(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	u := domain.DemoUser("me@example.com", now)
	if u.ID != "1" || u.Email != "me@example.com" || !u.CreatedAt.Equal(now) {
		t.Fatalf("unexpected demo user: %+v", u)
	}
}
