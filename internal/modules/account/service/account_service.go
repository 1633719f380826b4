package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"microlearn/internal/modules/account/domain"
	"microlearn/internal/platform/clock"
	apperrors "microlearn/internal/platform/errors"
	"microlearn/internal/platform/id"
)

type AccountService struct {
	clock clock.Clock
	idGen id.Generator
	log   *zap.Logger
}

func NewAccountService(clock clock.Clock, idGen id.Generator, log *zap.Logger) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{clock: clock, idGen: idGen, log: log}
}

// Login accepts any password; credentials are not checked in demo mode.
func (s *AccountService) Login(_ context.Context, email, _ string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, fmt.Errorf("%w: email is required", apperrors.ErrInvalidInput)
	}
	user := domain.DemoUser(email, s.clock.Now())
	s.log.Debug("demo login", zap.String("email", email))
	return user, nil
}

func (s *AccountService) Register(_ context.Context, name, email, _ string, role, language string) (domain.User, error) {
	user := domain.User{
		ID:                s.idGen.New(),
		Name:              strings.TrimSpace(name),
		Email:             strings.TrimSpace(email),
		Role:              domain.Role(strings.ToLower(strings.TrimSpace(role))),
		PreferredLanguage: strings.TrimSpace(language),
		CreatedAt:         s.clock.Now(),
	}.WithDefaults()
	if err := user.Role.Validate(); err != nil {
		return domain.User{}, err
	}
	s.log.Debug("registered user", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}
