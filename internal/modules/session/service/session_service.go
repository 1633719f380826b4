package service

import (
	"context"
	"fmt"
	"strings"

	"microlearn/internal/modules/session/domain"
	sessionout "microlearn/internal/modules/session/port/out"
	"microlearn/internal/platform/clock"
	apperrors "microlearn/internal/platform/errors"
	"microlearn/internal/platform/id"
)

type SessionService struct {
	clock clock.Clock
	idGen id.Generator
	store sessionout.SessionStore
}

func NewSessionService(clock clock.Clock, idGen id.Generator, store sessionout.SessionStore) *SessionService {
	return &SessionService{clock: clock, idGen: idGen, store: store}
}

func (s *SessionService) Start(_ context.Context, moduleID, moduleTitle, goal string) (domain.ActiveSession, error) {
	if strings.TrimSpace(moduleID) == "" {
		return domain.ActiveSession{}, fmt.Errorf("%w: module id is required", apperrors.ErrInvalidInput)
	}
	return domain.ActiveSession{
		SessionID:   s.idGen.New(),
		ModuleID:    moduleID,
		ModuleTitle: moduleTitle,
		StartedAt:   s.clock.Now(),
		Goal:        goal,
	}, nil
}

func (s *SessionService) End(ctx context.Context, active domain.ActiveSession, outcome string, deltaProgress, progressBefore, progressAfter int) (domain.Session, string, error) {
	endedAt := s.clock.Now()
	duration := int(endedAt.Sub(active.StartedAt).Minutes())
	if duration < 0 {
		duration = 0
	}
	session := domain.Session{
		ID:             active.SessionID,
		ModuleID:       active.ModuleID,
		ModuleTitle:    active.ModuleTitle,
		StartedAt:      active.StartedAt,
		EndedAt:        endedAt,
		DurationMin:    duration,
		Goal:           active.Goal,
		Outcome:        outcome,
		DeltaProgress:  deltaProgress,
		ProgressBefore: progressBefore,
		ProgressAfter:  progressAfter,
	}
	path, err := s.store.Save(ctx, session)
	if err != nil {
		return domain.Session{}, "", err
	}
	return session, path, nil
}

func (s *SessionService) History(ctx context.Context, moduleID string) ([]domain.Session, error) {
	return s.store.List(ctx, strings.TrimSpace(moduleID))
}
