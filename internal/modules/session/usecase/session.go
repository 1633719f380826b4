package usecase

import (
	"context"
	"errors"
	"fmt"

	learningdto "microlearn/internal/modules/learning/dto"
	learningin "microlearn/internal/modules/learning/port/in"
	sessiondto "microlearn/internal/modules/session/dto"
	sessionin "microlearn/internal/modules/session/port/in"
	sessionout "microlearn/internal/modules/session/port/out"
	"microlearn/internal/modules/session/service"
	apperrors "microlearn/internal/platform/errors"
)

type Interactor struct {
	svc         *service.SessionService
	learning    learningin.Usecase
	activeStore sessionout.ActiveSessionStore
}

func NewInteractor(svc *service.SessionService, learning learningin.Usecase, activeStore sessionout.ActiveSessionStore) sessionin.Usecase {
	return &Interactor{svc: svc, learning: learning, activeStore: activeStore}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StartOutput, error) {
	if i.activeStore != nil {
		_, err := i.activeStore.LoadActive(ctx)
		if err == nil {
			return sessiondto.StartOutput{}, apperrors.ErrActiveSessionExists
		}
		if !errors.Is(err, apperrors.ErrNoActiveSession) {
			return sessiondto.StartOutput{}, err
		}
	}

	moduleTitle := input.ModuleTitle
	if moduleTitle == "" && i.learning != nil {
		module, err := i.learning.GetModule(ctx, input.ModuleID)
		if err != nil {
			return sessiondto.StartOutput{}, err
		}
		moduleTitle = module.Title
	}

	active, err := i.svc.Start(ctx, input.ModuleID, moduleTitle, input.Goal)
	if err != nil {
		return sessiondto.StartOutput{}, err
	}
	if i.activeStore != nil {
		if err := i.activeStore.SaveActive(ctx, active); err != nil {
			return sessiondto.StartOutput{}, err
		}
	}
	return sessiondto.StartOutput{SessionID: active.SessionID, ModuleID: active.ModuleID, ModuleTitle: active.ModuleTitle, StartedAt: active.StartedAt}, nil
}

func (i *Interactor) End(ctx context.Context, input sessiondto.EndInput) (sessiondto.EndOutput, error) {
	if input.DeltaProgress < 0 {
		return sessiondto.EndOutput{}, fmt.Errorf("%w: delta progress must be non-negative", apperrors.ErrInvalidInput)
	}
	if i.activeStore == nil {
		return sessiondto.EndOutput{}, apperrors.ErrNoActiveSession
	}

	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	if input.SessionID != "" && input.SessionID != active.SessionID {
		return sessiondto.EndOutput{}, fmt.Errorf("%w: session id mismatch", apperrors.ErrInvalidInput)
	}
	if i.learning == nil {
		return sessiondto.EndOutput{}, fmt.Errorf("learning usecase is not configured")
	}

	module, err := i.learning.GetModule(ctx, active.ModuleID)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	before := module.Progress
	after := before + input.DeltaProgress
	if after > 100 {
		after = 100
	}

	session, path, err := i.svc.End(ctx, active, input.Outcome, input.DeltaProgress, before, after)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	if _, err := i.learning.UpdateProgress(ctx, learningdto.UpdateProgressInput{ModuleID: active.ModuleID, Progress: after}); err != nil {
		return sessiondto.EndOutput{}, err
	}
	if session.DurationMin > 0 {
		if _, err := i.learning.RecordTimeSpent(ctx, learningdto.RecordTimeSpentInput{ModuleID: active.ModuleID, Minutes: session.DurationMin}); err != nil {
			return sessiondto.EndOutput{}, err
		}
	}
	if err := i.activeStore.ClearActive(ctx); err != nil {
		return sessiondto.EndOutput{}, err
	}

	return sessiondto.EndOutput{
		SessionID:      session.ID,
		ModuleID:       session.ModuleID,
		Path:           path,
		DurationMin:    session.DurationMin,
		DeltaProgress:  session.DeltaProgress,
		ProgressBefore: session.ProgressBefore,
		ProgressAfter:  session.ProgressAfter,
	}, nil
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	if i.activeStore == nil {
		return sessiondto.ActiveSessionOutput{}, apperrors.ErrNoActiveSession
	}
	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return sessiondto.ActiveSessionOutput{
		SessionID:   active.SessionID,
		ModuleID:    active.ModuleID,
		ModuleTitle: active.ModuleTitle,
		StartedAt:   active.StartedAt,
		Goal:        active.Goal,
	}, nil
}

func (i *Interactor) History(ctx context.Context, input sessiondto.HistoryInput) ([]sessiondto.SessionOutput, error) {
	sessions, err := i.svc.History(ctx, input.ModuleID)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.SessionOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessiondto.SessionOutput{
			SessionID:      s.ID,
			ModuleID:       s.ModuleID,
			ModuleTitle:    s.ModuleTitle,
			StartedAt:      s.StartedAt,
			DurationMin:    s.DurationMin,
			Goal:           s.Goal,
			Outcome:        s.Outcome,
			DeltaProgress:  s.DeltaProgress,
			ProgressBefore: s.ProgressBefore,
			ProgressAfter:  s.ProgressAfter,
		})
	}
	return out, nil
}
