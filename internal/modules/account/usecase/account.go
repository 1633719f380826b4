package usecase

import (
	"context"

	"microlearn/internal/modules/account/domain"
	"microlearn/internal/modules/account/dto"
	accountin "microlearn/internal/modules/account/port/in"
	accountout "microlearn/internal/modules/account/port/out"
	"microlearn/internal/modules/account/service"
	apperrors "microlearn/internal/platform/errors"
)

type Interactor struct {
	svc   *service.AccountService
	store accountout.UserStore
}

func NewInteractor(svc *service.AccountService, store accountout.UserStore) accountin.Usecase {
	return &Interactor{svc: svc, store: store}
}

func (i *Interactor) Login(ctx context.Context, input dto.LoginInput) (dto.UserOutput, error) {
	user, err := i.svc.Login(ctx, input.Email, input.Password)
	if err != nil {
		return dto.UserOutput{}, err
	}
	return i.remember(ctx, user)
}

func (i *Interactor) Register(ctx context.Context, input dto.RegisterInput) (dto.UserOutput, error) {
	user, err := i.svc.Register(ctx, input.Name, input.Email, input.Password, input.Role, input.PreferredLanguage)
	if err != nil {
		return dto.UserOutput{}, err
	}
	return i.remember(ctx, user)
}

func (i *Interactor) Logout(ctx context.Context) error {
	if i.store == nil {
		return nil
	}
	return i.store.Clear(ctx)
}

func (i *Interactor) Current(ctx context.Context) (dto.UserOutput, error) {
	if i.store == nil {
		return dto.UserOutput{}, apperrors.ErrNotLoggedIn
	}
	user, err := i.store.Load(ctx)
	if err != nil {
		return dto.UserOutput{}, err
	}
	return toOutput(user), nil
}

func (i *Interactor) remember(ctx context.Context, user domain.User) (dto.UserOutput, error) {
	if i.store != nil {
		if err := i.store.Save(ctx, user); err != nil {
			return dto.UserOutput{}, err
		}
	}
	return toOutput(user), nil
}

func toOutput(user domain.User) dto.UserOutput {
	return dto.UserOutput{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Role:              string(user.Role),
		PreferredLanguage: user.PreferredLanguage,
		CreatedAt:         user.CreatedAt,
	}
}
