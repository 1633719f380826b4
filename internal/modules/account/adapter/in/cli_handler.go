package in

import (
	"context"

	accountdto "microlearn/internal/modules/account/dto"
	accountin "microlearn/internal/modules/account/port/in"
)

type CLIHandler struct {
	usecase accountin.Usecase
}

func NewCLIHandler(usecase accountin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Login(ctx context.Context, email, password string) (accountdto.UserOutput, error) {
	return h.usecase.Login(ctx, accountdto.LoginInput{Email: email, Password: password})
}

func (h CLIHandler) Register(ctx context.Context, name, email, password, role, language string) (accountdto.UserOutput, error) {
	return h.usecase.Register(ctx, accountdto.RegisterInput{
		Name:              name,
		Email:             email,
		Password:          password,
		Role:              role,
		PreferredLanguage: language,
	})
}

func (h CLIHandler) Logout(ctx context.Context) error {
	return h.usecase.Logout(ctx)
}

func (h CLIHandler) WhoAmI(ctx context.Context) (accountdto.UserOutput, error) {
	return h.usecase.Current(ctx)
}
