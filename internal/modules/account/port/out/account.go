package out

import (
	"context"

	"microlearn/internal/modules/account/domain"
)

// UserStore keeps the signed-in user between runs. Load returns
// apperrors.ErrNotLoggedIn when nobody is stored.
type UserStore interface {
	Save(ctx context.Context, user domain.User) error
	Load(ctx context.Context) (domain.User, error)
	Clear(ctx context.Context) error
}
