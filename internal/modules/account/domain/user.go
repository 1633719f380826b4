package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "microlearn/internal/platform/errors"
)

type Role string

const (
	RoleLearner      Role = "learner"
	RolePractitioner Role = "practitioner"
	RoleSupervisor   Role = "supervisor"
)

const (
	DefaultName     = "New Learner"
	DefaultLanguage = "English"

	demoUserID   = "1"
	demoUserName = "Maria Santos"
)

type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              Role      `json:"role"`
	PreferredLanguage string    `json:"preferred_language"`
	CreatedAt         time.Time `json:"created_at"`
}

func (r Role) Validate() error {
	switch r {
	case RoleLearner, RolePractitioner, RoleSupervisor:
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidInput, r)
	}
}

// DemoUser is the fixed account every demo login resolves to; only the
// email follows the credentials.
func DemoUser(email string, now time.Time) User {
	return User{
		ID:                demoUserID,
		Name:              demoUserName,
		Email:             email,
		Role:              RoleLearner,
		PreferredLanguage: DefaultLanguage,
		CreatedAt:         now,
	}
}

// WithDefaults fills the blanks left by a registration form.
func (u User) WithDefaults() User {
	if strings.TrimSpace(u.Name) == "" {
		u.Name = DefaultName
	}
	if u.Role == "" {
		u.Role = RoleLearner
	}
	if strings.TrimSpace(u.PreferredLanguage) == "" {
		u.PreferredLanguage = DefaultLanguage
	}
	return u
}
