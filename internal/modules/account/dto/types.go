package dto

import "time"

type LoginInput struct {
	Email    string
	Password string
}

type RegisterInput struct {
	Name              string
	Email             string
	Password          string
	Role              string
	PreferredLanguage string
}

type UserOutput struct {
	ID                string
	Name              string
	Email             string
	Role              string
	PreferredLanguage string
	CreatedAt         time.Time
}
