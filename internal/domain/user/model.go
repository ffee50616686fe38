package user

import "time"

type User struct {
	ID        string
	Email     string
	Password  string // bcrypt hash
	CreatedAt time.Time
}

type BaseRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
