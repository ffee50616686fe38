package user

import "joddit/internal/domain/user"

type registerInput struct {
	Body user.BaseRequest
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterResponse struct {
	UserID string `json:"userId,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type loginInput struct {
	Body user.BaseRequest
}

type loginOutput struct {
	Body LoginResponse
}

type LoginResponse struct {
	Token  string `json:"token,omitempty"`
	UserID string `json:"userId,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type logoutInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token to revoke"`
}

type logoutOutput struct {
	Body LogoutResponse
}

type LogoutResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
