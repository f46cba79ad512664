package client

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64,excludesall=/"`
	Password string `json:"password" validate:"required,min=4,max=128"`
}

type Account struct {
	Username string `json:"username"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validateRequest(req any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}
