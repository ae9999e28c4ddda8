package types

import (
	"strings"

	"github.com/labstack/echo/v4"
	"google.golang.org/protobuf/types/known/structpb"
)

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func NewForgotPasswordRequestFromContext(ctx echo.Context) (*ForgotPasswordRequest, error) {
	var body ForgotPasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Email = strings.TrimSpace(body.Email)

	return &body, nil
}

func NewForgotPasswordRequestFromStruct(s *structpb.Struct) *ForgotPasswordRequest {
	return &ForgotPasswordRequest{
		Email: strings.TrimSpace(stringField(s, "email")),
	}
}

func (r *ForgotPasswordRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

func (r *ForgotPasswordRequest) Validate() error {
	return validateStruct(r)
}

// ResetPasswordRequest carries the token and the new password. Password
// strength is checked by the service so that weak attempts are audited.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,min=32,max=256"`
	NewPassword string `json:"new_password" validate:"required"`
}

func NewResetPasswordRequestFromContext(ctx echo.Context) (*ResetPasswordRequest, error) {
	var body ResetPasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func NewResetPasswordRequestFromStruct(s *structpb.Struct) *ResetPasswordRequest {
	return &ResetPasswordRequest{
		Token:       stringField(s, "token"),
		NewPassword: stringField(s, "new_password"),
	}
}

func (r *ResetPasswordRequest) GetToken() string {
	if r == nil {
		return ""
	}
	return r.Token
}

func (r *ResetPasswordRequest) GetNewPassword() string {
	if r == nil {
		return ""
	}
	return r.NewPassword
}

func (r *ResetPasswordRequest) Validate() error {
	return validateStruct(r)
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	value, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return value.GetStringValue()
}
