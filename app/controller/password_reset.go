package controller

import (
	"context"
	"errors"
	"net/http"

	httpdto "github.com/azafe/Bandidos-backend/app/dto/http"
	"github.com/azafe/Bandidos-backend/app/service"
	"github.com/azafe/Bandidos-backend/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type passwordResetService interface {
	RequestReset(ctx context.Context, email string, client service.ClientInfo) error
	ResetPassword(ctx context.Context, token, newPassword string, client service.ClientInfo) error
}

type PasswordResetController struct {
	resetService passwordResetService
}

func NewPasswordResetController(resetService passwordResetService) *PasswordResetController {
	return &PasswordResetController{resetService: resetService}
}

func (c *PasswordResetController) ForgotPassword(ctx echo.Context) error {
	req, err := types.NewForgotPasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind forgot password request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithError(err).Debug("Forgot password validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	if err = c.resetService.RequestReset(ctx.Request().Context(), req.GetEmail(), clientInfo(ctx)); err != nil {
		logrus.WithError(err).Error("Password reset request failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.OKResponse{OK: true})
}

func (c *PasswordResetController) ResetPassword(ctx echo.Context) error {
	req, err := types.NewResetPasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind reset password request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithError(err).Debug("Reset password validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	err = c.resetService.ResetPassword(ctx.Request().Context(), req.GetToken(), req.GetNewPassword(), clientInfo(ctx))
	if err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.Warn("Reset password failed: weak password")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			logrus.Warn("Reset password failed: invalid or expired token")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid or expired token"})
		}
		logrus.WithError(err).Error("Reset password failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.Info("Password reset completed")
	return ctx.JSON(http.StatusOK, httpdto.OKResponse{OK: true})
}

func clientInfo(ctx echo.Context) service.ClientInfo {
	return service.ClientInfo{
		IP:        ctx.RealIP(),
		UserAgent: ctx.Request().UserAgent(),
	}
}
