package controller

import (
	"errors"
	"fmt"
	"net/http"

	dto "github.com/vibast-solutions/ms-go-identity/app/dto/http"
	"github.com/vibast-solutions/ms-go-identity/app/entity"
	"github.com/vibast-solutions/ms-go-identity/app/service"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	authService       *service.AuthService
	passwordMinLength int
}

func NewAuthController(authService *service.AuthService, passwordMinLength int) *AuthController {
	return &AuthController{
		authService:       authService,
		passwordMinLength: passwordMinLength,
	}
}

func (c *AuthController) Register(ctx echo.Context) error {
	var req dto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Email == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email and password are required"})
	}
	if len(req.Password) < c.passwordMinLength {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: c.passwordTooShortMessage()})
	}

	result, err := c.authService.Register(ctx.Request().Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: "user already exists"})
		}
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusCreated, dto.RegisterResponse{
		User:        userPayload(result.User),
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}

func (c *AuthController) Login(ctx echo.Context) error {
	var req dto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Email == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email and password are required"})
	}

	result, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password share one status and message.
		if errors.Is(err, service.ErrInvalidCredentials) {
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid credentials"})
		}
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, dto.LoginResponse{
		User:        userPayload(result.User),
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}

func (c *AuthController) ForgotPassword(ctx echo.Context) error {
	var req dto.ForgotPasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Email == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email is required"})
	}

	message, err := c.authService.RequestPasswordReset(ctx.Request().Context(), req.Email)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: message})
}

func (c *AuthController) ResetPassword(ctx echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Token == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "token, new_password and confirm_password are required"})
	}
	if len(req.NewPassword) < c.passwordMinLength {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: c.passwordTooShortMessage()})
	}

	message, err := c.authService.ResetPassword(ctx.Request().Context(), req.Token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		if errors.Is(err, service.ErrPasswordMismatch) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "passwords do not match"})
		}
		if errors.Is(err, service.ErrInvalidResetToken) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid or expired reset token"})
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: message})
}

func (c *AuthController) Me(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}
	email, _ := ctx.Get("user_email").(string)

	return ctx.JSON(http.StatusOK, dto.MeResponse{
		UserID: userID,
		Email:  email,
	})
}

func (c *AuthController) passwordTooShortMessage() string {
	return fmt.Sprintf("password must be at least %d characters long", c.passwordMinLength)
}

func userPayload(user *entity.User) dto.UserPayload {
	payload := dto.UserPayload{
		UserID: user.ID,
		Email:  user.Email,
	}
	if user.FirstName.Valid {
		payload.FirstName = user.FirstName.String
	}
	if user.LastName.Valid {
		payload.LastName = user.LastName.String
	}
	return payload
}
