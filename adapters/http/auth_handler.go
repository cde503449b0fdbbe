package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authUC "github.com/khoahotran/jutjub/internal/application/usecase/auth"
	"github.com/khoahotran/jutjub/internal/domain/user"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

type AuthHandler struct {
	loginUseCase    *authUC.LoginUseCase
	registerUseCase *authUC.RegisterUseCase
	activateUseCase *authUC.ActivateUseCase
	logger          logger.Logger
}

func NewAuthHandler(loginUC *authUC.LoginUseCase, registerUC *authUC.RegisterUseCase, activateUC *authUC.ActivateUseCase, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		loginUseCase:    loginUC,
		registerUseCase: registerUC,
		activateUseCase: activateUC,
		logger:          log,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("usernameOrEmail and password are required", err))
		return
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), authUC.LoginInput{
		UsernameOrEmail: req.UsernameOrEmail,
		Password:        req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	resp := gin.H{"token": output.Session.Token, "username": output.Session.Username}
	if !output.Session.ExpiresAt.IsZero() {
		resp["expiresAt"] = output.Session.ExpiresAt
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body", err))
		return
	}
	out, err := h.registerUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.String(http.StatusOK, out.Message)
}

func (h *AuthHandler) Activate(c *gin.Context) {
	msg, err := h.activateUseCase.Execute(c.Request.Context(), c.Query("token"))
	if err != nil {
		c.Error(err)
		return
	}
	c.String(http.StatusOK, msg)
}
