package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/domain/user"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
	"github.com/khoahotran/jutjub/pkg/validate"
)

type RegisterUseCase struct {
	gateway user.Gateway
	logger  logger.Logger
}

func NewRegisterUseCase(gw user.Gateway, log logger.Logger) *RegisterUseCase {
	return &RegisterUseCase{gateway: gw, logger: log}
}

type RegisterOutput struct {
	Message string
}

// Execute validates the form locally before the account is created.
func (uc *RegisterUseCase) Execute(ctx context.Context, req user.RegisterRequest) (*RegisterOutput, error) {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	msg, err := uc.gateway.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.logger.Info("Account registered", zap.String("username", req.Username))
	if msg == "" {
		msg = "Registration successful. Check your email to activate the account."
	}
	return &RegisterOutput{Message: msg}, nil
}

type ActivateUseCase struct {
	gateway user.Gateway
}

func NewActivateUseCase(gw user.Gateway) *ActivateUseCase {
	return &ActivateUseCase{gateway: gw}
}

func (uc *ActivateUseCase) Execute(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperror.NewInvalidInput("No activation token provided.", nil)
	}
	return uc.gateway.Activate(ctx, token)
}
