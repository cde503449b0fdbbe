package auth

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/internal/domain/user"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/auth"
	"github.com/khoahotran/jutjub/pkg/logger"
	"github.com/khoahotran/jutjub/pkg/validate"
)

var tracer = otel.Tracer("auth_usecase")

type LoginUseCase struct {
	gateway  user.Gateway
	sessions session.Store
	decoder  *auth.TokenDecoder
	logger   logger.Logger
}

func NewLoginUseCase(gw user.Gateway, sessions session.Store, decoder *auth.TokenDecoder, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		gateway:  gw,
		sessions: sessions,
		decoder:  decoder,
		logger:   log,
	}
}

type LoginInput struct {
	UsernameOrEmail string
	Password        string
}

type LoginOutput struct {
	Session *session.Session
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	req := user.LoginRequest{
		UsernameOrEmail: strings.TrimSpace(input.UsernameOrEmail),
		Password:        input.Password,
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	token, err := uc.gateway.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s := uc.decoder.NewSession(token, req.UsernameOrEmail)
	if err := uc.sessions.Save(ctx, s); err != nil {
		uc.logger.Error("Failed to save session", err, zap.String("username", s.Username))
		err = apperror.NewInternal("failed to save session", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("username", s.Username))
	return &LoginOutput{Session: s}, nil
}

type LogoutUseCase struct {
	sessions session.Store
}

func NewLogoutUseCase(sessions session.Store) *LogoutUseCase {
	return &LogoutUseCase{sessions: sessions}
}

func (uc *LogoutUseCase) Execute(ctx context.Context) error {
	if err := uc.sessions.Clear(ctx); err != nil {
		return apperror.NewInternal("failed to clear session", err)
	}
	return nil
}
