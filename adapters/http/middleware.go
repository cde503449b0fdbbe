package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/auth"
	"github.com/khoahotran/jutjub/pkg/logger"
)

const (
	GinContextKeySession   = "session"
	GinContextKeyRequestID = "requestID"
)

// SessionMiddleware gives every request its own session store, seeded from
// the Authorization header when present. Use cases reach it through
// session.ContextStore.
func SessionMiddleware(decoder *auth.TokenDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := session.NewMemoryStore(nil)

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
				c.Error(apperror.NewUnauthorized("Invalid token format", nil))
				c.Abort()
				return
			}
			s := decoder.NewSession(tokenString, "")
			if !s.Authenticated(time.Now()) {
				c.Error(apperror.NewUnauthorized("Invalid or expired token", nil))
				c.Abort()
				return
			}
			_ = store.Save(c.Request.Context(), s)
			c.Set(GinContextKeySession, s)
		}

		c.Request = c.Request.WithContext(session.WithStore(c.Request.Context(), store))
		c.Next()
	}
}

func GetSessionFromGinContext(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(GinContextKeySession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(GinContextKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// ErrorMiddleware renders the last error a handler attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("unexpected error", err)
		}
		status := apperror.ToHTTPStatus(appErr)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.String("request_id", c.GetString(GinContextKeyRequestID)),
		}
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, fields...)
		} else {
			log.Warn("Request rejected", append(fields, zap.String("reason", appErr.Message))...)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(status, appErr.ToJSON())
	}
}
