package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/shoplive-catalog/internal/errors"
	"github.com/ikkim/shoplive-catalog/pkg/util"
)

// Context keys for operator information
const (
	OperatorKey     = "operator"
	OperatorRoleKey = "operator_role"
)

const RoleAdmin = "admin"

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate validates the bearer token of a back-office operator.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", nil)
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" {
			log.Warn("Invalid authorization header format", nil)
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "인증 형식이 올바르지 않습니다")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"error": err.Error(),
			})
			if errors.Is(err, util.ErrExpiredToken) {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "로그인이 만료되었습니다")
			} else {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "유효하지 않은 인증 토큰입니다")
			}
			c.Abort()
			return
		}

		c.Set(OperatorKey, claims.Operator)
		c.Set(OperatorRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole checks the authenticated operator has one of roles.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetOperatorRole(c)
		if !exists {
			log.Warn("Role information not found in context", nil)
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzRoleNotFound, "권한 정보를 찾을 수 없습니다")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		operator, _ := GetOperator(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"operator":       operator,
			"role":           role,
			"required_roles": roles,
		})
		apperrors.Forbidden(c, "")
		c.Abort()
	}
}

func GetOperator(c *gin.Context) (string, bool) {
	v, exists := c.Get(OperatorKey)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func GetOperatorRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(OperatorRoleKey)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
