package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/notevault/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// UserFinder is the slice of the user repository the middleware needs.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type AuthMiddleware struct {
	users  UserFinder
	secret string
}

func NewAuthMiddleware(users UserFinder, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		users:  users,
		secret: secret,
	}
}

func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	// websocket clients cannot set headers
	return c.Query("token")
}

// authenticate resolves the bearer token to an active user.
func (m *AuthMiddleware) authenticate(c *gin.Context, tokenString string) (*entity.User, string) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, "invalid or expired token"
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, "invalid token claims"
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, "invalid token claims"
	}

	user, err := m.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		return nil, "user not found"
	}
	if !user.IsActive {
		return nil, "account is deactivated"
	}
	return user, ""
}

func setUser(c *gin.Context, user *entity.User) {
	c.Set(ContextUserID, user.ID.String())
	c.Set(ContextUserRole, string(user.Role))
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		user, reason := m.authenticate(c, tokenString)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": reason})
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through untouched.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := tokenFromRequest(c); tokenString != "" {
			if user, _ := m.authenticate(c, tokenString); user != nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireModerator must run after RequireAuth.
func (m *AuthMiddleware) RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := entity.Role(c.GetString(ContextUserRole))
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		if !role.CanModerate() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
