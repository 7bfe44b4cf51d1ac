package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"rentease-service/internal/model"
)

const actorKey = "actor"

var errNoBearer = errors.New("no bearer token")

// RoleSource looks up the role stored for a user.
type RoleSource interface {
	RoleOf(ctx context.Context, userID string) (model.Role, error)
}

// Auth verifies bearer tokens issued by the identity service. Admin comes
// from the token's roles claim or from the stored user role.
type Auth struct {
	secret []byte
	roles  RoleSource
}

// NewAuth takes an optional RoleSource; nil trusts the token alone.
func NewAuth(secret string, roles RoleSource) *Auth {
	return &Auth{secret: []byte(secret), roles: roles}
}

// Authenticate rejects requests without a valid token.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := a.actor(c.Request.Context(), c.GetHeader("Authorization"))
		if errors.Is(err, errNoBearer) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No bearer token"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through.
func (a *Auth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, err := a.actor(c.Request.Context(), c.GetHeader("Authorization")); err == nil {
			c.Set(actorKey, actor)
		}
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access only"})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated caller, or the anonymous actor.
func ActorFrom(c *gin.Context) model.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(model.Actor); ok {
			return actor
		}
	}
	return model.Actor{}
}

func (a *Auth) actor(ctx context.Context, header string) (model.Actor, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return model.Actor{}, errNoBearer
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil || !token.Valid {
		return model.Actor{}, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Actor{}, errors.New("invalid claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return model.Actor{}, errors.New("token has no subject")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	role := model.RoleUser
	if hasAdminRole(claims["roles"]) || hasAdminRole(claims["role"]) {
		role = model.RoleAdmin
	}
	if role != model.RoleAdmin && a.roles != nil {
		stored, err := a.roles.RoleOf(ctx, sub)
		if err != nil {
			log.Printf("[Auth] role lookup for %s: %v", sub, err)
		} else if stored == model.RoleAdmin {
			role = model.RoleAdmin
		}
	}
	return model.Actor{UserID: sub, Email: email, Name: name, Role: role}, nil
}

func hasAdminRole(raw interface{}) bool {
	switch roles := raw.(type) {
	case []interface{}:
		for _, r := range roles {
			if s, ok := r.(string); ok && model.ParseRole(s) == model.RoleAdmin {
				return true
			}
		}
	case []string:
		for _, s := range roles {
			if model.ParseRole(s) == model.RoleAdmin {
				return true
			}
		}
	case string:
		return model.ParseRole(roles) == model.RoleAdmin
	}
	return false
}
