package middleware

import (
	"net/http"
	"strings"

	"github.com/critiq-dev/critiq/db"
	"github.com/critiq-dev/critiq/internal/auth"
	"github.com/critiq-dev/critiq/internal/models"
	"github.com/critiq-dev/critiq/internal/policy"
	"github.com/critiq-dev/critiq/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func actorFromToken(ctx *gin.Context, tokenString string) (policy.Actor, bool) {
	token, err := auth.VerifyJWT(tokenString)

	if err != nil || !token.Valid {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return policy.Actor{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return policy.Actor{}, false
	}

	userIDFloat, ok := claims["user_id"].(float64)

	if !ok {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token claims"})
		return policy.Actor{}, false
	}

	userID := uint(userIDFloat)

	// The role is read from the store on every request so a role change takes
	// effect immediately, not at the next token refresh.
	var user models.User

	if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return policy.Actor{}, false
	}

	return policy.Actor{
		ID:            user.ID,
		Username:      user.Username,
		Role:          user.Role,
		Staff:         user.IsStaff,
		Authenticated: true,
	}, true
}

func bearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")

	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) != 2 || parts[0] != "Bearer" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
		return "", false
	}

	return parts[1], true
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		tokenString, ok := bearerToken(ctx)

		if !ok {
			return
		}

		actor, ok := actorFromToken(ctx, tokenString)

		if !ok {
			return
		}

		ctx.Set(types.ContextActorKey, actor)
		ctx.Next()
	}
}

// OptionalAuth resolves the actor when a token is present and falls through
// to an anonymous actor when it is not. A present-but-invalid token is still
// rejected.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetHeader("Authorization") == "" {
			ctx.Set(types.ContextActorKey, policy.Actor{})
			ctx.Next()
			return
		}

		tokenString, ok := bearerToken(ctx)

		if !ok {
			return
		}

		actor, ok := actorFromToken(ctx, tokenString)

		if !ok {
			return
		}

		ctx.Set(types.ContextActorKey, actor)
		ctx.Next()
	}
}
