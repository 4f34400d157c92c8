package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/critiq-dev/critiq/internal/policy"
	"github.com/critiq-dev/critiq/internal/services"
	"github.com/critiq-dev/critiq/internal/validators"
	"github.com/gin-gonic/gin"
)

// respondError maps service-layer errors onto the HTTP error taxonomy.
// Anything unrecognized is logged and reported as a 500 without detail.
func respondError(ctx *gin.Context, err error) {
	var fieldErr *services.FieldError

	switch {
	case errors.As(err, &fieldErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Message, "field": fieldErr.Field})
	case errors.Is(err, validators.ErrInvalidUsername),
		errors.Is(err, validators.ErrInvalidEmail),
		errors.Is(err, validators.ErrInvalidYear),
		errors.Is(err, validators.ErrInvalidScore),
		errors.Is(err, services.ErrInvalidConfirmationCode):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// authorize evaluates a policy and writes the 401/403 response on denial.
// Returns true when the request may proceed.
func authorize(ctx *gin.Context, p policy.Policy, in policy.Input) bool {
	if p(in) {
		return true
	}

	if !in.Actor.Authenticated {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	} else {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
	}

	return false
}
