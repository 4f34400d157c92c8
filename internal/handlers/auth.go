package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/critiq-dev/critiq/db"
	"github.com/critiq-dev/critiq/internal/services"
	"github.com/gin-gonic/gin"
)

// Mailer delivers confirmation codes. main swaps in the configured sender.
var Mailer services.Sender = services.LogSender{}

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

func Signup(ctx *gin.Context) {
	var req SignupRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	identity := services.IdentityService{DB: db.DB, Sender: Mailer}

	if err := identity.Register(req.Username, req.Email); err != nil {
		// Identity clashes on signup are reported as a plain 400, matching
		// the public signup contract.
		if errors.Is(err, services.ErrConflict) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, req)
}

func Token(ctx *gin.Context) {
	var req TokenRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	identity := services.IdentityService{DB: db.DB, Sender: Mailer}

	token, err := identity.IssueToken(req.Username, req.ConfirmationCode)

	if err != nil {
		respondError(ctx, err)
		return
	}

	log.Printf("Issued access token for %s", req.Username)

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}
