package handlers

import (
	"net/http"

	"github.com/critiq-dev/critiq/db"
	"github.com/critiq-dev/critiq/internal/models"
	"github.com/critiq-dev/critiq/internal/policy"
	"github.com/critiq-dev/critiq/internal/services"
	"github.com/critiq-dev/critiq/internal/utils"
	"github.com/gin-gonic/gin"
)

type UserPayload struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		Role:      user.Role,
	}
}

func (p UserPayload) toInput() services.UserInput {
	return services.UserInput{
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Bio:       p.Bio,
		Role:      p.Role,
	}
}

func ListUsers(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.Admin, policy.Input{Actor: actor, Write: false}) {
		return
	}

	limit, offset := utils.PageParams(ctx)
	svc := services.UserService{DB: db.DB}

	users, count, err := svc.ListUsers(ctx.Query("search"), limit, offset)

	if err != nil {
		respondError(ctx, err)
		return
	}

	results := make([]UserResponse, 0, len(users))

	for i := range users {
		results = append(results, toUserResponse(&users[i]))
	}

	ctx.JSON(http.StatusOK, utils.PageResponse{Count: count, Results: results})
}

func CreateUser(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.Admin, policy.Input{Actor: actor, Write: true}) {
		return
	}

	var payload UserPayload

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	svc := services.UserService{DB: db.DB}

	user, err := svc.CreateUser(payload.toInput())

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toUserResponse(user))
}

func GetUser(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.Admin, policy.Input{Actor: actor, Write: false}) {
		return
	}

	svc := services.UserService{DB: db.DB}

	user, err := svc.GetUser(ctx.Param("username"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toUserResponse(user))
}

func UpdateUser(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.Admin, policy.Input{Actor: actor, Write: true}) {
		return
	}

	var payload UserPayload

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	svc := services.UserService{DB: db.DB}

	user, err := svc.UpdateUser(ctx.Param("username"), payload.toInput())

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toUserResponse(user))
}

func DeleteUser(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.Admin, policy.Input{Actor: actor, Write: true}) {
		return
	}

	svc := services.UserService{DB: db.DB}

	if err := svc.DeleteUser(ctx.Param("username")); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func Me(ctx *gin.Context) {
	actor, err := utils.RequireActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	svc := services.UserService{DB: db.DB}

	user, err := svc.GetUserByID(actor.ID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toUserResponse(user))
}

func UpdateMe(ctx *gin.Context) {
	actor, err := utils.RequireActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var payload UserPayload

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	svc := services.UserService{DB: db.DB}

	// UpdateSelf pins the role, so a submitted role value is ignored.
	user, err := svc.UpdateSelf(actor.ID, payload.toInput())

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toUserResponse(user))
}
