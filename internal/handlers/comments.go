package handlers

import (
	"net/http"
	"time"

	"github.com/critiq-dev/critiq/db"
	"github.com/critiq-dev/critiq/internal/models"
	"github.com/critiq-dev/critiq/internal/policy"
	"github.com/critiq-dev/critiq/internal/services"
	"github.com/critiq-dev/critiq/internal/utils"
	"github.com/gin-gonic/gin"
)

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func toCommentResponse(comment *models.Comment) CommentResponse {
	return CommentResponse{
		ID:      comment.ID,
		Text:    comment.Text,
		Author:  comment.Author.Username,
		PubDate: comment.CreatedAt,
	}
}

// commentScope pulls the title and review ids out of the URL.
func commentScope(ctx *gin.Context) (titleID, reviewID uint, ok bool) {
	titleID, err := utils.GetTitleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, 0, false
	}

	reviewID, err = utils.GetReviewID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, 0, false
	}

	return titleID, reviewID, true
}

func ListComments(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AuthorOrStaffOrReadOnly, policy.Input{Actor: actor, Write: false}) {
		return
	}

	titleID, reviewID, ok := commentScope(ctx)

	if !ok {
		return
	}

	limit, offset := utils.PageParams(ctx)
	svc := services.CommentService{DB: db.DB}

	comments, count, err := svc.ListComments(titleID, reviewID, limit, offset)

	if err != nil {
		respondError(ctx, err)
		return
	}

	results := make([]CommentResponse, 0, len(comments))

	for i := range comments {
		results = append(results, toCommentResponse(&comments[i]))
	}

	ctx.JSON(http.StatusOK, utils.PageResponse{Count: count, Results: results})
}

func CreateComment(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AuthorOrStaffOrReadOnly, policy.Input{Actor: actor, Write: true, OwnerID: &actor.ID}) {
		return
	}

	titleID, reviewID, ok := commentScope(ctx)

	if !ok {
		return
	}

	var req CommentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	svc := services.CommentService{DB: db.DB}

	comment, err := svc.CreateComment(titleID, reviewID, actor.ID, req.Text)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toCommentResponse(comment))
}

func GetComment(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AuthorOrStaffOrReadOnly, policy.Input{Actor: actor, Write: false}) {
		return
	}

	titleID, reviewID, ok := commentScope(ctx)

	if !ok {
		return
	}

	commentID, err := utils.GetCommentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.CommentService{DB: db.DB}

	comment, err := svc.GetComment(titleID, reviewID, commentID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toCommentResponse(comment))
}

func UpdateComment(ctx *gin.Context) {
	titleID, reviewID, ok := commentScope(ctx)

	if !ok {
		return
	}

	commentID, err := utils.GetCommentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.CommentService{DB: db.DB}

	comment, err := svc.GetComment(titleID, reviewID, commentID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AuthorOrStaffOrReadOnly, policy.Input{Actor: actor, Write: true, OwnerID: &comment.AuthorID}) {
		return
	}

	var req CommentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updated, err := svc.UpdateComment(titleID, reviewID, commentID, req.Text)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toCommentResponse(updated))
}

func DeleteComment(ctx *gin.Context) {
	titleID, reviewID, ok := commentScope(ctx)

	if !ok {
		return
	}

	commentID, err := utils.GetCommentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.CommentService{DB: db.DB}

	comment, err := svc.GetComment(titleID, reviewID, commentID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AuthorOrStaffOrReadOnly, policy.Input{Actor: actor, Write: true, OwnerID: &comment.AuthorID}) {
		return
	}

	if err := svc.DeleteComment(titleID, reviewID, commentID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
