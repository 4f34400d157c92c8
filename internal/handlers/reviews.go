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

type CreateReviewRequest struct {
	Text  string `json:"text" binding:"required"`
	Score int    `json:"score" binding:"required"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type ReviewResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func toReviewResponse(review *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      review.ID,
		Text:    review.Text,
		Author:  review.Author.Username,
		Score:   review.Score,
		PubDate: review.CreatedAt,
	}
}

func ListReviews(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AuthorOrStaffOrReadOnly, policy.Input{Actor: actor, Write: false}) {
		return
	}

	titleID, err := utils.GetTitleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit, offset := utils.PageParams(ctx)
	svc := services.ReviewService{DB: db.DB}

	reviews, count, err := svc.ListReviews(titleID, limit, offset)

	if err != nil {
		respondError(ctx, err)
		return
	}

	results := make([]ReviewResponse, 0, len(reviews))

	for i := range reviews {
		results = append(results, toReviewResponse(&reviews[i]))
	}

	ctx.JSON(http.StatusOK, utils.PageResponse{Count: count, Results: results})
}

func CreateReview(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	// The creator owns the review being created.
	if !authorize(ctx, policy.AuthorOrStaffOrReadOnly, policy.Input{Actor: actor, Write: true, OwnerID: &actor.ID}) {
		return
	}

	titleID, err := utils.GetTitleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req CreateReviewRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	svc := services.ReviewService{DB: db.DB}

	review, err := svc.CreateReview(titleID, actor.ID, req.Text, req.Score)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toReviewResponse(review))
}

func GetReview(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AuthorOrStaffOrReadOnly, policy.Input{Actor: actor, Write: false}) {
		return
	}

	titleID, err := utils.GetTitleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviewID, err := utils.GetReviewID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.ReviewService{DB: db.DB}

	review, err := svc.GetReview(titleID, reviewID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toReviewResponse(review))
}

func UpdateReview(ctx *gin.Context) {
	titleID, err := utils.GetTitleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviewID, err := utils.GetReviewID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.ReviewService{DB: db.DB}

	review, err := svc.GetReview(titleID, reviewID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AuthorOrStaffOrReadOnly, policy.Input{Actor: actor, Write: true, OwnerID: &review.AuthorID}) {
		return
	}

	var req UpdateReviewRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updated, err := svc.UpdateReview(titleID, reviewID, req.Text, req.Score)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toReviewResponse(updated))
}

func DeleteReview(ctx *gin.Context) {
	titleID, err := utils.GetTitleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviewID, err := utils.GetReviewID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.ReviewService{DB: db.DB}

	review, err := svc.GetReview(titleID, reviewID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AuthorOrStaffOrReadOnly, policy.Input{Actor: actor, Write: true, OwnerID: &review.AuthorID}) {
		return
	}

	if err := svc.DeleteReview(titleID, reviewID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
