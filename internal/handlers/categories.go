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

type SlugResourceRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

type SlugResourceResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func toCategoryResponse(category *models.Category) SlugResourceResponse {
	return SlugResourceResponse{Name: category.Name, Slug: category.Slug}
}

func toGenreResponse(genre *models.Genre) SlugResourceResponse {
	return SlugResourceResponse{Name: genre.Name, Slug: genre.Slug}
}

func ListCategories(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AdminOrReadOnly, policy.Input{Actor: actor, Write: false}) {
		return
	}

	limit, offset := utils.PageParams(ctx)
	svc := services.CatalogService{DB: db.DB}

	categories, count, err := svc.ListCategories(ctx.Query("search"), limit, offset)

	if err != nil {
		respondError(ctx, err)
		return
	}

	results := make([]SlugResourceResponse, 0, len(categories))

	for i := range categories {
		results = append(results, toCategoryResponse(&categories[i]))
	}

	ctx.JSON(http.StatusOK, utils.PageResponse{Count: count, Results: results})
}

func CreateCategory(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AdminOrReadOnly, policy.Input{Actor: actor, Write: true}) {
		return
	}

	var req SlugResourceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	svc := services.CatalogService{DB: db.DB}

	category, err := svc.CreateCategory(req.Name, req.Slug)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toCategoryResponse(category))
}

func DeleteCategory(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AdminOrReadOnly, policy.Input{Actor: actor, Write: true}) {
		return
	}

	svc := services.CatalogService{DB: db.DB}

	if err := svc.DeleteCategory(ctx.Param("slug")); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
