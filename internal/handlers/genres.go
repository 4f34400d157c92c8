package handlers

import (
	"net/http"

	"github.com/critiq-dev/critiq/db"
	"github.com/critiq-dev/critiq/internal/policy"
	"github.com/critiq-dev/critiq/internal/services"
	"github.com/critiq-dev/critiq/internal/utils"
	"github.com/gin-gonic/gin"
)

func ListGenres(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AdminOrReadOnly, policy.Input{Actor: actor, Write: false}) {
		return
	}

	limit, offset := utils.PageParams(ctx)
	svc := services.CatalogService{DB: db.DB}

	genres, count, err := svc.ListGenres(ctx.Query("search"), limit, offset)

	if err != nil {
		respondError(ctx, err)
		return
	}

	results := make([]SlugResourceResponse, 0, len(genres))

	for i := range genres {
		results = append(results, toGenreResponse(&genres[i]))
	}

	ctx.JSON(http.StatusOK, utils.PageResponse{Count: count, Results: results})
}

func CreateGenre(ctx *gin.Context) {
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

	genre, err := svc.CreateGenre(req.Name, req.Slug)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toGenreResponse(genre))
}

func DeleteGenre(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AdminOrReadOnly, policy.Input{Actor: actor, Write: true}) {
		return
	}

	svc := services.CatalogService{DB: db.DB}

	if err := svc.DeleteGenre(ctx.Param("slug")); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
