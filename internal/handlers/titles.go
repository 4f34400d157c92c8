package handlers

import (
	"net/http"
	"strconv"

	"github.com/critiq-dev/critiq/db"
	"github.com/critiq-dev/critiq/internal/policy"
	"github.com/critiq-dev/critiq/internal/services"
	"github.com/critiq-dev/critiq/internal/utils"
	"github.com/gin-gonic/gin"
)

type TitleRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

type TitleResponse struct {
	ID          uint                   `json:"id"`
	Name        string                 `json:"name"`
	Year        int                    `json:"year"`
	Rating      *float64               `json:"rating"`
	Description *string                `json:"description"`
	Genre       []SlugResourceResponse `json:"genre"`
	Category    *SlugResourceResponse  `json:"category"`
}

func toTitleResponse(detail *services.TitleDetail) TitleResponse {
	resp := TitleResponse{
		ID:          detail.ID,
		Name:        detail.Name,
		Year:        detail.Year,
		Rating:      detail.Rating,
		Description: detail.Description,
		Genre:       make([]SlugResourceResponse, 0, len(detail.Genres)),
	}

	for i := range detail.Genres {
		resp.Genre = append(resp.Genre, toGenreResponse(&detail.Genres[i]))
	}

	if detail.Category != nil {
		category := toCategoryResponse(detail.Category)
		resp.Category = &category
	}

	return resp
}

func (r TitleRequest) toInput() services.TitleInput {
	return services.TitleInput{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Category:    r.Category,
		Genres:      r.Genre,
	}
}

func ListTitles(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AdminOrReadOnly, policy.Input{Actor: actor, Write: false}) {
		return
	}

	filter := services.TitleFilter{
		Name:         ctx.Query("name"),
		CategorySlug: ctx.Query("category"),
		GenreSlug:    ctx.Query("genre"),
	}

	if raw := ctx.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year filter"})
			return
		}
		filter.Year = &year
	}

	limit, offset := utils.PageParams(ctx)
	svc := services.TitleService{DB: db.DB}

	titles, count, err := svc.ListTitles(filter, limit, offset)

	if err != nil {
		respondError(ctx, err)
		return
	}

	results := make([]TitleResponse, 0, len(titles))

	for i := range titles {
		results = append(results, toTitleResponse(&titles[i]))
	}

	ctx.JSON(http.StatusOK, utils.PageResponse{Count: count, Results: results})
}

func CreateTitle(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AdminOrReadOnly, policy.Input{Actor: actor, Write: true}) {
		return
	}

	var req TitleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	svc := services.TitleService{DB: db.DB}

	title, err := svc.CreateTitle(req.toInput())

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toTitleResponse(title))
}

func GetTitle(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AdminOrReadOnly, policy.Input{Actor: actor, Write: false}) {
		return
	}

	titleID, err := utils.GetTitleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.TitleService{DB: db.DB}

	title, err := svc.GetTitle(titleID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toTitleResponse(title))
}

func UpdateTitle(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AdminOrReadOnly, policy.Input{Actor: actor, Write: true}) {
		return
	}

	titleID, err := utils.GetTitleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req TitleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	svc := services.TitleService{DB: db.DB}

	title, err := svc.UpdateTitle(titleID, req.toInput())

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toTitleResponse(title))
}

func DeleteTitle(ctx *gin.Context) {
	actor := utils.CurrentActor(ctx)

	if !authorize(ctx, policy.AdminOrReadOnly, policy.Input{Actor: actor, Write: true}) {
		return
	}

	titleID, err := utils.GetTitleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.TitleService{DB: db.DB}

	if err := svc.DeleteTitle(titleID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
