package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

func pathID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, raw)
	}

	return uint(id), nil
}

func GetTitleID(ctx *gin.Context) (uint, error) {
	return pathID(ctx, "title_id")
}

func GetReviewID(ctx *gin.Context) (uint, error) {
	return pathID(ctx, "review_id")
}

func GetCommentID(ctx *gin.Context) (uint, error) {
	return pathID(ctx, "comment_id")
}
