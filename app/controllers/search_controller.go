package controllers

import (
	"net/http"

	apperrors "github.com/docshelf/backend-go/internal/errors"
	"github.com/docshelf/backend-go/internal/search"

	"github.com/docshelf/backend-go/app/bootstrap"
)

// SearchController 搜索接口
type SearchController struct {
	BaseController
}

// Get 处理 GET /api/search
// 查询串支持 by:/tag:/lang: 前缀，其余词项作为全文条件
func (c *SearchController) Get() {
	userID, ok := c.getAuthenticatedUserID()
	if !ok {
		c.JSONError(http.StatusUnauthorized, "missing user identity")
		return
	}

	query := c.GetString("q")
	limit, _ := c.GetInt("limit", 0)
	offset, _ := c.GetInt("offset", 0)
	sort := search.SortCriteria{
		Field:      c.GetString("sort"),
		Descending: c.GetString("order") == "desc",
	}

	app := bootstrap.GetApp()
	ctx := c.Ctx.Request.Context()

	targets, err := app.SearchService.TargetsForUser(ctx, userID)
	if err != nil {
		c.JSONError(http.StatusInternalServerError, "failed to resolve caller visibility")
		return
	}

	result, err := app.SearchService.SearchByQuery(ctx, query, targets, limit, offset, sort)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			c.JSONError(appErr.HTTPCode, appErr.Message)
			return
		}
		c.JSONError(http.StatusInternalServerError, "search failed")
		return
	}

	c.JSONSuccess(result)
}
