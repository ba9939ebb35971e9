package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/beego/beego/v2/server/web"
)

// BaseController 提供统一的JSON响应辅助方法
type BaseController struct {
	web.Controller
}

// JSON 按指定HTTP状态码写JSON响应
func (c *BaseController) JSON(status int, payload interface{}) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	c.ServeJSON()
}

// JSONSuccess 写标准成功响应
func (c *BaseController) JSONSuccess(data interface{}) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// JSONError 写错误响应
func (c *BaseController) JSONError(status int, message string) {
	c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// getAuthenticatedUserID 获取认证用户ID
// 认证由网关完成，这里只读取透传的用户标识
func (c *BaseController) getAuthenticatedUserID() (uint, bool) {
	authHeader := c.Ctx.Input.Header("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if userID, err := strconv.ParseUint(parts[1], 10, 32); err == nil {
				return uint(userID), true
			}
		}
	}

	if userIDHeader := c.Ctx.Input.Header("X-User-Id"); userIDHeader != "" {
		if userID, err := strconv.ParseUint(userIDHeader, 10, 32); err == nil {
			return uint(userID), true
		}
	}

	return 0, false
}
