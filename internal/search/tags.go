package search

import (
	"context"
	"math/rand"

	"gorm.io/gorm"

	"github.com/docshelf/backend-go/internal/models"
)

// 支持的文档语言
var supportedLanguages = map[string]bool{
	"en": true,
	"de": true,
	"fr": true,
	"es": true,
	"it": true,
	"pt": true,
	"nl": true,
	"ru": true,
	"zh": true,
	"ja": true,
}

// IsSupportedLanguage 语言代码是否受支持
func IsSupportedLanguage(code string) bool {
	return supportedLanguages[code]
}

// SentinelID 返回一个随机的、确定不存在的ID
// 解析失败的条件用它强制查询返回零行，而不是丢掉该条件
func SentinelID() uint {
	return uint(rand.Int63())
}

// ResolveTagName 按名称解析标签ID，未知标签返回哨兵ID（确定零行）
func ResolveTagName(ctx context.Context, db *gorm.DB, name string) uint {
	var tag models.Tag
	err := db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err != nil {
		return SentinelID()
	}
	return tag.TagID
}

// ResolveUsername 按用户名解析用户ID，未知用户返回哨兵ID（确定零行）
func ResolveUsername(ctx context.Context, db *gorm.DB, username string) uint {
	var user models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return SentinelID()
	}
	return user.UserID
}

// ExpandTagIDs 递归展开标签层级：返回输入标签及其全部子孙标签
func ExpandTagIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	seen := make(map[uint]bool, len(ids))
	expanded := make([]uint, 0, len(ids))
	frontier := make([]uint, 0, len(ids))

	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			expanded = append(expanded, id)
			frontier = append(frontier, id)
		}
	}

	for len(frontier) > 0 {
		var children []uint
		err := db.WithContext(ctx).
			Model(&models.Tag{}).
			Where("parent_id IN ?", frontier).
			Pluck("tag_id", &children).Error
		if err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, child := range children {
			if !seen[child] {
				seen[child] = true
				expanded = append(expanded, child)
				frontier = append(frontier, child)
			}
		}
	}

	return expanded, nil
}
