package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/docshelf/backend-go/internal/interfaces"
	"github.com/docshelf/backend-go/internal/models"
	"github.com/docshelf/backend-go/internal/search"
)

// SearchService 搜索服务
type SearchService struct {
	db       interfaces.DatabaseInterface
	resolver *search.Resolver
	logger   *zap.Logger
}

// NewSearchService 创建搜索服务
func NewSearchService(db interfaces.DatabaseInterface, resolver *search.Resolver, logger *zap.Logger) *SearchService {
	return &SearchService{
		db:       db,
		resolver: resolver,
		logger:   logger,
	}
}

// Search 按结构化条件搜索
func (s *SearchService) Search(ctx context.Context, criteria *search.SearchCriteria, sort search.SortCriteria) (*search.PaginatedList, error) {
	result, err := s.resolver.Search(ctx, criteria, sort)
	if err != nil {
		s.logger.Error("Search failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Search completed",
		zap.Int64("total", result.Total),
		zap.Int("page_size", len(result.Results)))
	return result, nil
}

// SearchByQuery 按查询串搜索
// by:/tag:/lang: 前缀解析为离散条件；未知用户名和标签名走统一的哨兵路径，确定返回零行
func (s *SearchService) SearchByQuery(ctx context.Context, queryString string, targetIDs []uint, limit, offset int, sort search.SortCriteria) (*search.PaginatedList, error) {
	parsed := search.ParseQueryString(queryString)

	criteria := &search.SearchCriteria{
		FullText:  parsed.Text,
		Language:  parsed.Language,
		TargetIDs: targetIDs,
		Limit:     limit,
		Offset:    offset,
	}

	db := s.db.GetDB()
	if parsed.Creator != "" {
		criteria.CreatorID = search.ResolveUsername(ctx, db, parsed.Creator)
	}
	for _, name := range parsed.TagNames {
		criteria.TagGroups = append(criteria.TagGroups,
			[]uint{search.ResolveTagName(ctx, db, name)})
	}

	return s.Search(ctx, criteria, sort)
}

// TargetsForUser 调用方的ACL主体列表
// ACL的target_id一律指向组，用户通过个人组和组成员关系获得可见性
// 解析结果为空时返回哨兵主体：空列表会绕过ACL条件，必须收敛为零可见
func (s *SearchService) TargetsForUser(ctx context.Context, userID uint) ([]uint, error) {
	db := s.db.GetDB().WithContext(ctx)

	var personalIDs []uint
	err := db.Model(&models.Group{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &personalIDs).Error
	if err != nil {
		s.logger.Error("Failed to load personal group", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	var memberIDs []uint
	err = db.Model(&models.UserGroup{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &memberIDs).Error
	if err != nil {
		s.logger.Error("Failed to load user groups", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	seen := make(map[uint]bool)
	groupIDs := make([]uint, 0, len(personalIDs)+len(memberIDs))
	for _, id := range append(personalIDs, memberIDs...) {
		if !seen[id] {
			seen[id] = true
			groupIDs = append(groupIDs, id)
		}
	}

	if len(groupIDs) == 0 {
		return []uint{search.SentinelID()}, nil
	}
	return groupIDs, nil
}
