package search

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docshelf/backend-go/internal/config"
	apperrors "github.com/docshelf/backend-go/internal/errors"
	"github.com/docshelf/backend-go/internal/index"
	"github.com/docshelf/backend-go/internal/models"
)

// 排序字段白名单
var sortColumns = map[string]string{
	"id":          "d.document_id",
	"title":       "d.title",
	"create_time": "d.create_time",
	"update_time": "d.update_time",
	"language":    "d.language",
}

// Resolver 混合查询解析器
// 先对索引执行全文子查询得到候选文档ID集合，再构建带ACL/标签/日期/语言/流程过滤的关系查询
type Resolver struct {
	db      *gorm.DB
	readers *index.ReaderManager
	cfg     config.SearchConfig
	logger  *zap.Logger
}

// NewResolver 创建查询解析器
func NewResolver(db *gorm.DB, readers *index.ReaderManager, cfg config.SearchConfig, logger *zap.Logger) *Resolver {
	return &Resolver{
		db:      db,
		readers: readers,
		cfg:     cfg,
		logger:  logger,
	}
}

// documentRow 分页查询的扫描行，聚合列可能为NULL
type documentRow struct {
	DocumentID    uint
	Title         string
	Description   sql.NullString
	CreateTime    time.Time
	UpdateTime    time.Time
	Language      sql.NullString
	SharedCount   sql.NullInt64
	FileCount     sql.NullInt64
	ActiveRouteID sql.NullInt64
}

// Search 执行混合搜索，返回分页排序后的结果
func (r *Resolver) Search(ctx context.Context, criteria *SearchCriteria, sort SortCriteria) (*PaginatedList, error) {
	start := time.Now()
	defer func() {
		index.ObserveSearch(time.Since(start))
	}()

	limit, offset := r.normalizePage(criteria.Limit, criteria.Offset)
	result := &PaginatedList{
		Limit:   limit,
		Offset:  offset,
		Results: []*DocumentResult{},
	}

	var candidateIDs []uint
	if criteria.HasFulltext() {
		candidateIDs = r.fulltextCandidates(ctx, criteria)
		if len(candidateIDs) == 0 {
			// 全文无命中：用确定不存在的ID让关系查询返回零行，而不是丢掉全文条件
			candidateIDs = []uint{SentinelID()}
		}
	}

	tagGroups, err := r.expandGroups(ctx, criteria.TagGroups)
	if err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "failed to expand tag hierarchy").WithCause(err)
	}
	excludedGroups, err := r.expandGroups(ctx, criteria.ExcludedTagGroups)
	if err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "failed to expand excluded tag hierarchy").WithCause(err)
	}

	build := func() *gorm.DB {
		return r.applyPredicates(ctx, criteria, candidateIDs, tagGroups, excludedGroups)
	}

	if err := build().Count(&result.Total).Error; err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "search count query failed").WithCause(err)
	}
	if result.Total == 0 {
		return result, nil
	}

	selectClause, selectArgs := r.pageSelect(criteria)
	var rows []documentRow
	err = build().
		Select(selectClause, selectArgs...).
		Order(orderClause(sort)).
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "search page query failed").WithCause(err)
	}

	routeNames, err := r.loadRouteNames(ctx, rows)
	if err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "failed to load route names").WithCause(err)
	}

	for _, row := range rows {
		result.Results = append(result.Results, assembleResult(row, routeNames))
	}
	return result, nil
}

// normalizePage 归一化分页参数
func (r *Resolver) normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = r.cfg.DefaultPageSize
	}
	if r.cfg.MaxPageSize > 0 && limit > r.cfg.MaxPageSize {
		limit = r.cfg.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// fulltextCandidates 执行全文子查询，返回候选文档ID
// 索引未就绪或查询失败时返回空集合（调用方据此生成哨兵条件），绝不向上抛索引内部错误
func (r *Resolver) fulltextCandidates(ctx context.Context, c *SearchCriteria) []uint {
	reader, err := r.readers.Reader()
	if err != nil {
		r.logger.Warn("Index not ready, fulltext sub-query yields no candidates", zap.Error(err))
		return nil
	}

	metadataTerms := strings.TrimSpace(c.SimpleText + " " + c.FullText)
	fullTerms := strings.TrimSpace(c.FullText)

	// 多词条件按短语匹配：词项必须在同一字段内相邻出现
	disjunction := bleve.NewDisjunctionQuery()
	fields := append(append([]string{}, index.DocumentTextFields...), index.FieldFileName)
	for _, field := range fields {
		mq := bleve.NewMatchPhraseQuery(metadataTerms)
		mq.SetField(field)
		disjunction.AddQuery(mq)
	}
	if fullTerms != "" {
		cq := bleve.NewMatchPhraseQuery(fullTerms)
		cq.SetField(index.FieldContent)
		disjunction.AddQuery(cq)
	}

	req := bleve.NewSearchRequestOptions(disjunction, r.cfg.MaxFulltextHits, 0, false)
	req.Fields = []string{index.FieldDocumentID}

	searchResult, err := reader.SearchInContext(ctx, req)
	if err != nil {
		r.logger.Error("Fulltext sub-query failed", zap.Error(err))
		return nil
	}

	seen := make(map[uint]bool, len(searchResult.Hits))
	ids := make([]uint, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		raw, _ := hit.Fields[index.FieldDocumentID].(string)
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		// 文档记录贡献自身ID，文件记录贡献所属文档ID，两者都存在document_id字段里
		if !seen[uint(id)] {
			seen[uint(id)] = true
			ids = append(ids, uint(id))
		}
	}
	return ids
}

// expandGroups 逐组展开标签层级
func (r *Resolver) expandGroups(ctx context.Context, groups [][]uint) ([][]uint, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	expanded := make([][]uint, 0, len(groups))
	for _, group := range groups {
		ids, err := ExpandTagIDs(ctx, r.db, group)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			expanded = append(expanded, ids)
		}
	}
	return expanded, nil
}

// applyPredicates 构建关系查询，所有出现的条件按AND合取
func (r *Resolver) applyPredicates(ctx context.Context, c *SearchCriteria, candidateIDs []uint, tagGroups, excludedGroups [][]uint) *gorm.DB {
	q := r.db.WithContext(ctx).Table("documents AS d").Where("d.deleted = ?", false)

	if len(candidateIDs) > 0 {
		q = q.Where("d.document_id IN ?", candidateIDs)
	}

	if len(c.TargetIDs) > 0 {
		q = q.Where(`(EXISTS (SELECT 1 FROM document_acls da WHERE da.document_id = d.document_id AND da.target_id IN ? AND da.can_read = ?)
			OR EXISTS (SELECT 1 FROM document_tags dt INNER JOIN tag_acls ta ON ta.tag_id = dt.tag_id WHERE dt.document_id = d.document_id AND ta.target_id IN ? AND ta.can_read = ?))`,
			c.TargetIDs, true, c.TargetIDs, true)
	}

	if c.CreatorID != 0 {
		q = q.Where("d.creator_id = ?", c.CreatorID)
	}

	if c.Language != "" {
		if IsSupportedLanguage(c.Language) {
			q = q.Where("d.language = ?", c.Language)
		} else {
			// 不支持的语言代码：哨兵条件，确定零行
			q = q.Where("d.document_id = ?", SentinelID())
		}
	}

	if c.MimeType != "" {
		q = q.Where("EXISTS (SELECT 1 FROM doc_files df WHERE df.document_id = d.document_id AND df.deleted = ? AND df.mime_type = ?)",
			false, c.MimeType)
	}

	if c.CreatedFrom != nil {
		q = q.Where("d.create_time >= ?", *c.CreatedFrom)
	}
	if c.CreatedTo != nil {
		q = q.Where("d.create_time <= ?", *c.CreatedTo)
	}
	if c.UpdatedFrom != nil {
		q = q.Where("d.update_time >= ?", *c.UpdatedFrom)
	}
	if c.UpdatedTo != nil {
		q = q.Where("d.update_time <= ?", *c.UpdatedTo)
	}

	for _, group := range tagGroups {
		q = q.Where("EXISTS (SELECT 1 FROM document_tags dt WHERE dt.document_id = d.document_id AND dt.tag_id IN ?)", group)
	}
	for _, group := range excludedGroups {
		q = q.Where("NOT EXISTS (SELECT 1 FROM document_tags dt WHERE dt.document_id = d.document_id AND dt.tag_id IN ?)", group)
	}

	if c.SharedOnly {
		q = q.Where("EXISTS (SELECT 1 FROM document_shares ds WHERE ds.document_id = d.document_id)")
	}

	if c.ActiveRouteOnly {
		clause := "EXISTS (SELECT 1 FROM route_steps rs WHERE rs.document_id = d.document_id AND rs.status = ?"
		args := []interface{}{models.RouteStepPending}
		if len(c.TargetIDs) > 0 {
			clause += " AND rs.target_id IN ?"
			args = append(args, c.TargetIDs)
		}
		clause += ")"
		q = q.Where(clause, args...)
	}

	if len(c.Titles) > 0 {
		q = q.Where("d.title IN ?", c.Titles)
	}

	return q
}

// pageSelect 分页查询的投影：文档字段加共享数、文件数和最早待处理流程步骤
func (r *Resolver) pageSelect(c *SearchCriteria) (string, []interface{}) {
	routeClause := "SELECT rs.route_id FROM route_steps rs WHERE rs.document_id = d.document_id AND rs.status = ?"
	args := []interface{}{models.RouteStepPending}
	if len(c.TargetIDs) > 0 {
		routeClause += " AND rs.target_id IN ?"
		args = append(args, c.TargetIDs)
	}
	routeClause += " ORDER BY rs.step_index LIMIT 1"

	clause := `d.document_id, d.title, d.description, d.create_time, d.update_time, d.language,
		(SELECT COUNT(*) FROM document_shares ds WHERE ds.document_id = d.document_id) AS shared_count,
		(SELECT COUNT(*) FROM doc_files df WHERE df.document_id = d.document_id AND df.deleted = false) AS file_count,
		(` + routeClause + `) AS active_route_id`
	return clause, args
}

// orderClause 生成排序子句，字段取白名单，文档ID作为稳定的次级排序键
func orderClause(sort SortCriteria) string {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "d.create_time"
	}
	direction := "ASC"
	if sort.Descending || !ok {
		direction = "DESC"
	}
	return column + " " + direction + ", d.document_id ASC"
}

// loadRouteNames 批量加载结果页涉及的流程名称
func (r *Resolver) loadRouteNames(ctx context.Context, rows []documentRow) (map[uint]string, error) {
	ids := make([]uint, 0)
	seen := make(map[uint]bool)
	for _, row := range rows {
		if row.ActiveRouteID.Valid {
			id := uint(row.ActiveRouteID.Int64)
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var routes []models.Route
	if err := r.db.WithContext(ctx).Where("route_id IN ?", ids).Find(&routes).Error; err != nil {
		return nil, err
	}

	names := make(map[uint]string, len(routes))
	for _, route := range routes {
		names[route.RouteID] = route.Name
	}
	return names, nil
}

// assembleResult 从扫描行组装DTO，NULL聚合值归一化为零值
func assembleResult(row documentRow, routeNames map[uint]string) *DocumentResult {
	result := &DocumentResult{
		ID:          row.DocumentID,
		Title:       row.Title,
		Description: row.Description.String,
		CreateTime:  row.CreateTime,
		UpdateTime:  row.UpdateTime,
		Language:    row.Language.String,
		SharedCount: int(row.SharedCount.Int64),
		FileCount:   int(row.FileCount.Int64),
	}
	if row.ActiveRouteID.Valid {
		result.ActiveRouteID = uint(row.ActiveRouteID.Int64)
		result.ActiveRouteName = routeNames[result.ActiveRouteID]
	}
	return result
}
