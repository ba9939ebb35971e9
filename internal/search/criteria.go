package search

import (
	"strings"
	"time"
)

// SearchCriteria 结构化搜索条件
// 缺省条件不施加任何限制；解析为"无匹配"的条件必须让查询确定返回零行而不是被忽略
type SearchCriteria struct {
	// SimpleText 针对元数据字段的全文词项
	SimpleText string
	// FullText 针对元数据字段和文件内容的全文词项
	FullText string

	// CreatorID 创建者精确匹配，0表示未设置
	CreatorID uint
	Language  string
	MimeType  string

	// 时间范围，闭区间
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	UpdatedFrom *time.Time
	UpdatedTo   *time.Time

	// TagGroups 标签条件：组间AND，组内OR；每个标签引用含其全部递归子标签
	TagGroups [][]uint
	// ExcludedTagGroups 排除标签组，命中任一组内标签的文档被排除
	ExcludedTagGroups [][]uint

	SharedOnly      bool
	ActiveRouteOnly bool

	// TargetIDs 调用方的ACL主体列表（本人及所属组），用于可见性过滤
	TargetIDs []uint

	Titles []string

	// 分页参数，越界值由解析器归一化
	Limit  int
	Offset int
}

// HasFulltext 是否包含全文词项
func (c *SearchCriteria) HasFulltext() bool {
	return strings.TrimSpace(c.SimpleText) != "" || strings.TrimSpace(c.FullText) != ""
}

// SortCriteria 排序条件
type SortCriteria struct {
	Field      string
	Descending bool
}

// ParsedQuery 查询串解析结果
type ParsedQuery struct {
	Text     string
	Creator  string
	Language string
	TagNames []string
}

// ParseQueryString 解析形如 "by:alice lang:en tag:invoices free text" 的查询串
// 无前缀的词保留为全文词项
func ParseQueryString(q string) ParsedQuery {
	var parsed ParsedQuery
	var text []string

	for _, token := range strings.Fields(q) {
		switch {
		case strings.HasPrefix(token, "by:"):
			parsed.Creator = strings.TrimPrefix(token, "by:")
		case strings.HasPrefix(token, "lang:"):
			parsed.Language = strings.ToLower(strings.TrimPrefix(token, "lang:"))
		case strings.HasPrefix(token, "tag:"):
			if name := strings.TrimPrefix(token, "tag:"); name != "" {
				parsed.TagNames = append(parsed.TagNames, name)
			}
		default:
			text = append(text, token)
		}
	}

	parsed.Text = strings.Join(text, " ")
	return parsed
}
