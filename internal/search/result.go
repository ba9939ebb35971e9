package search

import "time"

// DocumentResult 搜索结果DTO，由关系查询逐字段组装
type DocumentResult struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	CreateTime      time.Time `json:"create_time"`
	UpdateTime      time.Time `json:"update_time"`
	Language        string    `json:"language,omitempty"`
	SharedCount     int       `json:"shared_count"`
	FileCount       int       `json:"file_count"`
	ActiveRouteID   uint      `json:"active_route_id,omitempty"`
	ActiveRouteName string    `json:"active_route_name,omitempty"`
}

// PaginatedList 分页结果：一次count查询加一次分页查询填充
type PaginatedList struct {
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	Total   int64             `json:"total"`
	Results []*DocumentResult `json:"results"`
}
