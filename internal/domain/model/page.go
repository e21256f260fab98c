package model

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage 保證 Page*Size 不會溢位
	MaxPage       = math.MaxInt32 / MaxPageSize
	DefaultSortBy = "created_at"
)

type SortOrderEnum string

const (
	SortOrderAsc  SortOrderEnum = "asc"
	SortOrderDesc SortOrderEnum = "desc"
)

// 允許排序的欄位，避免直接把使用者輸入拼進 ORDER BY
var orderSortableColumns = map[string]struct{}{
	"created_at":  {},
	"total_price": {},
	"code":        {},
	"id":          {},
}

func IsValidSortOrderEnum(order string) bool {
	switch SortOrderEnum(order) {
	case SortOrderAsc, SortOrderDesc:
		return true
	default:
		return false
	}
}

func IsSortableOrderColumn(column string) bool {
	_, ok := orderSortableColumns[column]
	return ok
}

// PageRequest Page 從 0 開始
type PageRequest struct {
	Page   int
	Size   int
	SortBy string
	Order  SortOrderEnum
}

func DefaultPageRequest() PageRequest {
	return PageRequest{
		Page:   0,
		Size:   DefaultPageSize,
		SortBy: DefaultSortBy,
		Order:  SortOrderDesc,
	}
}

// Normalize 把不合法的欄位換回預設值
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if !IsSortableOrderColumn(p.SortBy) {
		p.SortBy = DefaultSortBy
	}
	if !IsValidSortOrderEnum(string(p.Order)) {
		p.Order = SortOrderDesc
	}
	return p
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Items:      items,
		Page:       req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
