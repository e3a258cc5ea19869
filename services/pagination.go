package services

import "gorm.io/gorm"

const maxPageSize = 100

// Page is a requested page; zero values fall back to defaults.
type Page struct {
	Page  int
	Limit int
}

// Pagination is the page metadata returned with every list.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

// Calculate normalises the page and returns the row offset and limit.
func (p Page) Calculate(defaultSize int) (offset, limit int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.Limit
	if size < 1 {
		size = defaultSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return (page - 1) * size, size
}

func (p Page) meta(defaultSize int, total int64) Pagination {
	offset, limit := p.Calculate(defaultSize)
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Current: offset/limit + 1, Pages: pages, Total: total}
}

// paginate counts q, then loads the requested page into dst. Ordering and
// preloads go in scopes so they stay out of the count query.
func paginate(q *gorm.DB, p Page, defaultSize int, dst any, scopes ...func(*gorm.DB) *gorm.DB) (Pagination, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}
	offset, limit := p.Calculate(defaultSize)
	if err := q.Scopes(scopes...).Offset(offset).Limit(limit).Find(dst).Error; err != nil {
		return Pagination{}, err
	}
	return p.meta(defaultSize, total), nil
}
