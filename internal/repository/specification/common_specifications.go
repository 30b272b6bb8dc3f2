package specification

import "gorm.io/gorm"

// Pagination windows a listing query. Zero values are the caller's
// responsibility; services clamp limit/offset before building the spec.
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
