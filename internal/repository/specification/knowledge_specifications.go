package specification

import (
	"gorm.io/gorm"
)

// ByNamespace is the tenant-isolation filter for the knowledge store. Every
// knowledge query must carry it; there is no cross-namespace read path.
type ByNamespace struct {
	Namespace string
}

func (s ByNamespace) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("namespace = ?", s.Namespace)
}

// ByContentHash finds an entry by its raw-bytes hash (idempotent upload check).
type ByContentHash struct {
	Hash string
}

func (s ByContentHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("content_hash = ?", s.Hash)
}

// ByCategory filters entries by the uploader-assigned category.
type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("metadata ->> 'category' = ?", s.Category)
}
