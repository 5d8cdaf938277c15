package store

import "gorm.io/gorm"

// Active filters out soft-deleted rows. Every default read path applies it;
// administrative and reporting views skip it explicitly.
//
//	db.Scopes(store.Active).Find(&invoices)
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// Visibility returns the scope matching the includeDeleted override used by
// administrative views.
func Visibility(includeDeleted bool) func(*gorm.DB) *gorm.DB {
	if includeDeleted {
		return func(db *gorm.DB) *gorm.DB { return db }
	}
	return Active
}
