package scope

import "gorm.io/gorm"

// Archived filters rows on the is_archived flag.
func Archived(archived bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_archived = ?", archived)
	}
}

// NotVoid drops adjustments and payments that were voided.
func NotVoid(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", "VOID")
}

func Period(periodID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("period_id = ?", periodID)
	}
}

// Crew matches shipments where userID is the driver or the helper.
func Crew(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(driver_id = ? OR helper_id = ?)", userID, userID)
	}
}

func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 || pageSize > 200 {
			pageSize = 20
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
