package repository

import (
	"context"

	"gorm.io/gorm"
)

// countAndPage counts the filtered rows then applies offset/limit when a page size is set.
func countAndPage(query *gorm.DB, page, pageSize int) (*gorm.DB, int64, error) {
	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * pageSize
		query = query.Offset(offset).Limit(pageSize)
	}

	return query, total, nil
}

// deleteByID removes one row by primary key, reporting gorm.ErrRecordNotFound when nothing matched.
func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, id string) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// countGrouped returns row counts keyed by the values of column.
func countGrouped(ctx context.Context, query *gorm.DB, column string) (map[string]int64, error) {
	var rows []struct {
		GroupKey string
		Total    int64
	}
	err := query.WithContext(ctx).
		Select(column + " AS group_key, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupKey] = row.Total
	}
	return counts, nil
}
