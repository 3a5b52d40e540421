package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// addToSet appends value to a text[] column unless already present. The row is
// always touched, so RowsAffected == 0 means the id does not exist.
func addToSet(ctx context.Context, db *gorm.DB, table, column string, id uuid.UUID, value string) *gorm.DB {
	sql := fmt.Sprintf(
		`UPDATE %s SET %s = CASE WHEN ? = ANY(%s) THEN %s ELSE array_append(%s, ?) END, updated_at = NOW() WHERE id = ?`,
		table, column, column, column, column,
	)
	return db.WithContext(ctx).Exec(sql, value, value, id)
}

// pull removes every occurrence of value from a text[] column.
func pull(ctx context.Context, db *gorm.DB, table, column string, id uuid.UUID, value string) *gorm.DB {
	sql := fmt.Sprintf(
		`UPDATE %s SET %s = array_remove(%s, ?), updated_at = NOW() WHERE id = ?`,
		table, column, column,
	)
	return db.WithContext(ctx).Exec(sql, value, id)
}
