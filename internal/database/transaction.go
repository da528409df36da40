package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Transaction runs body inside a single database transaction. The body must
// issue every query through the tx it receives. Any returned error or panic
// rolls the whole unit back.
func Transaction(ctx context.Context, db *gorm.DB, body func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("could not open transaction: %w", tx.Error)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			tx.Rollback()
			panic(recovered)
		}
	}()

	if err = body(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit().Error
}
