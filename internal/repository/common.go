package repository

import (
	"errors"

	"gorm.io/gorm"
)

// updateOne validates that a guarded update touched exactly one row. A guard
// which did not match returns gorm.ErrRecordNotFound.
func updateOne(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of rows effected is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
