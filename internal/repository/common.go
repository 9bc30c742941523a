package repository

import (
	"gorm.io/gorm"
)

// compareAndSet flips a boolean guard column from false to true. It returns
// gorm.ErrRecordNotFound if the row does not exist or another writer already
// flipped the guard.
func compareAndSet(db *gorm.DB, model any, pkColumn string, pk any, column string) error {
	return checkAffected(db.Model(model).
		Where(pkColumn+"=? AND "+column+"=?", pk, false).
		Update(column, true))
}

func checkAffected(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
