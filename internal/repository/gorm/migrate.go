package gorm

import (
	ierr "github.com/gatherly/gatherly/internal/errors"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables backing the repositories.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ownerRow{}, &communityRow{}); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to run schema migration").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
